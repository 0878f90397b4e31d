// Package service 包含了应用的业务逻辑层。
package service

import (
	"clauselens-go/internal/model"
	"clauselens-go/internal/repository"
	"clauselens-go/pkg/embedding"
	"clauselens-go/pkg/log"
	"context"
	"fmt"
	"sort"
)

// IndexService 定义了页级语义索引的操作接口。
type IndexService interface {
	// UpsertDocument 先删后写地重建某文档的索引：每个成功向量化的页面
	// 恰好一条记录。重复摄取同一 doc_id 不会产生重复记录。
	UpsertDocument(ctx context.Context, docID string, pages map[int]*model.PageExtraction) error
	// QueryDocument 把问题向量化后在该文档范围内取 top-k，按相似度降序返回。
	QueryDocument(ctx context.Context, docID, query string, k int) ([]model.IndexEntry, error)
}

type indexService struct {
	embeddingClient embedding.Client
	vectorRepo      repository.VectorRepository
}

// NewIndexService 创建一个新的 IndexService 实例。
func NewIndexService(embeddingClient embedding.Client, vectorRepo repository.VectorRepository) IndexService {
	return &indexService{
		embeddingClient: embeddingClient,
		vectorRepo:      vectorRepo,
	}
}

// UpsertDocument 重建文档索引。单页向量化失败只跳过该页，不中断整体。
func (s *indexService) UpsertDocument(ctx context.Context, docID string, pages map[int]*model.PageExtraction) error {
	log.Infof("[IndexService] 开始重建文档索引, DocID: %s, 页数: %d", docID, len(pages))

	// 幂等重建：先清理旧记录。删除失败（例如尚无记录）不算错误。
	if err := s.vectorRepo.DeleteByDocID(ctx, docID); err != nil {
		log.Warnf("[IndexService] 清理旧索引记录失败 (doc_id=%s): %v", docID, err)
	}

	// 按页码升序向量化, 保证日志与写入顺序稳定
	ordinals := make([]int, 0, len(pages))
	for pageNum := range pages {
		ordinals = append(ordinals, pageNum)
	}
	sort.Ints(ordinals)

	entries := make([]model.IndexEntry, 0, len(pages))
	for _, pageNum := range ordinals {
		page := pages[pageNum]
		vector, err := s.embeddingClient.CreateEmbedding(ctx, page.FusedText)
		if err != nil {
			log.Warnf("[IndexService] 第 %d 页向量化失败, 跳过该页: %v", pageNum, err)
			continue
		}
		entries = append(entries, model.IndexEntry{
			EntryID:     fmt.Sprintf("%s_page_%d", docID, pageNum),
			DocID:       docID,
			PageNumber:  pageNum,
			TextContent: page.FusedText,
			Vector:      vector,
		})
	}

	if err := s.vectorRepo.BatchAdd(ctx, entries); err != nil {
		return fmt.Errorf("批量写入索引记录失败: %w", err)
	}
	log.Infof("[IndexService] 文档索引重建完成, DocID: %s, 写入 %d 条记录", docID, len(entries))
	return nil
}

// QueryDocument 在单文档范围内执行语义检索。
func (s *indexService) QueryDocument(ctx context.Context, docID, query string, k int) ([]model.IndexEntry, error) {
	queryVector, err := s.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}

	results, err := s.vectorRepo.Search(ctx, docID, queryVector, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	log.Infof("[IndexService] 语义检索完成, DocID: %s, 命中 %d 页", docID, len(results))
	return results, nil
}
