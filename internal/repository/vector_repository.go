// Package repository 提供了数据访问层的实现。
package repository

import (
	"clauselens-go/internal/model"
	"context"
	"math"
	"sort"
	"sync"
)

// VectorRepository 定义了向量索引后端的操作接口。
// 所有操作都以 docID 为作用域：A 文档的查询绝不返回 B 文档的记录。
type VectorRepository interface {
	// DeleteByDocID 删除某文档的全部索引记录。不存在旧记录不算错误。
	DeleteByDocID(ctx context.Context, docID string) error
	// BatchAdd 批量写入索引记录。
	BatchAdd(ctx context.Context, entries []model.IndexEntry) error
	// Search 在 docID 范围内按向量相似度取 top-k，按得分降序返回。
	Search(ctx context.Context, docID string, vector []float32, k int) ([]model.IndexEntry, error)
}

// memoryVectorRepository 是默认的进程内向量索引：
// 生命周期与服务进程一致，读写锁保护，支持多请求并发 upsert/query。
type memoryVectorRepository struct {
	mu      sync.RWMutex
	entries map[string][]model.IndexEntry // docID -> 该文档的全部记录
}

// NewMemoryVectorRepository 创建进程内向量索引。
func NewMemoryVectorRepository() VectorRepository {
	return &memoryVectorRepository{entries: make(map[string][]model.IndexEntry)}
}

func (r *memoryVectorRepository) DeleteByDocID(ctx context.Context, docID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, docID)
	return nil
}

func (r *memoryVectorRepository) BatchAdd(ctx context.Context, entries []model.IndexEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.DocID] = append(r.entries[e.DocID], e)
	}
	return nil
}

func (r *memoryVectorRepository) Search(ctx context.Context, docID string, vector []float32, k int) ([]model.IndexEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := r.entries[docID]
	scored := make([]model.IndexEntry, 0, len(candidates))
	for _, e := range candidates {
		entry := e
		entry.Score = cosineSimilarity(vector, e.Vector)
		scored = append(scored, entry)
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// cosineSimilarity 计算两个向量的余弦相似度，维度按较短者对齐。
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
