package repository

import (
	"bytes"
	"clauselens-go/internal/config"
	"clauselens-go/internal/model"
	"clauselens-go/pkg/log"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// esVectorRepository 是 Elasticsearch 后端的向量索引实现：
// dense_vector + cosine 相似度，doc_id 作 term 过滤，
// delete_by_query 实现幂等重建。
type esVectorRepository struct {
	client    *elasticsearch.Client
	indexName string
}

// NewESVectorRepository 初始化 Elasticsearch 客户端并确保索引存在。
func NewESVectorRepository(cfg config.ElasticsearchConfig, dims int) (VectorRepository, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Addresses},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, err
	}
	repo := &esVectorRepository{client: client, indexName: cfg.IndexName}
	if err := repo.createIndexIfNotExists(dims); err != nil {
		return nil, err
	}
	return repo, nil
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则按页级向量结构创建。
func (r *esVectorRepository) createIndexIfNotExists(dims int) error {
	res, err := r.client.Indices.Exists([]string{r.indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	defer res.Body.Close()
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", r.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", r.indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	if dims <= 0 {
		dims = 384
	}
	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"entry_id": { "type": "keyword" },
				"doc_id": { "type": "keyword" },
				"page_number": { "type": "integer" },
				"text_content": { "type": "text" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				}
			}
		}
	}`, dims)

	createRes, err := r.client.Indices.Create(
		r.indexName,
		r.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", r.indexName, err)
		return err
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", r.indexName, createRes.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", r.indexName)
	return nil
}

// DeleteByDocID 通过 delete_by_query 清理该文档的全部旧记录。
func (r *esVectorRepository) DeleteByDocID(ctx context.Context, docID string) error {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"doc_id": docID},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return fmt.Errorf("failed to encode delete query: %w", err)
	}

	req := esapi.DeleteByQueryRequest{
		Index:   []string{r.indexName},
		Body:    &buf,
		Refresh: boolPtr(true),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	// 索引尚不存在（首次摄取）不算错误
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		log.Errorf("按 doc_id 删除索引记录出错: %s", res.String())
		return errors.New("failed to delete entries by doc_id")
	}
	return nil
}

// BatchAdd 逐条写入索引记录，entry_id 作为文档 ID 保证幂等。
func (r *esVectorRepository) BatchAdd(ctx context.Context, entries []model.IndexEntry) error {
	for _, entry := range entries {
		docBytes, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		req := esapi.IndexRequest{
			Index:      r.indexName,
			DocumentID: entry.EntryID,
			Body:       bytes.NewReader(docBytes),
			Refresh:    "true",
		}
		res, err := req.Do(ctx, r.client)
		if err != nil {
			return err
		}
		if res.IsError() {
			log.Errorf("索引记录到 Elasticsearch 出错: %s", res.String())
			res.Body.Close()
			return errors.New("failed to index entry")
		}
		res.Body.Close()
	}
	return nil
}

// Search 执行 knn 查询，filter 限定 doc_id，按得分降序返回。
func (r *esVectorRepository) Search(ctx context.Context, docID string, vector []float32, k int) ([]model.IndexEntry, error) {
	esQuery := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": k * 10,
			"filter": map[string]interface{}{
				"term": map[string]interface{}{"doc_id": docID},
			},
		},
		"size": k,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.indexName),
		r.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.IndexEntry `json:"_source"`
				Score  float64          `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	results := make([]model.IndexEntry, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		entry := hit.Source
		entry.Score = hit.Score
		results = append(results, entry)
	}
	return results, nil
}

func boolPtr(b bool) *bool { return &b }
