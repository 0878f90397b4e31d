package repository

import (
	"clauselens-go/internal/model"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(docID string, page int, vector []float32) model.IndexEntry {
	return model.IndexEntry{
		EntryID:     fmt.Sprintf("%s_page_%d", docID, page),
		DocID:       docID,
		PageNumber:  page,
		TextContent: "text",
		Vector:      vector,
	}
}

func TestMemorySearch_RanksByCosineSimilarity(t *testing.T) {
	repo := NewMemoryVectorRepository()
	ctx := context.Background()

	require.NoError(t, repo.BatchAdd(ctx, []model.IndexEntry{
		entry("doc", 1, []float32{1, 0, 0}),
		entry("doc", 2, []float32{0, 1, 0}),
		entry("doc", 3, []float32{0.9, 0.1, 0}),
	}))

	results, err := repo.Search(ctx, "doc", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].PageNumber)
	assert.Equal(t, 3, results[1].PageNumber)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemorySearch_DocIDIsolation(t *testing.T) {
	repo := NewMemoryVectorRepository()
	ctx := context.Background()

	require.NoError(t, repo.BatchAdd(ctx, []model.IndexEntry{
		entry("doc_a", 1, []float32{1, 0}),
		entry("doc_b", 1, []float32{1, 0}),
	}))

	results, err := repo.Search(ctx, "doc_a", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc_a", results[0].DocID)
}

func TestMemoryDeleteByDocID(t *testing.T) {
	repo := NewMemoryVectorRepository()
	ctx := context.Background()

	require.NoError(t, repo.BatchAdd(ctx, []model.IndexEntry{entry("doc", 1, []float32{1})}))
	require.NoError(t, repo.DeleteByDocID(ctx, "doc"))

	results, err := repo.Search(ctx, "doc", []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	// 删除不存在的文档不算错误
	assert.NoError(t, repo.DeleteByDocID(ctx, "missing"))
}

func TestMemorySearch_KLargerThanCorpus(t *testing.T) {
	repo := NewMemoryVectorRepository()
	ctx := context.Background()

	require.NoError(t, repo.BatchAdd(ctx, []model.IndexEntry{
		entry("doc", 1, []float32{1, 0}),
		entry("doc", 2, []float32{0, 1}),
	}))

	results, err := repo.Search(ctx, "doc", []float32{1, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	// 维度不一致时按较短者对齐
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1}), 1e-9)
	// 零向量相似度为 0
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
