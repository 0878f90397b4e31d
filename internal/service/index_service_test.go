package service

import (
	"clauselens-go/internal/model"
	"clauselens-go/internal/repository"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingClient 为每段文本返回固定向量, 可按文本内容注入失败。
type fakeEmbeddingClient struct {
	failOn map[string]bool
}

func (c *fakeEmbeddingClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if c.failOn[text] {
		return nil, errors.New("embedding backend unavailable")
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func TestUpsertDocument_OneEntryPerPage(t *testing.T) {
	repo := repository.NewMemoryVectorRepository()
	svc := NewIndexService(&fakeEmbeddingClient{}, repo)
	ctx := context.Background()

	pages := pagesWithText(map[int]string{1: "page one", 2: "page two", 3: "page three"})
	require.NoError(t, svc.UpsertDocument(ctx, "contract_pdf", pages))

	results, err := repo.Search(ctx, "contract_pdf", []float32{1, 1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestUpsertDocument_ReplacesOldEntries(t *testing.T) {
	repo := repository.NewMemoryVectorRepository()
	svc := NewIndexService(&fakeEmbeddingClient{}, repo)
	ctx := context.Background()

	require.NoError(t, svc.UpsertDocument(ctx, "contract_pdf", pagesWithText(map[int]string{1: "v1", 2: "v1"})))
	// 同一文档重复摄取: 先删后写, 不产生重复记录
	require.NoError(t, svc.UpsertDocument(ctx, "contract_pdf", pagesWithText(map[int]string{1: "v2"})))

	results, err := repo.Search(ctx, "contract_pdf", []float32{1, 1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "v2", results[0].TextContent)
}

func TestUpsertDocument_EmbeddingFailureSkipsPage(t *testing.T) {
	repo := repository.NewMemoryVectorRepository()
	svc := NewIndexService(&fakeEmbeddingClient{failOn: map[string]bool{"bad page": true}}, repo)
	ctx := context.Background()

	pages := pagesWithText(map[int]string{1: "good page", 2: "bad page"})
	require.NoError(t, svc.UpsertDocument(ctx, "contract_pdf", pages))

	results, err := repo.Search(ctx, "contract_pdf", []float32{1, 1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].PageNumber)
}

func TestQueryDocument_ScopedToDocID(t *testing.T) {
	repo := repository.NewMemoryVectorRepository()
	svc := NewIndexService(&fakeEmbeddingClient{}, repo)
	ctx := context.Background()

	require.NoError(t, svc.UpsertDocument(ctx, "doc_a", pagesWithText(map[int]string{1: "alpha"})))
	require.NoError(t, svc.UpsertDocument(ctx, "doc_b", pagesWithText(map[int]string{1: "beta"})))

	results, err := svc.QueryDocument(ctx, "doc_a", "alpha", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc_a", results[0].DocID)
}
