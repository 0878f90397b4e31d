package service

import (
	"clauselens-go/internal/extractor"
	"clauselens-go/internal/model"
	"clauselens-go/internal/pipeline"
	"clauselens-go/internal/repository"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	pages []model.Page
	err   error
}

func (r *stubRenderer) Render(doc *model.Document) ([]model.Page, error) {
	return r.pages, r.err
}

type stubDocExtractor struct {
	byPage map[int]model.MethodResult
}

func (e *stubDocExtractor) Method() string { return model.MethodDigitalText }

func (e *stubDocExtractor) ExtractPages(ctx context.Context, doc *model.Document) map[int]model.MethodResult {
	return e.byPage
}

func newTestAnalysisService(renderer pipeline.Renderer, llmResponse string) AnalysisService {
	processor := pipeline.NewProcessor(renderer, []extractor.DocumentExtractor{
		&stubDocExtractor{byPage: map[int]model.MethodResult{
			1: model.Present("This agreement is between Acme Corp and Widget LLC."),
			2: model.Present("Payment due within 30 days. Invoice INV-001."),
		}},
	}, nil)
	indexService := NewIndexService(&fakeEmbeddingClient{}, repository.NewMemoryVectorRepository())
	insightService := NewInsightService(&fakeLLMClient{response: llmResponse})
	return NewAnalysisService(processor, indexService, insightService)
}

func TestAnalyze_FullPipeline(t *testing.T) {
	renderer := &stubRenderer{pages: []model.Page{
		{PageNumber: 1, Image: []byte{1}},
		{PageNumber: 2, Image: []byte{2}},
	}}
	svc := newTestAnalysisService(renderer, `{"parties": ["Acme Corp"], "payment_terms": "Net 30"}`)

	result, err := svc.Analyze(context.Background(), "contract.pdf", "application/pdf", []byte("%PDF"))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "contract_pdf", result.DocID)
	assert.Equal(t, 2, result.PagesProcessed)
	assert.Equal(t, 97, result.Confidence)
	assert.Contains(t, result.Engine, "Multi-Method Pipeline")
	assert.Equal(t, []string{"Acme Corp"}, result.Extraction.Parties)
	assert.Equal(t, "Net 30", result.Extraction.PaymentTerms)
}

func TestAnalyze_RenderFailureReturnsError(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("not a document")}
	svc := newTestAnalysisService(renderer, "{}")

	result, err := svc.Analyze(context.Background(), "broken.pdf", "application/pdf", []byte("junk"))

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestAnalyze_InsightFailureStillReturnsResult(t *testing.T) {
	renderer := &stubRenderer{pages: []model.Page{{PageNumber: 1, Image: []byte{1}}}}
	processor := pipeline.NewProcessor(renderer, nil, nil)
	indexService := NewIndexService(&fakeEmbeddingClient{}, repository.NewMemoryVectorRepository())
	insightService := NewInsightService(&fakeLLMClient{err: errors.New("backend down")})
	svc := NewAnalysisService(processor, indexService, insightService)

	result, err := svc.Analyze(context.Background(), "contract.pdf", "application/pdf", []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, model.FallbackExtraction(), result.Extraction)
	assert.Equal(t, "Reasoning unavailable.", result.Risks)
	assert.Equal(t, "Reasoning unavailable.", result.Summary)
	assert.Equal(t, 1, result.PagesProcessed)
}
