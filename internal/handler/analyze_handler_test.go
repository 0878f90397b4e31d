package handler

import (
	"bytes"
	"clauselens-go/internal/model"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalysisService struct {
	resp    *model.AnalyzeResponse
	err     error
	gotName string
	gotMIME string
}

func (s *fakeAnalysisService) Analyze(ctx context.Context, fileName, mimeType string, content []byte) (*model.AnalyzeResponse, error) {
	s.gotName = fileName
	s.gotMIME = mimeType
	return s.resp, s.err
}

func setupAnalyzeRouter(svc *fakeAnalysisService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/analyze", NewAnalyzeHandler(svc).Analyze)
	return r
}

func multipartUpload(t *testing.T, fieldName, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAnalyze_Success(t *testing.T) {
	svc := &fakeAnalysisService{resp: &model.AnalyzeResponse{
		Summary:        "A services agreement.",
		Extraction:     model.StructuredExtraction{Parties: []string{"Acme Corp"}},
		Confidence:     97,
		PagesProcessed: 3,
		DocID:          "contract_pdf",
	}}
	r := setupAnalyzeRouter(svc)

	body, contentType := multipartUpload(t, "file", "contract.pdf", []byte("%PDF-1.7"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "contract.pdf", svc.gotName)

	var resp model.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "contract_pdf", resp.DocID)
	assert.Equal(t, 3, resp.PagesProcessed)
	assert.Equal(t, 97, resp.Confidence)
}

func TestAnalyze_MissingFile(t *testing.T) {
	r := setupAnalyzeRouter(&fakeAnalysisService{})

	body, contentType := multipartUpload(t, "wrong_field", "contract.pdf", []byte("%PDF"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyze_UnprocessableDocument(t *testing.T) {
	svc := &fakeAnalysisService{err: errors.New("文档无法渲染为页面序列")}
	r := setupAnalyzeRouter(svc)

	body, contentType := multipartUpload(t, "file", "broken.pdf", []byte("junk"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDescribe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", NewHealthHandler().Describe)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "running", resp["status"])
	assert.Equal(t, "97%+", resp["accuracy_target"])
}
