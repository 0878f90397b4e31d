package handler

import (
	"bytes"
	"clauselens-go/internal/model"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAskService struct {
	resp       *model.AskResponse
	messages   []model.ChatMessage
	historyErr error
	gotDocID   string
}

func (s *fakeAskService) Ask(ctx context.Context, question string, extraction json.RawMessage, docID string) *model.AskResponse {
	s.gotDocID = docID
	return s.resp
}

func (s *fakeAskService) History(ctx context.Context, docID string) ([]model.ChatMessage, error) {
	return s.messages, s.historyErr
}

func setupAskRouter(svc *fakeAskService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAskHandler(svc)
	r.POST("/ask", h.Ask)
	r.GET("/documents/:docId/conversation", h.History)
	return r
}

func TestAsk_Success(t *testing.T) {
	svc := &fakeAskService{resp: &model.AskResponse{
		Answer:          "Net 30.",
		Grounded:        true,
		Model:           "mistral + Semantic Search",
		PagesReferenced: []model.PageRef{{DocID: "contract_pdf", PageNumber: 2}},
	}}
	r := setupAskRouter(svc)

	body := `{"question": "When is payment due?", "doc_id": "contract_pdf", "extraction": {"payment_terms": "Net 30"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "contract_pdf", svc.gotDocID)

	var resp model.AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Net 30.", resp.Answer)
	assert.True(t, resp.Grounded)
	require.Len(t, resp.PagesReferenced, 1)
	assert.Equal(t, 2, resp.PagesReferenced[0].PageNumber)
}

func TestAsk_MissingQuestion(t *testing.T) {
	svc := &fakeAskService{}
	r := setupAskRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(`{"doc_id": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// 缺少问题不报错, 返回固定提示且 grounded 为 false
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Missing question.", resp["answer"])
	assert.Equal(t, false, resp["grounded"])
}

func TestAsk_MissingDocIDDefaultsToUnknown(t *testing.T) {
	svc := &fakeAskService{resp: &model.AskResponse{Answer: "ok", Grounded: true}}
	r := setupAskRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(`{"question": "q"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unknown", svc.gotDocID)
}

func TestAsk_InvalidPayload(t *testing.T) {
	r := setupAskRouter(&fakeAskService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory_ReturnsMessages(t *testing.T) {
	svc := &fakeAskService{messages: []model.ChatMessage{
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
	}}
	r := setupAskRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/documents/contract_pdf/conversation", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		DocID    string              `json:"doc_id"`
		Messages []model.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "contract_pdf", resp.DocID)
	assert.Len(t, resp.Messages, 2)
}
