package handler

import (
	"clauselens-go/internal/service"
	"clauselens-go/pkg/log"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AskHandler 负责处理文档问答请求。
type AskHandler struct {
	askService service.AskService
}

// NewAskHandler 创建一个新的 AskHandler 实例。
func NewAskHandler(askService service.AskService) *AskHandler {
	return &AskHandler{askService: askService}
}

// AskRequest 定义了问答 API 的请求体结构。
// Extraction 原样透传结构化抽取结果，作为检索失败时的兜底上下文。
type AskRequest struct {
	Question   string          `json:"question"`
	Extraction json.RawMessage `json:"extraction"`
	DocID      string          `json:"doc_id"`
}

// Ask 处理文档问答请求。检索失败时退化为纯结构化上下文，仍返回 200。
func (h *AskHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求负载"})
		return
	}
	if req.Question == "" {
		c.JSON(http.StatusOK, gin.H{"answer": "Missing question.", "grounded": false})
		return
	}
	docID := req.DocID
	if docID == "" {
		docID = "unknown"
	}

	resp := h.askService.Ask(c.Request.Context(), req.Question, req.Extraction, docID)
	log.Infof("[AskHandler] 问答完成, doc_id: %s, 引用页数: %d", docID, len(resp.PagesReferenced))
	c.JSON(http.StatusOK, resp)
}

// History 返回某文档已记录的问答历史。
func (h *AskHandler) History(c *gin.Context) {
	docID := c.Param("docId")
	if docID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 docId"})
		return
	}

	messages, err := h.askService.History(c.Request.Context(), docID)
	if err != nil {
		log.Errorf("[AskHandler] 获取问答历史失败, doc_id: %s, error: %v", docID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取问答历史失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"doc_id": docID, "messages": messages})
}
