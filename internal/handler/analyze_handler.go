package handler

import (
	"clauselens-go/internal/service"
	"clauselens-go/pkg/log"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AnalyzeHandler 负责处理文档分析请求。
type AnalyzeHandler struct {
	analysisService service.AnalysisService
}

// NewAnalyzeHandler 创建一个新的 AnalyzeHandler 实例。
func NewAnalyzeHandler(analysisService service.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{analysisService: analysisService}
}

// Analyze 处理 multipart 文件上传并运行完整分析流水线。
// 部分后端失败仍返回 200 的尽力而为结果；只有文档整体无法渲染才报错。
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warnf("[AnalyzeHandler] 请求缺少文件: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("[AnalyzeHandler] 打开上传文件失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Errorf("[AnalyzeHandler] 读取上传文件失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	log.Infof("[AnalyzeHandler] 收到分析请求, 文件: %s, MIME: %s, 大小: %d 字节",
		fileHeader.Filename, mimeType, len(content))

	result, err := h.analysisService.Analyze(c.Request.Context(), fileHeader.Filename, mimeType, content)
	if err != nil {
		// 唯一的请求级失败：文档无法渲染为页面序列
		log.Errorf("[AnalyzeHandler] 文档分析失败: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "文档无法解析"})
		return
	}

	log.Infof("[AnalyzeHandler] 分析完成, doc_id: %s, 页数: %d", result.DocID, result.PagesProcessed)
	c.JSON(http.StatusOK, result)
}
