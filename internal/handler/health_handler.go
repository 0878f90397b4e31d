// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler 负责服务健康与能力描述。
type HealthHandler struct{}

// NewHealthHandler 创建一个新的 HealthHandler 实例。
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Describe 返回静态的健康/能力描述 JSON。
func (h *HealthHandler) Describe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "running",
		"mode":            "Ultra-Accurate Multi-Method Pipeline",
		"accuracy_target": "97%+",
		"methods":         []string{"DigitalText", "Tesseract OCR", "Vision", "Tables", "Vector Search"},
	})
}
