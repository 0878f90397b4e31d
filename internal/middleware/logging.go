// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"clauselens-go/pkg/log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger 是一个 Gin 中间件，用于记录请求概要日志。
// 文档上传请求体可达几十 MB，因此不回放请求体，只记录元信息。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 记录请求开始时间
		startTime := time.Now()

		c.Next()

		// 计算延迟
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		path := c.Request.URL.Path
		contentType := c.ContentType()

		fields := []interface{}{
			"statusCode", statusCode,
			"latency", latency.String(),
			"clientIP", clientIP,
			"method", method,
			"path", path,
			"requestId", GetRequestID(c),
		}
		if strings.HasPrefix(contentType, "multipart/") {
			fields = append(fields, "requestSize", c.Request.ContentLength)
		}

		log.Infow("HTTP Request Log", fields...)
	}
}
