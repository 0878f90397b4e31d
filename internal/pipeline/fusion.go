// Package pipeline 定义了文档处理的核心流程：多方法抽取、逐页融合与编排。
package pipeline

import (
	"clauselens-go/internal/model"
	"fmt"
	"strings"
)

// combinedMarker 是融合文本的顶层标记。
const combinedMarker = "=== COMBINED EXTRACTION ==="

// Fuse 把一页上所有在场方法的结果按固定顺序拼接成带分节标题的融合文本。
// 顺序恒为 digital-text、ocr、vision、tables；缺席的方法静默跳过，不重排。
// 即使所有方法都缺席也会返回只含顶层标记的文本——页记录必须存在。
func Fuse(methods map[string]model.MethodResult) string {
	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(combinedMarker)
	sb.WriteString("\n\n")
	for _, method := range model.MethodOrder {
		result, ok := methods[method]
		if !ok || !result.OK {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n--- %s ---\n%s\n", strings.ToUpper(method), result.Text))
	}
	return sb.String()
}
