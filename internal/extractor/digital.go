package extractor

import (
	"clauselens-go/internal/model"
	"clauselens-go/pkg/log"
	"context"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// DigitalTextExtractor 抽取数字 PDF 内嵌的文本层，整篇文档只跑一次。
// 没有内嵌文本的页（纯扫描页）不出现在结果映射中。
type DigitalTextExtractor struct{}

// NewDigitalTextExtractor 创建数字文本抽取器。
func NewDigitalTextExtractor() *DigitalTextExtractor {
	return &DigitalTextExtractor{}
}

func (e *DigitalTextExtractor) Method() string {
	return model.MethodDigitalText
}

// ExtractPages 返回每页的内嵌文本。非 PDF 输入没有文本层，直接返回空映射。
func (e *DigitalTextExtractor) ExtractPages(ctx context.Context, doc *model.Document) map[int]model.MethodResult {
	results := make(map[int]model.MethodResult)
	if !doc.IsPDF() {
		log.Debugf("[DigitalText] 非 PDF 输入 (%s), 跳过内嵌文本抽取", doc.MIMEType)
		return results
	}

	fitzDoc, err := fitz.NewFromMemory(doc.Content)
	if err != nil {
		log.Warnf("[DigitalText] 打开 PDF 失败, 该方法整体缺席: %v", err)
		return results
	}
	defer fitzDoc.Close()

	for i := 0; i < fitzDoc.NumPage(); i++ {
		text, err := fitzDoc.Text(i)
		if err != nil {
			log.Warnf("[DigitalText] 第 %d 页文本抽取失败: %v", i+1, err)
			continue
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		results[i+1] = model.Present(trimmed)
	}
	log.Infof("[DigitalText] 内嵌文本抽取完成, 覆盖 %d 页", len(results))
	return results
}
