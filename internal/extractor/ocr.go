package extractor

import (
	"clauselens-go/internal/config"
	"clauselens-go/internal/imaging"
	"clauselens-go/internal/model"
	"clauselens-go/pkg/log"
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// OCRExtractor 对单页图片执行 Tesseract 识别。
// 图片先经 Normalizer 预处理；预处理失败时退回原图。
// 引擎按"整块均匀文本"假设配置（PSM 6）。
type OCRExtractor struct {
	cfg        config.OCRConfig
	normalizer *imaging.Normalizer
}

// NewOCRExtractor 创建 OCR 抽取器。
func NewOCRExtractor(cfg config.OCRConfig, normalizer *imaging.Normalizer) *OCRExtractor {
	return &OCRExtractor{cfg: cfg, normalizer: normalizer}
}

func (e *OCRExtractor) Method() string {
	return model.MethodOCR
}

// ExtractPage 对单页执行预处理 + OCR，返回去除首尾空白的识别文本。
// 引擎的任何内部失败都折算为方法缺席。
func (e *OCRExtractor) ExtractPage(ctx context.Context, doc *model.Document, page model.Page) model.MethodResult {
	normalized := e.normalizer.Normalize(page.Image)

	// gosseract 客户端非并发安全，按页创建
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.cfg.Language); err != nil {
		log.Warnf("[OCR] 第 %d 页设置语言失败: %v", page.PageNumber, err)
		return model.Absent()
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		log.Warnf("[OCR] 第 %d 页设置分割模式失败: %v", page.PageNumber, err)
		return model.Absent()
	}
	if err := client.SetImageFromBytes(normalized); err != nil {
		log.Warnf("[OCR] 第 %d 页加载图片失败: %v", page.PageNumber, err)
		return model.Absent()
	}

	text, err := client.Text()
	if err != nil {
		log.Warnf("[OCR] 第 %d 页识别失败: %v", page.PageNumber, err)
		return model.Absent()
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.Absent()
	}
	log.Infof("[OCR] 第 %d 页识别成功, %d 字符", page.PageNumber, len(trimmed))
	return model.Present(trimmed)
}
