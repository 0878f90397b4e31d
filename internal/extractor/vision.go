package extractor

import (
	"clauselens-go/internal/config"
	"clauselens-go/internal/model"
	"clauselens-go/pkg/llm"
	"clauselens-go/pkg/log"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// visionPromptTemplate 要求视觉模型描述版面、识别手写、关注页边/页底的
// 编号，并做尽量完整的转写。%d 为页码。
const visionPromptTemplate = `Analyze page %d thoroughly:

1. Describe the layout and structure
2. Identify all text, including handwritten notes
3. Note any numbers, IDs, amounts, especially at margins/bottom
4. Describe any tables, forms, or special formatting
5. Extract ALL visible information

Be extremely detailed and precise.`

// VisionExtractor 把未预处理的原始页面图片交给视觉大模型做版面理解与转写。
// 网络超时、非 200 响应等一切失败都折算为方法缺席。
type VisionExtractor struct {
	cfg    config.VisionConfig
	client llm.Client
}

// NewVisionExtractor 创建视觉抽取器。
func NewVisionExtractor(cfg config.VisionConfig, client llm.Client) *VisionExtractor {
	return &VisionExtractor{cfg: cfg, client: client}
}

func (e *VisionExtractor) Method() string {
	return model.MethodVision
}

// ExtractPage 对单页原图执行视觉理解。注意使用原图而非预处理图：
// 二值化会抹掉视觉模型依赖的版面与灰度信息。
func (e *VisionExtractor) ExtractPage(ctx context.Context, doc *model.Document, page model.Page) model.MethodResult {
	imageBase64 := base64.StdEncoding.EncodeToString(page.Image)
	prompt := fmt.Sprintf(visionPromptTemplate, page.PageNumber)

	response, err := e.client.GenerateWithImage(ctx, e.cfg.Model, prompt, imageBase64)
	if err != nil {
		log.Warnf("[Vision] 第 %d 页视觉理解失败: %v", page.PageNumber, err)
		return model.Absent()
	}
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return model.Absent()
	}
	log.Infof("[Vision] 第 %d 页视觉理解成功, %d 字符", page.PageNumber, len(trimmed))
	return model.Present(trimmed)
}
