// Package render 负责把文档字节渲染为逐页图片序列。
package render

import (
	"bytes"
	"clauselens-go/internal/model"
	"clauselens-go/pkg/log"
	"fmt"
	"image"
	"image/png"

	// 非 PDF 输入按单页图片解码，注册常见格式
	_ "image/gif"
	_ "image/jpeg"

	"github.com/gen2brain/go-fitz"
)

// Renderer 把文档字节转换为有序的页面图片序列。
// 这是流水线中唯一允许产生请求级错误的环节：渲染失败意味着没有任何页面可处理。
type Renderer struct {
	dpi int
}

// NewRenderer 创建一个 Renderer，dpi 用于 PDF 栅格化（偏高以利 OCR 精度）。
func NewRenderer(dpi int) *Renderer {
	if dpi <= 0 {
		dpi = 300
	}
	return &Renderer{dpi: dpi}
}

// Render 渲染文档的全部页面。PDF 按配置 DPI 逐页栅格化；
// 其他 MIME 类型按单页图片解码。返回的页码从 1 开始。
func (r *Renderer) Render(doc *model.Document) ([]model.Page, error) {
	if doc.IsPDF() {
		return r.renderPDF(doc.Content)
	}
	return r.renderImage(doc.Content)
}

func (r *Renderer) renderPDF(content []byte) ([]model.Page, error) {
	fitzDoc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("打开 PDF 失败: %w", err)
	}
	defer fitzDoc.Close()

	total := fitzDoc.NumPage()
	log.Infof("[Renderer] PDF 打开成功, 共 %d 页, DPI: %d", total, r.dpi)

	pages := make([]model.Page, 0, total)
	for i := 0; i < total; i++ {
		img, err := fitzDoc.ImageDPI(i, float64(r.dpi))
		if err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", i+1, err)
		}
		encoded, err := encodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("编码第 %d 页失败: %w", i+1, err)
		}
		pages = append(pages, model.Page{PageNumber: i + 1, Image: encoded})
	}
	return pages, nil
}

// renderImage 把非 PDF 输入当作单页图片处理，统一转成 PNG 编码。
func (r *Renderer) renderImage(content []byte) ([]model.Page, error) {
	img, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	log.Infof("[Renderer] 图片解码成功, 格式: %s, 作为单页处理", format)

	encoded, err := encodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("编码图片失败: %w", err)
	}
	return []model.Page{{PageNumber: 1, Image: encoded}}, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
