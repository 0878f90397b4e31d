package pipeline

import (
	"clauselens-go/internal/extractor"
	"clauselens-go/internal/model"
	"clauselens-go/pkg/log"
	"context"
	"fmt"
	"sync"
)

// Renderer 把文档渲染为页面图片序列。
type Renderer interface {
	Render(doc *model.Document) ([]model.Page, error)
}

// Processor 封装了整篇文档的多方法抽取流程。
//
// 顺序：两个整文档级方法（数字文本、表格）各跑一次 → 渲染页面图片序列 →
// 逐页并发执行 OCR 与视觉理解（join-all 后才融合）→ 逐页融合。
// 单页失败不影响其余页面；唯一的请求级错误是文档整体无法渲染。
type Processor struct {
	renderer       Renderer
	docExtractors  []extractor.DocumentExtractor
	pageExtractors []extractor.PageExtractor
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	renderer Renderer,
	docExtractors []extractor.DocumentExtractor,
	pageExtractors []extractor.PageExtractor,
) *Processor {
	return &Processor{
		renderer:       renderer,
		docExtractors:  docExtractors,
		pageExtractors: pageExtractors,
	}
}

// Process 执行完整的逐页抽取与融合，返回 页码(从1开始) -> PageExtraction。
// 保证：文档有 N 个可渲染页面，结果就恰好覆盖 1..N，
// 无论各页上有多少方法成功。
func (p *Processor) Process(ctx context.Context, doc *model.Document) (map[int]*model.PageExtraction, error) {
	log.Infof("[Processor] 开始处理文档, DocID: %s, MIME: %s, 大小: %d 字节", doc.ID, doc.MIMEType, len(doc.Content))

	// 1. 整文档级方法各执行一次（方法内部自行吞错）
	log.Infof("[Processor] 步骤1: 执行 %d 个整文档级抽取方法", len(p.docExtractors))
	docResults := make(map[string]map[int]model.MethodResult, len(p.docExtractors))
	for _, ext := range p.docExtractors {
		docResults[ext.Method()] = ext.ExtractPages(ctx, doc)
	}

	// 2. 渲染页面图片序列。这是唯一的请求级失败点。
	log.Info("[Processor] 步骤2: 渲染页面图片")
	pages, err := p.renderer.Render(doc)
	if err != nil {
		log.Errorf("[Processor] 文档渲染失败, DocID: %s, Error: %v", doc.ID, err)
		return nil, fmt.Errorf("文档无法渲染为页面序列: %w", err)
	}
	log.Infof("[Processor] 步骤2: 渲染成功, 共 %d 页", len(pages))

	// 3. 逐页处理：页面级方法并发执行, 全部结束后才融合
	results := make(map[int]*model.PageExtraction, len(pages))
	for _, page := range pages {
		pe := p.processPage(ctx, doc, page, docResults)
		results[page.PageNumber] = pe
		log.Infof("[Processor] 第 %d 页处理完成, 在场方法 %d 个, 融合文本 %d 字符",
			page.PageNumber, presentCount(pe.Methods), len(pe.FusedText))
	}

	log.Infof("[Processor] 文档处理完成, DocID: %s, 共 %d 页", doc.ID, len(results))
	return results, nil
}

// processPage 处理单页。内部 recover 兜底：即使某页发生意外 panic，
// 该页也会降级为空结果而不是中断后续页面。
func (p *Processor) processPage(ctx context.Context, doc *model.Document, page model.Page, docResults map[string]map[int]model.MethodResult) (pe *model.PageExtraction) {
	methods := make(map[string]model.MethodResult)
	pe = &model.PageExtraction{PageNumber: page.PageNumber, Methods: methods}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Processor] 第 %d 页处理发生 panic, 降级为空结果: %v", page.PageNumber, r)
		}
		pe.FusedText = Fuse(pe.Methods)
	}()

	// 整文档级方法在本页的结果
	for method, byPage := range docResults {
		if result, ok := byPage[page.PageNumber]; ok && result.OK {
			methods[method] = result
		}
	}

	// 页面级方法相互独立, 并发执行, join-all 之后才进入融合
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, ext := range p.pageExtractors {
		wg.Add(1)
		go func(ext extractor.PageExtractor) {
			defer wg.Done()
			result := ext.ExtractPage(ctx, doc, page)
			if !result.OK {
				return
			}
			mu.Lock()
			methods[ext.Method()] = result
			mu.Unlock()
		}(ext)
	}
	wg.Wait()

	return pe
}

func presentCount(methods map[string]model.MethodResult) int {
	count := 0
	for _, r := range methods {
		if r.OK {
			count++
		}
	}
	return count
}
