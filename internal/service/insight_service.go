package service

import (
	"clauselens-go/internal/model"
	"clauselens-go/pkg/llm"
	"clauselens-go/pkg/log"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// maxCombinedChars 是送入结构化抽取的全文字符预算。
// 截断策略：保留最早页面的前缀，丢弃尾部。
const maxCombinedChars = 15000

// insightFallback 是洞察类调用失败时的固定兜底文案。
const insightFallback = "Reasoning unavailable."

// structuredPromptTemplate 要求模型扫描每一页并只返回固定结构的 JSON，
// 特别提示关注页边/页底的编号。
const structuredPromptTemplate = `Analyze this multi-page document and extract contract information.

DOCUMENT CONTENT:
%s

Extract and return ONLY this JSON structure:
{
  "parties": ["ALL parties/people/companies from ANY page"],
  "dates": ["ALL dates from ANY page"],
  "payment_terms": "ALL payment info including amounts, currency, invoice numbers",
  "liability": "liability/indemnification clauses",
  "termination": "termination conditions",
  "governing_law": "jurisdiction",
  "document_numbers": ["ALL reference numbers, IDs, invoice numbers from ANY page - check bottoms of pages!"]
}

Be thorough - check every page. Return ONLY valid JSON:`

// InsightService 定义了结构化抽取与自由文本洞察生成的接口。
// 每个方法都自行兜底：后端不可达或输出不可解析时返回固定兜底值，绝不抛错。
type InsightService interface {
	ExtractStructured(ctx context.Context, pages map[int]*model.PageExtraction) model.StructuredExtraction
	Risks(ctx context.Context, extraction model.StructuredExtraction) string
	Negotiation(ctx context.Context, extraction model.StructuredExtraction) string
	Summary(ctx context.Context, extraction model.StructuredExtraction) string
}

type insightService struct {
	llmClient llm.Client
}

// NewInsightService 创建一个新的 InsightService 实例。
func NewInsightService(llmClient llm.Client) InsightService {
	return &insightService{llmClient: llmClient}
}

// BuildCombinedText 把逐页融合文本按页码升序拼接，并截断到字符预算内。
// 始终保留最早的内容（前缀），绝不保留后缀或任意切片。
func BuildCombinedText(pages map[int]*model.PageExtraction) string {
	ordinals := make([]int, 0, len(pages))
	for pageNum := range pages {
		ordinals = append(ordinals, pageNum)
	}
	sort.Ints(ordinals)

	var sb strings.Builder
	for _, pageNum := range ordinals {
		sb.WriteString(fmt.Sprintf("\n\n=== PAGE %d ===\n", pageNum))
		sb.WriteString(pages[pageNum].FusedText)
	}

	return truncatePrefix(sb.String(), maxCombinedChars)
}

// truncatePrefix 截取不超过 max 字节的前缀，并退避到完整的 UTF-8 边界，
// 避免把多字节字符截成非法序列送入模型。
func truncatePrefix(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ExtractStructured 对全文执行一次结构化合同信息抽取。
// 解析失败或后端失败时返回固定的七字段兜底结构。
func (s *insightService) ExtractStructured(ctx context.Context, pages map[int]*model.PageExtraction) model.StructuredExtraction {
	log.Info("[InsightService] 开始结构化抽取")
	combined := BuildCombinedText(pages)
	prompt := fmt.Sprintf(structuredPromptTemplate, combined)

	response, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		log.Errorf("[InsightService] 结构化抽取调用失败, 使用兜底结构: %v", err)
		return model.FallbackExtraction()
	}

	extraction, err := parseExtractionJSON(response)
	if err != nil {
		log.Warnf("[InsightService] 模型输出不是合法 JSON, 使用兜底结构: %v", err)
		return model.FallbackExtraction()
	}
	log.Info("[InsightService] 结构化抽取完成")
	return extraction
}

// parseExtractionJSON 修复并解析模型输出：剥掉代码围栏后，
// 只取首个 '{' 到末个 '}' 的区间作为 JSON 解析。
func parseExtractionJSON(response string) (model.StructuredExtraction, error) {
	text := strings.TrimSpace(response)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return model.StructuredExtraction{}, fmt.Errorf("响应中未找到 JSON 对象")
	}
	text = text[start : end+1]

	var extraction model.StructuredExtraction
	if err := json.Unmarshal([]byte(text), &extraction); err != nil {
		return model.StructuredExtraction{}, err
	}
	// 列表字段统一为非 nil, 响应序列化时保持 [] 而非 null
	if extraction.Parties == nil {
		extraction.Parties = []string{}
	}
	if extraction.Dates == nil {
		extraction.Dates = []string{}
	}
	if extraction.DocumentNumbers == nil {
		extraction.DocumentNumbers = []string{}
	}
	return extraction, nil
}

// Risks 生成合同关键风险的编号列表。
func (s *insightService) Risks(ctx context.Context, extraction model.StructuredExtraction) string {
	return s.generateInsight(ctx, fmt.Sprintf(
		"List 3 key risks from this contract: %s\n\nFormat as numbered list.", marshalExtraction(extraction)))
}

// Negotiation 生成改进建议的编号列表。
func (s *insightService) Negotiation(ctx context.Context, extraction model.StructuredExtraction) string {
	return s.generateInsight(ctx, fmt.Sprintf(
		"Suggest 2 improvements for: %s\n\nFormat as numbered list.", marshalExtraction(extraction)))
}

// Summary 生成两句话的执行摘要。
func (s *insightService) Summary(ctx context.Context, extraction model.StructuredExtraction) string {
	return s.generateInsight(ctx, fmt.Sprintf(
		"Write 2-sentence executive summary: %s", marshalExtraction(extraction)))
}

// generateInsight 执行单次生成调用，失败时返回固定兜底文案。
func (s *insightService) generateInsight(ctx context.Context, prompt string) string {
	response, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		log.Warnf("[InsightService] 洞察生成调用失败, 使用兜底文案: %v", err)
		return insightFallback
	}
	return response
}

func marshalExtraction(extraction model.StructuredExtraction) string {
	b, err := json.Marshal(extraction)
	if err != nil {
		return "{}"
	}
	return string(b)
}
