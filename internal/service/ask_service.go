package service

import (
	"bytes"
	"clauselens-go/internal/model"
	"clauselens-go/internal/repository"
	"clauselens-go/pkg/llm"
	"clauselens-go/pkg/log"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// askTopK 是单次问答检索的页面数。
const askTopK = 3

// snippetMaxLen 是拼入上下文的单页融合文本长度上限。
const snippetMaxLen = 1000

// AskService 定义了基于语义检索的文档问答接口。
type AskService interface {
	// Ask 对指定文档回答问题。检索失败时退化为仅用结构化数据作上下文,
	// 此时 PagesReferenced 为空; 接口本身不返回错误, 始终给出尽力而为的答案。
	Ask(ctx context.Context, question string, extraction json.RawMessage, docID string) *model.AskResponse
	// History 返回某文档已记录的问答历史。
	History(ctx context.Context, docID string) ([]model.ChatMessage, error)
}

type askService struct {
	indexService     IndexService
	llmClient        llm.Client
	conversationRepo repository.ConversationRepository
}

// NewAskService 创建一个新的 AskService 实例。
// conversationRepo 可为 nil（Redis 未配置时），问答历史随之关闭。
func NewAskService(indexService IndexService, llmClient llm.Client, conversationRepo repository.ConversationRepository) AskService {
	return &askService{
		indexService:     indexService,
		llmClient:        llmClient,
		conversationRepo: conversationRepo,
	}
}

// Ask 执行一轮问答：语义检索 → 上下文拼装 → 单次生成调用。
func (s *askService) Ask(ctx context.Context, question string, extraction json.RawMessage, docID string) *model.AskResponse {
	// 索引记录以规范化标识存储, 调用方可能传原始文件名, 先规范化再检索
	docID = model.DocumentID(docID)
	log.Infof("[AskService] 收到问题, doc_id: %s, question: %s", docID, question)

	contextText, pageRefs := s.buildContext(ctx, question, extraction, docID)

	prompt := fmt.Sprintf(`%s

User question: %s

Provide a detailed, accurate answer based on the information above. If the answer is on a specific page, mention the page number. Be precise and cite sources.`, contextText, question)

	answer, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		log.Errorf("[AskService] 答案生成失败, 使用兜底文案: %v", err)
		answer = insightFallback
	}

	// 问答历史为尽力而为：使用后台上下文, 请求取消也不影响已生成答案的留存
	if s.conversationRepo != nil && answer != "" {
		if err := s.conversationRepo.AppendExchange(context.Background(), docID, question, answer); err != nil {
			log.Errorf("[AskService] 保存问答历史失败: %v", err)
		}
	}

	// 注意: 即使检索失败退化为纯结构化上下文, grounded 仍报告 true,
	// 与既有对外行为保持一致; 检索是否真正参与可由 pages_referenced 是否为空判断。
	return &model.AskResponse{
		Answer:          answer,
		Grounded:        true,
		Model:           s.llmClient.ModelName() + " + Semantic Search",
		PagesReferenced: pageRefs,
	}
}

// buildContext 拼装问答上下文。检索成功时包含相关页面片段与结构化数据,
// 任何检索失败都降级为仅含结构化数据, 引用页列表为空。
func (s *askService) buildContext(ctx context.Context, question string, extraction json.RawMessage, docID string) (string, []model.PageRef) {
	structured := formatExtractionJSON(extraction)

	results, err := s.indexService.QueryDocument(ctx, docID, question, askTopK)
	if err != nil {
		log.Warnf("[AskService] 语义检索失败, 降级为仅结构化数据上下文: %v", err)
		return fmt.Sprintf("STRUCTURED DATA:\n%s\n\n", structured), []model.PageRef{}
	}

	var sb strings.Builder
	sb.WriteString("RELEVANT PAGES:\n\n")
	pageRefs := make([]model.PageRef, 0, len(results))
	for _, entry := range results {
		snippet := truncatePrefix(entry.TextContent, snippetMaxLen)
		sb.WriteString(fmt.Sprintf("PAGE %d:\n%s\n\n", entry.PageNumber, snippet))
		pageRefs = append(pageRefs, model.PageRef{DocID: entry.DocID, PageNumber: entry.PageNumber})
	}
	sb.WriteString(fmt.Sprintf("\nSTRUCTURED DATA:\n%s\n\n", structured))
	return sb.String(), pageRefs
}

// History 返回某文档的问答历史。未配置历史存储时返回空列表。
func (s *askService) History(ctx context.Context, docID string) ([]model.ChatMessage, error) {
	if s.conversationRepo == nil {
		return []model.ChatMessage{}, nil
	}
	return s.conversationRepo.GetHistory(ctx, model.DocumentID(docID))
}

// formatExtractionJSON 把请求携带的结构化抽取内容格式化为缩进 JSON。
func formatExtractionJSON(extraction json.RawMessage) string {
	if len(extraction) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, extraction, "", "  "); err != nil {
		return string(extraction)
	}
	return buf.String()
}
