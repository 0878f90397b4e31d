package model

import "time"

// StructuredExtraction 是从全文中抽取出的结构化合同信息，七个字段固定。
type StructuredExtraction struct {
	Parties         []string `json:"parties"`
	Dates           []string `json:"dates"`
	PaymentTerms    string   `json:"payment_terms"`
	Liability       string   `json:"liability"`
	Termination     string   `json:"termination"`
	GoverningLaw    string   `json:"governing_law"`
	DocumentNumbers []string `json:"document_numbers"`
}

// FallbackExtraction 返回结构化抽取失败时的固定兜底结构。
func FallbackExtraction() StructuredExtraction {
	return StructuredExtraction{
		Parties:         []string{},
		Dates:           []string{},
		PaymentTerms:    "Extraction failed",
		Liability:       "See document",
		Termination:     "See document",
		GoverningLaw:    "Unknown",
		DocumentNumbers: []string{},
	}
}

// AnalyzeResponse 是 POST /analyze 的响应结构。
type AnalyzeResponse struct {
	Summary        string               `json:"summary"`
	Extraction     StructuredExtraction `json:"extraction"`
	Risks          string               `json:"risks"`
	Negotiation    string               `json:"negotiation"`
	Confidence     int                  `json:"confidence"`
	Engine         string               `json:"engine"`
	PagesProcessed int                  `json:"pages_processed"`
	DocID          string               `json:"doc_id"`
}

// PageRef 标记一次问答引用到的页面。
type PageRef struct {
	DocID      string `json:"doc_id"`
	PageNumber int    `json:"page_number"`
}

// AskResponse 是 POST /ask 的响应结构。
type AskResponse struct {
	Answer          string    `json:"answer"`
	Grounded        bool      `json:"grounded"`
	Model           string    `json:"model"`
	PagesReferenced []PageRef `json:"pages_referenced"`
}

// ChatMessage 表示问答历史中的一条消息。
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
