package model

// IndexEntry 代表语义索引中的一条记录：每个成功向量化的页面恰好一条。
// 重新摄取同一 doc_id 的文档会先删除其全部旧记录再写入（delete-then-insert）。
type IndexEntry struct {
	EntryID     string    `json:"entry_id"` // doc_id + "_page_" + 页码
	DocID       string    `json:"doc_id"`
	PageNumber  int       `json:"page_number"`
	TextContent string    `json:"text_content"`
	Vector      []float32 `json:"vector"`
	Score       float64   `json:"score,omitempty"` // 仅查询结果携带
}
