// Package model 定义了核心领域对象与对外响应结构。
package model

import "strings"

// 抽取方法名常量。融合时的分节顺序固定为：数字文本、OCR、视觉、表格。
const (
	MethodDigitalText = "digital-text"
	MethodOCR         = "ocr"
	MethodVision      = "vision"
	MethodTables      = "tables"
)

// MethodOrder 是融合文本时各抽取方法的固定顺序。
var MethodOrder = []string{MethodDigitalText, MethodOCR, MethodVision, MethodTables}

// Document 表示一次分析请求中的待处理文档。仅在单次流水线运行内存活。
type Document struct {
	ID       string
	FileName string
	Content  []byte
	MIMEType string
}

// NewDocument 根据上传的文件名与内容构造 Document。
// 文档标识由文件名派生：点号替换为下划线（与向量索引中的 doc_id 一致）。
func NewDocument(fileName, mimeType string, content []byte) *Document {
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	return &Document{
		ID:       DocumentID(fileName),
		FileName: fileName,
		Content:  content,
		MIMEType: mimeType,
	}
}

// DocumentID 将文件名规范化为文档标识。
func DocumentID(fileName string) string {
	return strings.ReplaceAll(fileName, ".", "_")
}

// IsPDF 判断文档是否为 PDF 类型。
func (d *Document) IsPDF() bool {
	return d.MIMEType == "application/pdf"
}

// Page 表示文档中的一页，PageNumber 从 1 开始。
// Image 是渲染后的页面图片（PNG 编码）。
type Page struct {
	PageNumber int
	Image      []byte
}

// MethodResult 是单个抽取方法在单页上的结果。
// OK 为 false 表示该方法失败或没有产出（两者对调用方等价：方法缺席）；
// 区别于 OK 为 true 但 Text 为空串的"成功但内容为空"。
type MethodResult struct {
	Text string
	OK   bool
}

// Absent 返回一个表示方法缺席的结果。
func Absent() MethodResult {
	return MethodResult{}
}

// Present 返回一个携带文本的成功结果。
func Present(text string) MethodResult {
	return MethodResult{Text: text, OK: true}
}

// PageExtraction 汇总了一页上所有抽取方法的结果及融合后的文本。
// 即使所有方法都失败，该记录也必须存在（FusedText 仅含融合标记），
// 以保证整篇文档的页数完整性。
type PageExtraction struct {
	PageNumber int
	Methods    map[string]MethodResult
	FusedText  string
}
