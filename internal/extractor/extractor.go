// Package extractor 包含四种相互独立的内容抽取方法适配器。
//
// 所有适配器遵守同一条错误纪律：自行捕获并记录内部失败，
// 返回"方法缺席"的结果，绝不向上抛错——任何一种方法失败都不能
// 阻塞其他方法或中断整条流水线。
package extractor

import (
	"clauselens-go/internal/model"
	"context"
)

// DocumentExtractor 对整篇文档执行一次抽取，返回 页码 -> 结果 的映射。
// 没有产出的页不出现在映射中。
type DocumentExtractor interface {
	Method() string
	ExtractPages(ctx context.Context, doc *model.Document) map[int]model.MethodResult
}

// PageExtractor 对单个页面图片执行抽取。
type PageExtractor interface {
	Method() string
	ExtractPage(ctx context.Context, doc *model.Document, page model.Page) model.MethodResult
}
