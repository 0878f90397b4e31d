package extractor

import (
	"clauselens-go/internal/config"
	"clauselens-go/internal/model"
	"clauselens-go/pkg/log"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Runner 封装外部命令的执行，便于在测试中替换。
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// TableExtractor 通过外部表格抽取工具（tabula 风格 CLI）从整篇 PDF 中
// 抽取表格，整篇文档只跑一次。底层工具只接受文件路径输入，
// 因此文档字节先写入临时文件，抽取结束后无条件删除。
type TableExtractor struct {
	cfg    config.TablesConfig
	runner Runner
}

// NewTableExtractor 创建表格抽取器。
func NewTableExtractor(cfg config.TablesConfig) *TableExtractor {
	return &TableExtractor{cfg: cfg, runner: execRunner{}}
}

func (e *TableExtractor) Method() string {
	return model.MethodTables
}

// rawTable 对应外部工具输出的单张表：data 为 行 x 列 的单元格数组。
type rawTable struct {
	Page int `json:"page"`
	Data [][]struct {
		Text string `json:"text"`
	} `json:"data"`
}

// ExtractPages 返回每页的表格渲染文本（同页多张表以空行分隔）。
func (e *TableExtractor) ExtractPages(ctx context.Context, doc *model.Document) map[int]model.MethodResult {
	results := make(map[int]model.MethodResult)
	if e.cfg.Command == "" {
		log.Debugf("[Tables] 未配置表格抽取命令, 跳过")
		return results
	}
	if !doc.IsPDF() {
		log.Debugf("[Tables] 非 PDF 输入 (%s), 跳过表格抽取", doc.MIMEType)
		return results
	}

	// 底层工具要求文件输入；临时文件无论成败都删除
	tmp, err := os.CreateTemp("", "clauselens-*.pdf")
	if err != nil {
		log.Warnf("[Tables] 创建临时文件失败, 该方法整体缺席: %v", err)
		return results
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(doc.Content); err != nil {
		_ = tmp.Close()
		log.Warnf("[Tables] 写入临时文件失败: %v", err)
		return results
	}
	if err := tmp.Close(); err != nil {
		log.Warnf("[Tables] 关闭临时文件失败: %v", err)
		return results
	}

	output, err := e.runner.Run(ctx, e.cfg.Command, "--pages", "all", "--format", "JSON", tmpPath)
	if err != nil {
		log.Warnf("[Tables] 表格抽取命令执行失败: %v", err)
		return results
	}

	var tables []rawTable
	if err := json.Unmarshal(output, &tables); err != nil {
		log.Warnf("[Tables] 解析表格抽取输出失败: %v", err)
		return results
	}

	// 按页聚合，每张表渲染为对齐文本
	byPage := make(map[int][]string)
	for _, t := range tables {
		rendered := renderTable(t)
		if rendered == "" {
			continue
		}
		byPage[t.Page] = append(byPage[t.Page], rendered)
	}
	for page, rendered := range byPage {
		results[page] = model.Present(strings.Join(rendered, "\n\n"))
	}
	log.Infof("[Tables] 表格抽取完成, 共 %d 张表, 覆盖 %d 页", len(tables), len(results))
	return results
}

// renderTable 把一张表渲染为对齐的纯文本网格。
func renderTable(t rawTable) string {
	if len(t.Data) == 0 {
		return ""
	}
	var sb strings.Builder
	w := tablewriter.NewWriter(&sb)
	w.SetAutoFormatHeaders(false)
	w.SetAutoWrapText(false)
	for i, row := range t.Data {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, strings.TrimSpace(cell.Text))
		}
		if i == 0 {
			w.SetHeader(cells)
			continue
		}
		w.Append(cells)
	}
	w.Render()
	return strings.TrimRight(sb.String(), "\n")
}
