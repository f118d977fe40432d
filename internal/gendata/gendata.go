// Package gendata 从业主导出文件生成前端使用的楼栋级联数据。
package gendata

import (
	"bytes"
	"context"
	"fmt"

	"freeark_web/internal/building"
	"freeark_web/pkg/log"
	"freeark_web/pkg/storage"
)

// Options 描述一次生成。
type Options struct {
	Source string
	// Sheet 只对 .xlsx 源生效，为空时读取全部工作表。
	Sheet  string
	Fields building.Fields
	Policy building.Policy
	Render building.RenderOptions
	// Output 是写入 sink 的 key。
	Output string
}

// Run 读取源文件、构建树、编码并写入 sink。
// 读取或解析失败时不会写任何内容；写入失败时 sink 保证不留下半截文件。
func Run(ctx context.Context, opts Options, sink storage.Sink) (*building.Result, error) {
	builder, err := building.NewBuilder(opts.Policy)
	if err != nil {
		return nil, err
	}

	records, err := building.LoadFile(opts.Source, opts.Fields, opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	res := builder.Build(records)
	if res.Skipped > 0 {
		log.Warnw("Records skipped: missing building, unit or leaf value",
			"skipped", res.Skipped, "records", res.Records)
	}

	render := opts.Render
	if render.Header == "" {
		render.Header = opts.Policy.HeaderComment()
	}
	var buf bytes.Buffer
	if err := building.Encode(&buf, res.Tree, render); err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	if err := sink.Put(ctx, opts.Output, buf.Bytes(), render.ContentType()); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	log.Infow("Building data generated",
		"output", sink.Location(opts.Output),
		"buildings", res.Buildings,
		"units", res.Units,
		"leaves", res.Leaves,
		"records", res.Records,
		"skipped", res.Skipped,
	)
	return res, nil
}
