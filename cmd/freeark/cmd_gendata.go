package main

import (
	"context"
	"fmt"
	"time"

	"freeark_web/internal/building"
	"freeark_web/internal/gendata"
	"freeark_web/pkg/log"
	"freeark_web/pkg/storage"

	"github.com/spf13/cobra"
)

type gendataFlags struct {
	source     string
	sheet      string
	out        string
	format     string
	varName    string
	level      string
	leafSuffix string
	sink       string
	watch      bool
	debounce   time.Duration
}

func newGendataCmd(a *app) *cobra.Command {
	f := &gendataFlags{}
	cmd := &cobra.Command{
		Use:   "gendata",
		Short: "从业主导出文件生成楼栋-单元-房号级联数据",
		Long: `读取业主导出文件（.json 或 .xlsx），按楼栋、单元、房号（或楼层）整理成三级树，
写成前端使用的 JS 模块或 JSON 文件。未指定的参数取配置文件中 building 段的值。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd, a)
			if err != nil {
				return err
			}
			sink, err := openSink(cmd.Context(), a, f.sink)
			if err != nil {
				return err
			}
			if f.watch {
				return gendata.Watch(cmd.Context(), opts, sink, f.debounce, nil)
			}

			res, err := gendata.Run(cmd.Context(), opts, sink)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已生成 %s：%d 个楼栋，%d 个单元，%d 个%s，跳过 %d 条记录\n",
				sink.Location(opts.Output), res.Buildings, res.Units, res.Leaves, leafName(opts.Policy), res.Skipped)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.source, "source", "s", "", "业主导出文件（.json 或 .xlsx）")
	fl.StringVar(&f.sheet, "sheet", "", "只读取 Excel 的指定工作表")
	fl.StringVarP(&f.out, "out", "o", "", "输出路径（file）或对象 key（s3）")
	fl.StringVar(&f.format, "format", "", "输出格式：js 或 json")
	fl.StringVar(&f.varName, "var-name", "", "JS 模块导出的变量名")
	fl.StringVar(&f.level, "level", "", "第三级：room 或 floor")
	fl.StringVar(&f.leafSuffix, "leaf-suffix", "", "第三级标签后缀，例如 室、号、楼")
	fl.StringVar(&f.sink, "sink", "", "写入目标：file 或 s3")
	fl.BoolVarP(&f.watch, "watch", "w", false, "源文件变化时自动重新生成")
	fl.DurationVar(&f.debounce, "debounce", gendata.DefaultDebounce, "watch 模式下合并连续修改的等待时间")
	return cmd
}

// options 以配置文件为底，命令行参数覆盖。
func (f *gendataFlags) options(cmd *cobra.Command, a *app) (gendata.Options, error) {
	bc := a.cfg.Building
	policy := bc.Policy
	if f.level != "" {
		level := building.Level(f.level)
		if level != policy.Level {
			policy.Level = level
			// 切换层级且未指定后缀时使用该层级的默认后缀
			if !cmd.Flags().Changed("leaf-suffix") {
				switch level {
				case building.LevelFloor:
					policy.LeafSuffix = building.FloorPolicy().LeafSuffix
				case building.LevelRoom:
					policy.LeafSuffix = building.DefaultPolicy().LeafSuffix
				}
			}
		}
	}
	if cmd.Flags().Changed("leaf-suffix") {
		policy.LeafSuffix = f.leafSuffix
	}
	if err := policy.Validate(); err != nil {
		return gendata.Options{}, err
	}

	opts := gendata.Options{
		Source: pick(f.source, bc.Source.Path),
		Sheet:  pick(f.sheet, bc.Source.Sheet),
		Fields: bc.Fields,
		Policy: policy,
		Render: building.RenderOptions{
			Format:  building.Format(pick(f.format, string(bc.Output.Format))),
			VarName: pick(f.varName, bc.Output.VarName),
		},
		Output: pick(f.out, bc.Output.Path),
	}
	switch opts.Render.Format {
	case building.FormatJS, building.FormatJSON:
	default:
		return gendata.Options{}, fmt.Errorf("unknown format %q, expected js or json", opts.Render.Format)
	}
	return opts, nil
}

func openSink(ctx context.Context, a *app, kind string) (storage.Sink, error) {
	switch pick(kind, a.cfg.Building.Output.Sink) {
	case "file", "":
		return storage.NewFileSink(""), nil
	case "s3":
		s3cfg := a.cfg.Storage.S3
		log.Infow("Using S3 sink", "bucket", s3cfg.Bucket, "endpoint", s3cfg.Endpoint)
		sink, err := storage.NewS3Sink(ctx, storage.S3Options{
			Endpoint:     s3cfg.Endpoint,
			Region:       s3cfg.Region,
			Bucket:       s3cfg.Bucket,
			AccessKey:    s3cfg.AccessKey,
			SecretKey:    s3cfg.SecretKey,
			UsePathStyle: s3cfg.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown sink %q, expected file or s3", kind)
	}
}

func leafName(p building.Policy) string {
	if p.Level == building.LevelFloor {
		return "楼层"
	}
	return "房号"
}

func pick(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
