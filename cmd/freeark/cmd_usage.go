package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"freeark_web/pkg/apiclient"

	"github.com/spf13/cobra"
)

func newUsageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "查询能耗用量",
	}

	type report func(*apiclient.Client, context.Context, apiclient.UsageQuery) (*apiclient.UsageReport, error)
	sub := func(use, short string, fn report) *cobra.Command {
		var q apiclient.UsageQuery
		var asJSON bool
		c := &cobra.Command{
			Use:         use,
			Short:       short,
			Args:        cobra.NoArgs,
			Annotations: requiresAuth(),
			RunE: func(cmd *cobra.Command, args []string) error {
				rep, err := fn(a.client(), cmd.Context(), q)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd, rep)
				}
				return printUsage(cmd, rep)
			},
		}
		fl := c.Flags()
		fl.StringVar(&q.SpecificPart, "part", "", "专有部分，例如 1-1-201")
		fl.StringVar(&q.Building, "building", "", "楼栋")
		fl.StringVar(&q.Unit, "unit", "", "单元")
		fl.StringVar(&q.RoomNumber, "room", "", "房号")
		fl.StringVar(&q.EnergyMode, "mode", "", "供能模式，例如 制冷、制热")
		fl.StringVar(&q.StartTime, "start", "", "开始日期 YYYY-MM-DD")
		fl.StringVar(&q.EndTime, "end", "", "结束日期 YYYY-MM-DD")
		fl.IntVar(&q.Page, "page", 0, "页码")
		fl.IntVar(&q.PageSize, "page-size", 0, "每页条数")
		fl.BoolVar(&asJSON, "json", false, "输出 JSON")
		return c
	}

	cmd.AddCommand(
		sub("daily", "按日查询用量", (*apiclient.Client).DailyUsage),
		sub("monthly", "按月查询用量", (*apiclient.Client).MonthlyUsage),
		sub("period", "按时间段查询用量", (*apiclient.Client).PeriodUsage),
	)
	return cmd
}

func printUsage(cmd *cobra.Command, rep *apiclient.UsageReport) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "专有部分\t模式\t周期\t起始读数\t结束读数\t用量")
	for _, r := range rep.Records {
		period := r.TimePeriod
		if period == "" {
			period = r.UsageMonth
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.SpecificPart, r.EnergyMode, period,
			nullString(r.InitialEnergy.Valid, r.InitialEnergy.Decimal.String()),
			nullString(r.FinalEnergy.Valid, r.FinalEnergy.Decimal.String()),
			nullString(r.UsageQuantity.Valid, r.UsageQuantity.Decimal.String()))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "共 %d 条，本页合计用量 %s\n", rep.Total, rep.Sum().String())
	return nil
}

func nullString(valid bool, s string) string {
	if !valid {
		return "-"
	}
	return s
}
