package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// UsageRecord 是一户在一个统计周期内的能耗。
// 能耗读数使用 decimal，避免累计值相减时出现浮点误差。
type UsageRecord struct {
	ID            uint                `json:"id"`
	SpecificPart  string              `json:"specific_part"`
	Building      string              `json:"building"`
	Unit          string              `json:"unit"`
	RoomNumber    string              `json:"room_number"`
	EnergyMode    string              `json:"energy_mode"`
	InitialEnergy decimal.NullDecimal `json:"initial_energy"`
	FinalEnergy   decimal.NullDecimal `json:"final_energy"`
	UsageQuantity decimal.NullDecimal `json:"usage_quantity"`
	// TimePeriod 是日报的日期，UsageMonth 是月报的月份。
	TimePeriod string `json:"time_period,omitempty"`
	UsageMonth string `json:"usage_month,omitempty"`
}

// UsageQuery 是能耗查询的过滤条件，空字段不发送。
type UsageQuery struct {
	SpecificPart string
	Building     string
	Unit         string
	RoomNumber   string
	EnergyMode   string
	StartTime    string
	EndTime      string
	Page         int
	PageSize     int
}

func (q UsageQuery) params() map[string]string {
	p := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			p[k] = v
		}
	}
	set("specific_part", q.SpecificPart)
	set("building", q.Building)
	set("unit", q.Unit)
	set("room_number", q.RoomNumber)
	set("energy_mode", q.EnergyMode)
	set("start_time", q.StartTime)
	set("end_time", q.EndTime)
	if q.Page > 0 {
		p["page"] = fmt.Sprint(q.Page)
	}
	if q.PageSize > 0 {
		p["page_size"] = fmt.Sprint(q.PageSize)
	}
	return p
}

// UsageReport 是查询结果。Total 在服务端不分页时等于 len(Records)。
type UsageReport struct {
	Total   int64
	Records []UsageRecord
}

// Sum 汇总所有记录的用量，空值按 0 计。
func (r *UsageReport) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, rec := range r.Records {
		if rec.UsageQuantity.Valid {
			sum = sum.Add(rec.UsageQuantity.Decimal)
		}
	}
	return sum
}

func (c *Client) DailyUsage(ctx context.Context, q UsageQuery) (*UsageReport, error) {
	return c.usage(ctx, "/usage/daily/", q)
}

func (c *Client) MonthlyUsage(ctx context.Context, q UsageQuery) (*UsageReport, error) {
	return c.usage(ctx, "/usage/quantity/monthly/", q)
}

func (c *Client) PeriodUsage(ctx context.Context, q UsageQuery) (*UsageReport, error) {
	return c.usage(ctx, "/usage/quantity/specifictimeperiod/", q)
}

func (c *Client) usage(ctx context.Context, path string, q UsageQuery) (*UsageReport, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, q.params(), nil, &raw); err != nil {
		return nil, err
	}
	return decodeUsage(raw)
}

// decodeUsage 兼容三种返回：记录数组、{"count","results"} 分页对象、{"total","list"} 对象。
func decodeUsage(raw json.RawMessage) (*UsageReport, error) {
	var records []UsageRecord
	if err := json.Unmarshal(raw, &records); err == nil {
		return &UsageReport{Total: int64(len(records)), Records: records}, nil
	}

	var page struct {
		Count   *int64        `json:"count"`
		Results []UsageRecord `json:"results"`
		Total   *int64        `json:"total"`
		List    []UsageRecord `json:"list"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode usage report: %w", err)
	}
	report := &UsageReport{Records: page.Results}
	if report.Records == nil {
		report.Records = page.List
	}
	if report.Records == nil {
		report.Records = []UsageRecord{}
	}
	switch {
	case page.Count != nil:
		report.Total = *page.Count
	case page.Total != nil:
		report.Total = *page.Total
	default:
		report.Total = int64(len(report.Records))
	}
	return report, nil
}
