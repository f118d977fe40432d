package building

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrUnsupportedSource = errors.New("unsupported source format")

// Fields 是源数据中各字段的名称。
type Fields struct {
	Building   string `mapstructure:"building"`
	Unit       string `mapstructure:"unit"`
	Floor      string `mapstructure:"floor"`
	Room       string `mapstructure:"room"`
	Location   string `mapstructure:"location"`
	BindStatus string `mapstructure:"bind_status"`
	IPAddress  string `mapstructure:"ip_address"`
	ScreenMAC  string `mapstructure:"screen_mac"`
}

// DefaultFields 对应业主导出表的中文表头。
func DefaultFields() Fields {
	return Fields{
		Building:   "楼栋",
		Unit:       "单元",
		Floor:      "楼层",
		Room:       "户号",
		Location:   "专有部分坐落",
		BindStatus: "绑定状态",
		IPAddress:  "IP地址",
		ScreenMAC:  "唯一标识符",
	}
}

// withDefaults 未配置的字段名回落到默认值。
func (f Fields) withDefaults() Fields {
	d := DefaultFields()
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return Fields{
		Building:   pick(f.Building, d.Building),
		Unit:       pick(f.Unit, d.Unit),
		Floor:      pick(f.Floor, d.Floor),
		Room:       pick(f.Room, d.Room),
		Location:   pick(f.Location, d.Location),
		BindStatus: pick(f.BindStatus, d.BindStatus),
		IPAddress:  pick(f.IPAddress, d.IPAddress),
		ScreenMAC:  pick(f.ScreenMAC, d.ScreenMAC),
	}
}

// record 从一行字段取值构造 Record。
func (f Fields) record(key string, get func(name string) string) Record {
	return Record{
		Key:        key,
		Building:   get(f.Building),
		Unit:       get(f.Unit),
		Floor:      get(f.Floor),
		Room:       get(f.Room),
		Location:   get(f.Location),
		BindStatus: get(f.BindStatus),
		IPAddress:  get(f.IPAddress),
		ScreenMAC:  get(f.ScreenMAC),
	}
}

// DecodeExport 解析 JSON 导出文件。
// 顶层可以是对象（键被忽略，按文档顺序取值）或数组。
// 不是 JSON 对象的值会变成空记录，由 Builder 跳过计数；JSON 本身不合法则直接返回错误。
func DecodeExport(r io.Reader, fields Fields) ([]Record, error) {
	fields = fields.withDefaults()

	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil, fmt.Errorf("read export: top level must be an object or array, got %v", tok)
	}

	records := make([]Record, 0)
	for dec.More() {
		key := ""
		if delim == '{' {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read export key: %w", err)
			}
			key, _ = keyTok.(string)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read export value %q: %w", key, err)
		}
		records = append(records, decodeRecord(key, raw, fields))
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return records, nil
}

func decodeRecord(key string, raw json.RawMessage, fields Fields) Record {
	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return Record{Key: key}
	}
	return fields.record(key, func(name string) string {
		return stringify(obj[name])
	})
}

// stringify 把 JSON 值转成字符串，整数形式的浮点数（201.0）输出为 "201"。
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := t.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatInt(int64(f), 10)
		}
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// LoadFile 按扩展名读取 .json 或 .xlsx 源文件。sheet 只对 Excel 生效，为空时读取全部工作表。
func LoadFile(path string, fields Fields, sheet string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeExport(f, fields)
	case ".xlsx":
		return ReadExcel(f, sheet, fields)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, filepath.Ext(path))
	}
}
