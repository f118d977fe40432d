package building

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Format 是产物的输出格式。
type Format string

const (
	FormatJSON Format = "json"
	FormatJS   Format = "js"
)

var ErrInvalidArtifact = errors.New("invalid building artifact")

// RenderOptions 控制 JS 模块的写法，JSON 格式只用到 Format。
type RenderOptions struct {
	Format  Format
	VarName string
	Header  string
}

func (o RenderOptions) varName() string {
	if o.VarName == "" {
		return "buildingData"
	}
	return o.VarName
}

// ContentType 返回上传对象存储时使用的 Content-Type。
func (o RenderOptions) ContentType() string {
	if o.Format == FormatJS {
		return "text/javascript; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Encode 把树写成 JSON 数组或 `export const buildingData = [...]` 形式的 JS 模块。
func Encode(w io.Writer, tree []*Node, opts RenderOptions) error {
	if tree == nil {
		tree = []*Node{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	body := bytes.TrimRight(buf.Bytes(), "\n")

	switch opts.Format {
	case FormatJSON, "":
		_, err := fmt.Fprintf(w, "%s\n", body)
		return err
	case FormatJS:
		if opts.Header != "" {
			if _, err := fmt.Fprintf(w, "// %s\n", opts.Header); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "export const %s = %s;\n", opts.varName(), body)
		return err
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
}

// Decode 读取 Encode 写出的任一格式，也兼容没有 export 的 `const x = [...]` 写法。
func Decode(data []byte) ([]*Node, error) {
	text := strings.TrimSpace(string(data))
	if !strings.HasPrefix(text, "[") {
		eq := strings.Index(text, "=")
		if eq < 0 {
			return nil, fmt.Errorf("%w: no declaration found", ErrInvalidArtifact)
		}
		text = strings.TrimSpace(text[eq+1:])
		text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
	}

	var tree []*Node
	if err := json.Unmarshal([]byte(text), &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if tree == nil {
		tree = []*Node{}
	}
	return tree, nil
}
