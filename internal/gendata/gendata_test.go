package gendata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"freeark_web/internal/building"
	"freeark_web/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownersJSON = `{
  "1-1-201": {"楼栋": "1栋", "单元": "1单元", "户号": "201"},
  "10-1-101": {"楼栋": "10栋", "单元": "1单元", "户号": "101"},
  "2-1-101": {"楼栋": "2栋", "单元": "1单元", "户号": "101"},
  "bad": {"楼栋": "", "单元": "1单元", "户号": "101"}
}`

func writeSource(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "all_owner.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func options(source string) Options {
	return Options{
		Source: source,
		Fields: building.DefaultFields(),
		Policy: building.DefaultPolicy(),
		Render: building.RenderOptions{Format: building.FormatJS},
		Output: "building_data.js",
	}
}

func TestRun_WritesJSModule(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	sink := storage.NewFileSink(out)

	res, err := Run(context.Background(), options(writeSource(t, dir, ownersJSON)), sink)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Buildings)
	assert.Equal(t, 1, res.Skipped)

	data, err := os.ReadFile(filepath.Join(out, "building_data.js"))
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "// 楼栋-单元-房号级联菜单数据\n"), text)
	assert.Contains(t, text, "export const buildingData = ")

	tree, err := building.Decode(data)
	require.NoError(t, err)
	require.NoError(t, building.Verify(tree))
	var order []string
	for _, n := range tree {
		order = append(order, n.Value)
	}
	assert.Equal(t, []string{"1", "2", "10"}, order)
}

func TestRun_SourceErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	sink := storage.NewFileSink(out)

	_, err := Run(context.Background(), options(filepath.Join(dir, "missing.json")), sink)
	require.Error(t, err)

	_, err = Run(context.Background(), options(writeSource(t, dir, "{not json")), sink)
	require.Error(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingSink struct{}

func (failingSink) Put(context.Context, string, []byte, string) error { return errors.New("disk full") }
func (failingSink) Location(key string) string { return key }

func TestRun_WriteErrorIsFatal(t *testing.T) {
	_, err := Run(context.Background(), options(writeSource(t, t.TempDir(), ownersJSON)), failingSink{})
	assert.ErrorContains(t, err, "disk full")
}

func TestRun_EmptySource(t *testing.T) {
	out := t.TempDir()
	opts := options(writeSource(t, t.TempDir(), "{}"))
	opts.Render = building.RenderOptions{Format: building.FormatJSON}
	opts.Output = "tree.json"

	res, err := Run(context.Background(), opts, storage.NewFileSink(out))
	require.NoError(t, err)
	assert.Empty(t, res.Tree)

	data, err := os.ReadFile(filepath.Join(out, "tree.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestWatch_RegeneratesOnChange(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	source := writeSource(t, dir, ownersJSON)

	opts := options(source)
	opts.Render = building.RenderOptions{Format: building.FormatJSON}
	opts.Output = "tree.json"

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, opts, storage.NewFileSink(out), 50*time.Millisecond, func(error) { runs.Add(1) })
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(source, []byte(`{"a":{"楼栋":"9栋","单元":"1单元","户号":"901"}}`), 0o644))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(out, "tree.json"))
		return err == nil && strings.Contains(string(data), `"9栋"`)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
