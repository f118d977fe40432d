package building

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree(t *testing.T) []*Node {
	t.Helper()
	return newTestBuilder(t, DefaultPolicy()).Build([]Record{
		rec("1栋", "1单元", "201"),
		rec("1栋", "1单元", "202"),
		rec("1栋", "2单元", "201"),
		rec("12栋", "3单元", "1602"),
	}).Tree
}

func TestEncode_JSONRoundTrip(t *testing.T) {
	tree := sampleTree(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tree, RenderOptions{Format: FormatJSON}))
	assert.True(t, strings.HasPrefix(buf.String(), "[\n"))
	assert.Contains(t, buf.String(), `"label": "1栋"`)
	assert.NotContains(t, buf.String(), `"children": null`)

	got, err := Decode(buf.Bytes())
	require.NoError(t, err)
	if diff := cmp.Diff(tree, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_JSModuleRoundTrip(t *testing.T) {
	tree := sampleTree(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tree, RenderOptions{
		Format: FormatJS,
		Header: DefaultPolicy().HeaderComment(),
	}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "// 楼栋-单元-房号级联菜单数据\nexport const buildingData = [\n"))
	assert.True(t, strings.HasSuffix(out, "];\n"))

	got, err := Decode(buf.Bytes())
	require.NoError(t, err)
	if diff := cmp.Diff(tree, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// 乱序后的产物解析出来，按 value 归一化后与原树成员一致。
func TestDecode_MembershipIgnoringOrder(t *testing.T) {
	artifact := `// 楼栋-单元-房号级联菜单数据
const buildingData = [
  {"value": "12", "label": "12栋", "children": [
    {"value": "3", "label": "3单元", "children": [{"value": "1602", "label": "1602室"}]}
  ]},
  {"value": "1", "label": "1栋", "children": [
    {"value": "2", "label": "2单元", "children": [{"value": "201", "label": "201室"}]},
    {"value": "1", "label": "1单元", "children": [
      {"value": "202", "label": "202室"},
      {"value": "201", "label": "201室"}
    ]}
  ]}
];`
	got, err := Decode([]byte(artifact))
	require.NoError(t, err)

	sortByValue := func(nodes []*Node) {
		var walk func([]*Node)
		walk = func(ns []*Node) {
			sort.Slice(ns, func(i, j int) bool { return ns[i].Value < ns[j].Value })
			for _, n := range ns {
				walk(n.Children)
			}
		}
		walk(nodes)
	}
	want := sampleTree(t)
	sortByValue(want)
	sortByValue(got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("membership mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_EmptyTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil, RenderOptions{Format: FormatJS, VarName: "floorData"}))
	assert.Equal(t, "export const floorData = [];\n", buf.String())

	got, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, sampleTree(t), RenderOptions{Format: "yaml"}))
}

func TestDecode_Invalid(t *testing.T) {
	for _, doc := range []string{"", "hello", "const x = {", "[1, 2"} {
		_, err := Decode([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidArtifact, "doc %q", doc)
	}
}

func TestVerify(t *testing.T) {
	require.NoError(t, Verify(sampleTree(t)))
	require.NoError(t, Verify([]*Node{}))

	leaf := func(v string) *Node { return &Node{Value: v, Label: v} }
	unit := func(v string, leaves ...*Node) *Node { return &Node{Value: v, Children: leaves} }
	bld := func(v string, units ...*Node) *Node { return &Node{Value: v, Children: units} }

	cases := map[string][]*Node{
		"duplicate building": {bld("1", unit("1", leaf("101"))), bld("1", unit("1", leaf("101")))},
		"unsorted units":     {bld("1", unit("10", leaf("101")), unit("2", leaf("101")))},
		"duplicate leaf":     {bld("1", unit("1", leaf("101"), leaf("101")))},
		"missing children":   {bld("1")},
		"leaf with children": {bld("1", unit("1", &Node{Value: "101", Children: []*Node{leaf("x")}}))},
		"empty value":        {bld("", unit("1", leaf("101")))},
	}
	for name, tree := range cases {
		assert.Error(t, Verify(tree), name)
	}
}
