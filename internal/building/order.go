package building

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// normalize 去掉首尾空白、全角转半角，再去掉固定后缀。
// "１栋"、" 1栋 " 都会得到 "1"。
func normalize(raw, suffix string) string {
	s := width.Narrow.String(strings.TrimSpace(raw))
	if suffix != "" {
		s = strings.TrimSuffix(s, suffix)
	}
	return strings.TrimSpace(s)
}

// compareValues 按数值比较两个 value：
// 数字在前并按大小排序；非数字排在所有数字之后；其余情况按字符串比较。
func compareValues(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func sortNodes(nodes []*Node) {
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return compareValues(a.Value, b.Value)
	})
}
