package building

import (
	"fmt"
	"strings"
)

// Verify 检查一棵树是否满足级联数据的约束：
// 固定三层、叶子没有 children、同级 value 唯一、同级按数值升序。
func Verify(tree []*Node) error {
	return verifyLevel(tree, nil, 1)
}

func verifyLevel(nodes []*Node, path []string, depth int) error {
	seen := make(map[string]struct{}, len(nodes))
	for i, n := range nodes {
		if n == nil {
			return fmt.Errorf("%s: nil node at index %d", where(path), i)
		}
		if n.Value == "" {
			return fmt.Errorf("%s: empty value at index %d", where(path), i)
		}
		if _, dup := seen[n.Value]; dup {
			return fmt.Errorf("%s: duplicate value %q", where(path), n.Value)
		}
		seen[n.Value] = struct{}{}
		if i > 0 && compareValues(nodes[i-1].Value, n.Value) > 0 {
			return fmt.Errorf("%s: %q sorted before %q", where(path), nodes[i-1].Value, n.Value)
		}

		child := append(append([]string{}, path...), n.Value)
		if depth == 3 {
			if len(n.Children) > 0 {
				return fmt.Errorf("%s: leaf has children", where(child))
			}
			continue
		}
		if len(n.Children) == 0 {
			return fmt.Errorf("%s: missing children at depth %d", where(child), depth)
		}
		if err := verifyLevel(n.Children, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func where(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	return strings.Join(path, "/")
}
