package apiclient

import (
	"context"
	"net/http"
)

// TreeNode 是级联选择器的一个节点。
type TreeNode struct {
	Value    string      `json:"value"`
	Label    string      `json:"label"`
	Children []*TreeNode `json:"children,omitempty"`
}

type BuildingTree struct {
	Tree      []*TreeNode `json:"tree"`
	Records   int         `json:"records"`
	Skipped   int         `json:"skipped"`
	Buildings int         `json:"buildings"`
	Units     int         `json:"units"`
	Leaves    int         `json:"leaves"`
}

func (c *Client) BuildingTree(ctx context.Context) (*BuildingTree, error) {
	var res BuildingTree
	if err := c.do(ctx, http.MethodGet, "/buildings/tree", nil, nil, &res); err != nil {
		return nil, err
	}
	if res.Tree == nil {
		res.Tree = []*TreeNode{}
	}
	return &res, nil
}
