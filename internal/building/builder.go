package building

// Record 是源数据中的一条业主记录。
// 构建只使用 Building/Unit/Room/Floor，其余字段供业主导入使用。
type Record struct {
	Key        string // 源文件中的键，例如 "1-1-201"，数组形式的源数据为空
	Building   string // "1栋"
	Unit       string // "1单元"
	Floor      string // "16" 或 "16楼"
	Room       string // "1602"
	Location   string
	BindStatus string
	IPAddress  string
	ScreenMAC  string
}

// Node 是级联选择器的节点，叶子节点不输出 children 字段。
type Node struct {
	Value    string  `json:"value"`
	Label    string  `json:"label"`
	Children []*Node `json:"children,omitempty"`
}

// Result 是一次构建的输出。
type Result struct {
	Tree      []*Node `json:"tree"`
	Records   int     `json:"records"`
	Skipped   int     `json:"skipped"`
	Buildings int     `json:"buildings"`
	Units     int     `json:"units"`
	Leaves    int     `json:"leaves"`
}

// Builder 按 Policy 把记录整理成三级树。Builder 本身不保存状态，可并发使用。
type Builder struct {
	policy Policy
}

// NewBuilder 校验规则后创建 Builder。
func NewBuilder(policy Policy) (*Builder, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Builder{policy: policy}, nil
}

func (b *Builder) Policy() Policy {
	return b.policy
}

// Build 分组、去重并按数值排序。
// 字段缺失的记录会被跳过并计入 Skipped；同一单元下重复的叶子只保留第一次出现的。
func (b *Builder) Build(records []Record) *Result {
	res := &Result{Tree: []*Node{}, Records: len(records)}

	buildings := make(map[string]*Node)
	for _, rec := range records {
		// 三个 key 都算出来之后才动树，坏记录不会留下半截节点
		bValue, uValue, leafValue, ok := b.keys(rec)
		if !ok {
			res.Skipped++
			continue
		}

		bNode, exists := buildings[bValue]
		if !exists {
			bNode = &Node{
				Value:    bValue,
				Label:    bValue + b.policy.BuildingSuffix,
				Children: []*Node{},
			}
			buildings[bValue] = bNode
			res.Tree = append(res.Tree, bNode)
		}

		uNode := findChild(bNode, uValue)
		if uNode == nil {
			uNode = &Node{
				Value:    uValue,
				Label:    uValue + b.policy.UnitSuffix,
				Children: []*Node{},
			}
			bNode.Children = append(bNode.Children, uNode)
		}

		if findChild(uNode, leafValue) == nil {
			uNode.Children = append(uNode.Children, &Node{
				Value: leafValue,
				Label: leafValue + b.policy.LeafSuffix,
			})
		}
	}

	sortNodes(res.Tree)
	for _, bNode := range res.Tree {
		sortNodes(bNode.Children)
		res.Units += len(bNode.Children)
		for _, uNode := range bNode.Children {
			sortNodes(uNode.Children)
			res.Leaves += len(uNode.Children)
		}
	}
	res.Buildings = len(res.Tree)
	return res
}

func (b *Builder) keys(rec Record) (bValue, uValue, leafValue string, ok bool) {
	bValue = normalize(rec.Building, b.policy.BuildingSuffix)
	uValue = normalize(rec.Unit, b.policy.UnitSuffix)
	if b.policy.Level == LevelFloor {
		leafValue = normalize(rec.Floor, b.policy.leafStripSuffix())
	} else {
		leafValue = normalize(rec.Room, b.policy.leafStripSuffix())
	}
	ok = bValue != "" && uValue != "" && leafValue != ""
	return bValue, uValue, leafValue, ok
}

func findChild(parent *Node, value string) *Node {
	for _, child := range parent.Children {
		if child.Value == value {
			return child
		}
	}
	return nil
}
