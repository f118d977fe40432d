// Package building 负责把平铺的业主记录整理成 楼栋 → 单元 → 户号/楼层 三级级联数据。
package building

import (
	"errors"
	"fmt"
	"strings"
)

// Level 表示第三级节点的粒度。
// 房号（1602）和楼层（16）是两套不同的层级，不能混在一棵树里。
type Level string

const (
	LevelRoom  Level = "room"
	LevelFloor Level = "floor"
)

var ErrInvalidPolicy = errors.New("invalid building policy")

// Policy 描述去后缀和生成 label 的规则。
type Policy struct {
	BuildingSuffix string `mapstructure:"building_suffix"`
	UnitSuffix     string `mapstructure:"unit_suffix"`
	Level          Level  `mapstructure:"level"`
	// LeafSuffix 是第三级 label 的后缀，房号版本有 "室" 和 "号" 两种写法。
	LeafSuffix string `mapstructure:"leaf_suffix"`
}

// DefaultPolicy 返回房号粒度、"室" 后缀的默认规则。
func DefaultPolicy() Policy {
	return Policy{
		BuildingSuffix: "栋",
		UnitSuffix:     "单元",
		Level:          LevelRoom,
		LeafSuffix:     "室",
	}
}

// FloorPolicy 返回楼层粒度的规则，楼层字段形如 "16楼"。
func FloorPolicy() Policy {
	p := DefaultPolicy()
	p.Level = LevelFloor
	p.LeafSuffix = "楼"
	return p
}

// Validate 检查规则是否可用。LeafSuffix 允许为空（label 直接等于 value）。
func (p Policy) Validate() error {
	if strings.TrimSpace(p.BuildingSuffix) == "" {
		return fmt.Errorf("%w: building suffix is required", ErrInvalidPolicy)
	}
	if strings.TrimSpace(p.UnitSuffix) == "" {
		return fmt.Errorf("%w: unit suffix is required", ErrInvalidPolicy)
	}
	switch p.Level {
	case LevelRoom, LevelFloor:
	default:
		return fmt.Errorf("%w: unknown level %q", ErrInvalidPolicy, p.Level)
	}
	return nil
}

// leafStripSuffix 楼层字段在源数据里可能带 "楼"，房号字段没有后缀。
func (p Policy) leafStripSuffix() string {
	if p.Level == LevelFloor {
		return "楼"
	}
	return ""
}

// HeaderComment 生成产物文件头部的注释文字。
func (p Policy) HeaderComment() string {
	if p.Level == LevelFloor {
		return "楼栋-单元-楼层级联菜单数据"
	}
	return "楼栋-单元-房号级联菜单数据"
}
