package types

import (
	"fmt"
	"time"
)

// PerformanceState 玩家近期表现分类
type PerformanceState int

const (
	// PerformanceNeutral 表现正常（零值，边界情况一律归入此类）
	PerformanceNeutral PerformanceState = iota
	// PerformanceStruggling 玩家吃力，需要降低难度
	PerformanceStruggling
	// PerformanceDominating 玩家碾压，需要提高难度
	PerformanceDominating
)

// String 返回状态名称，用于日志和调试面板
func (s PerformanceState) String() string {
	switch s {
	case PerformanceStruggling:
		return "struggling"
	case PerformanceDominating:
		return "dominating"
	default:
		return "neutral"
	}
}

// DDAModifiers 动态难度调整的全局倍率
// 仅由 DDAController 修改，其他组件只读
type DDAModifiers struct {
	SpawnDelayMultiplier float64 // 出怪间隔倍率（>1 表示出怪更慢）
	BudgetMultiplier     float64 // 威胁预算倍率
	DropRateMultiplier   float64 // 掉落率倍率
}

// IdentityModifiers 返回中性倍率 {1,1,1}
func IdentityModifiers() DDAModifiers {
	return DDAModifiers{
		SpawnDelayMultiplier: 1,
		BudgetMultiplier:     1,
		DropRateMultiplier:   1,
	}
}

func (m DDAModifiers) String() string {
	return fmt.Sprintf("budget=%.3f spawnDelay=%.3f dropRate=%.3f",
		m.BudgetMultiplier, m.SpawnDelayMultiplier, m.DropRateMultiplier)
}

// AdjustmentRecord 一次倍率调整的审计记录
// 写入历史后不再修改
type AdjustmentRecord struct {
	Timestamp time.Time
	State     PerformanceState
	Action    string
	Before    DDAModifiers
	After     DDAModifiers
}
