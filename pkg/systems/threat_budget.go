package systems

import (
	"math"

	"github.com/decker502/horde/pkg/balance"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/types"
)

// ModifierProvider 提供当前难度倍率
// DDAController 实现此接口；禁用时返回 {1,1,1}
type ModifierProvider interface {
	GetModifiers() types.DDAModifiers
}

// ThreatBudgetAllocator 威胁预算分配器
// 负责计算每波可花费的威胁预算和角色上限，为波次编排提供约束
type ThreatBudgetAllocator struct {
	waves     config.WaveProgression
	roleCaps  config.RoleCaps
	analytics *balance.Analytics
	modifiers ModifierProvider
}

// NewThreatBudgetAllocator 创建威胁预算分配器
//
// 参数：
//   - tables: 静态数据表
//   - analytics: 平衡分析器（提供单位成本）
//   - modifiers: 难度倍率来源，可为 nil（倍率视为 1）
func NewThreatBudgetAllocator(tables *config.BalanceTables, analytics *balance.Analytics, modifiers ModifierProvider) *ThreatBudgetAllocator {
	return &ThreatBudgetAllocator{
		waves:     tables.Waves,
		roleCaps:  tables.RoleCaps,
		analytics: analytics,
		modifiers: modifiers,
	}
}

// BaseBudget 不含倍率的预算
// 公式: BaseBudget + (waveNumber - 1) * BudgetPerWave，波次小于1按1处理
func (a *ThreatBudgetAllocator) BaseBudget(waveNumber int) float64 {
	waveNumber = max(waveNumber, 1)
	return a.waves.BaseBudget + float64(waveNumber-1)*a.waves.BudgetPerWave
}

// GetBudget 返回指定波次的威胁预算（已乘以当前预算倍率）
// 结果永远不是负数或 NaN
func (a *ThreatBudgetAllocator) GetBudget(waveNumber int) float64 {
	multiplier := 1.0
	if a.modifiers != nil {
		multiplier = a.modifiers.GetModifiers().BudgetMultiplier
	}
	return a.BudgetWithMultiplier(waveNumber, multiplier)
}

// BudgetWithMultiplier 使用给定倍率计算预算
// 波次开始时先取一次倍率快照，再用快照计算，避免同一波内读到两个不同的值
func (a *ThreatBudgetAllocator) BudgetWithMultiplier(waveNumber int, multiplier float64) float64 {
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		multiplier = 1
	}
	multiplier = max(multiplier, 0)

	budget := a.BaseBudget(waveNumber) * multiplier
	if math.IsNaN(budget) || budget < 0 {
		return 0
	}
	return budget
}

// GetRoleCaps 返回各角色的数量上限
func (a *ThreatBudgetAllocator) GetRoleCaps() config.RoleCaps {
	return a.roleCaps
}

// RoleCap 返回单个角色的数量上限
func (a *ThreatBudgetAllocator) RoleCap(role types.EnemyRole) int {
	return a.roleCaps.Cap(role)
}

// UnitCost 单个敌人的威胁成本
func (a *ThreatBudgetAllocator) UnitCost(enemyType string) float64 {
	return a.analytics.Cost(enemyType)
}

// CompositionCost 计算一组生成计划的总花费
func (a *ThreatBudgetAllocator) CompositionCost(groups []types.SpawnGroup) float64 {
	total := 0.0
	for _, g := range groups {
		total += float64(g.Count) * a.UnitCost(g.EnemyType)
	}
	return total
}
