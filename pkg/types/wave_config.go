package types

// SpawnGroup 一组同类型敌人
type SpawnGroup struct {
	EnemyType string
	Count     int
}

// Composition 波次构成的预算明细
// 主要供调试面板和遥测界面展示
type Composition struct {
	CountsByType map[string]int
	CountsByRole map[EnemyRole]int
	TotalBudget  float64
	SpentBudget  float64

	// BudgetExceeded 为 true 表示在保持总数不变的前提下无法把花费压到预算以内
	BudgetExceeded bool
	// CapsExceeded 为 true 表示所有可用角色的上限之和不足以容纳总数
	CapsExceeded bool
}

// WaveConfig 单个波次的生成计划
// 由 WaveComposer 在波次开始时创建，之后只读
type WaveConfig struct {
	WaveNumber          int
	TotalCount          int
	ActiveIngressPoints int
	SpawnGroups         []SpawnGroup
	Composition         Composition
}

// IsEmpty 返回该计划是否不生成任何敌人
// 生成执行器必须把空计划当作"本波无敌人"处理
func (w *WaveConfig) IsEmpty() bool {
	return w == nil || len(w.SpawnGroups) == 0
}

// SpawnGroupTotal 返回所有生成组的数量之和
func (w *WaveConfig) SpawnGroupTotal() int {
	if w == nil {
		return 0
	}
	total := 0
	for _, g := range w.SpawnGroups {
		total += g.Count
	}
	return total
}
