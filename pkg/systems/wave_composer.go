package systems

import (
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/types"
	"github.com/decker502/horde/pkg/utils"
)

// budgetEpsilon 浮点比较容差
const budgetEpsilon = 1e-9

// WaveComposer 波次编排器
//
// 职责：
//   - 根据波次号计算敌人总数和启用入口数
//   - 按名单权重分配各类型数量，保证总和精确等于总数
//   - 在角色上限和威胁预算约束下修正分配
//
// 编排顺序：权重比例分配 → 角色上限修正 → 预算修正。
// 任何修正都不改变总数。
type WaveComposer struct {
	tables    *config.BalanceTables
	allocator *ThreatBudgetAllocator
	logger    *log.Logger
}

// NewWaveComposer 创建波次编排器
func NewWaveComposer(tables *config.BalanceTables, allocator *ThreatBudgetAllocator) *WaveComposer {
	return &WaveComposer{
		tables:    tables,
		allocator: allocator,
		logger:    utils.ComponentLogger("WaveComposer"),
	}
}

// SetLogger 替换日志器
func (c *WaveComposer) SetLogger(l *log.Logger) {
	c.logger = l
}

// TotalCount 计算波次敌人总数
// 公式: min(BaseCount + (waveNumber - 1) * PerWaveIncrement, MaxCount)
func (c *WaveComposer) TotalCount(waveNumber int) int {
	w := c.tables.Waves
	steps := max(waveNumber, 1) - 1
	if w.PerWaveIncrement > 0 {
		// 达到上限后的波次总数不再变化，先截断步数再相乘避免溢出
		steps = utils.ClampInt(steps, 0, max(w.MaxCount-w.BaseCount, 0)/w.PerWaveIncrement+1)
	}
	return min(w.BaseCount+steps*w.PerWaveIncrement, w.MaxCount)
}

// ActiveIngressPoints 计算波次启用的入口数
// 公式: min(InitialIngressPoints + (waveNumber - 1) / WavesPerIngressUnlock, MaxIngressPoints)
func (c *WaveComposer) ActiveIngressPoints(waveNumber int) int {
	w := c.tables.Waves
	waveNumber = max(waveNumber, 1)
	if w.WavesPerIngressUnlock < 1 {
		return min(w.InitialIngressPoints, w.MaxIngressPoints)
	}
	return min(w.InitialIngressPoints+(waveNumber-1)/w.WavesPerIngressUnlock, w.MaxIngressPoints)
}

// AvailableTypes 返回本波已解锁且权重为正的名单项（保持名单顺序）
func (c *WaveComposer) AvailableTypes(waveNumber int) []config.RosterEntry {
	var available []config.RosterEntry
	for _, entry := range c.tables.Roster {
		if entry.UnlockWave <= waveNumber && entry.Weight > 0 {
			available = append(available, entry)
		}
	}
	return available
}

// GenerateWaveConfig 使用当前难度倍率生成波次配置
func (c *WaveComposer) GenerateWaveConfig(waveNumber int) *types.WaveConfig {
	return c.compose(waveNumber, c.allocator.GetBudget(waveNumber))
}

// GenerateWaveConfigWithModifiers 使用调用方提供的倍率快照生成波次配置
func (c *WaveComposer) GenerateWaveConfigWithModifiers(waveNumber int, mods types.DDAModifiers) *types.WaveConfig {
	return c.compose(waveNumber, c.allocator.BudgetWithMultiplier(waveNumber, mods.BudgetMultiplier))
}

// composeSlot 编排过程中单个敌人类型的状态
type composeSlot struct {
	enemyType string
	role      types.EnemyRole
	cost      float64
	count     int
	order     int // 名单顺序，用于同成本时稳定排序
}

func (c *WaveComposer) compose(waveNumber int, budget float64) *types.WaveConfig {
	cfg := &types.WaveConfig{
		WaveNumber:          waveNumber,
		ActiveIngressPoints: c.ActiveIngressPoints(waveNumber),
		Composition: types.Composition{
			CountsByType: map[string]int{},
			CountsByRole: map[types.EnemyRole]int{},
			TotalBudget:  budget,
		},
	}

	available := c.AvailableTypes(waveNumber)
	if len(available) == 0 {
		// 配置错误：本波没有可用敌人，返回空计划而不是崩溃
		c.logger.Warn("no enemy types available, returning empty plan", "wave", waveNumber)
		return cfg
	}

	total := c.TotalCount(waveNumber)
	if total <= 0 {
		return cfg
	}

	weights := make([]float64, len(available))
	for i, entry := range available {
		weights[i] = entry.Weight
	}
	counts := splitProportionally(total, weights)

	slots := make([]*composeSlot, len(available))
	for i, entry := range available {
		enemy, _ := c.tables.Enemy(entry.EnemyType)
		slots[i] = &composeSlot{
			enemyType: entry.EnemyType,
			role:      enemy.Role,
			cost:      c.allocator.UnitCost(entry.EnemyType),
			count:     counts[i],
			order:     i,
		}
	}

	roleCounts := countByRole(slots)
	cfg.Composition.CapsExceeded = c.enforceRoleCaps(slots, roleCounts)
	cfg.Composition.BudgetExceeded = c.enforceBudget(slots, roleCounts, budget)

	for _, s := range slots {
		cfg.Composition.CountsByType[s.enemyType] = s.count
		if s.count == 0 {
			continue
		}
		cfg.SpawnGroups = append(cfg.SpawnGroups, types.SpawnGroup{EnemyType: s.enemyType, Count: s.count})
		cfg.Composition.CountsByRole[s.role] += s.count
		cfg.TotalCount += s.count
	}
	spent := c.allocator.CompositionCost(cfg.SpawnGroups)
	cfg.Composition.SpentBudget = spent

	if cfg.Composition.CapsExceeded {
		c.logger.Warn("role caps cannot hold the wave total", "wave", waveNumber, "total", total)
	}
	if cfg.Composition.BudgetExceeded {
		c.logger.Warn("threat budget too small for wave total",
			"wave", waveNumber, "budget", budget, "spent", spent)
	}
	c.logger.Debug("wave composed",
		"wave", waveNumber, "total", cfg.TotalCount, "ingress", cfg.ActiveIngressPoints,
		"budget", budget, "spent", spent, "groups", len(cfg.SpawnGroups))

	return cfg
}

// splitProportionally 按权重比例把 total 分给各组
// 每组四舍五入，取整余数（正或负）计入第一组，保证总和精确等于 total。
// 第一组不够扣时，从后续组依次扣除。
func splitProportionally(total int, weights []float64) []int {
	counts := make([]int, len(weights))
	if len(weights) == 0 {
		return counts
	}

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		counts[0] = total
		return counts
	}

	assigned := 0
	for i, w := range weights {
		counts[i] = int(math.Round(float64(total) * w / sum))
		assigned += counts[i]
	}
	counts[0] += total - assigned

	if counts[0] < 0 {
		deficit := -counts[0]
		counts[0] = 0
		for i := 1; i < len(counts) && deficit > 0; i++ {
			take := min(deficit, counts[i])
			counts[i] -= take
			deficit -= take
		}
	}
	return counts
}

func countByRole(slots []*composeSlot) map[types.EnemyRole]int {
	roleCounts := make(map[types.EnemyRole]int)
	for _, s := range slots {
		roleCounts[s.role] += s.count
	}
	return roleCounts
}

// roomFor 角色剩余容量
func (c *WaveComposer) roomFor(role types.EnemyRole, roleCounts map[types.EnemyRole]int) int {
	return max(c.allocator.RoleCap(role)-roleCounts[role], 0)
}

// byCostAsc 成本升序，同成本按名单顺序
func byCostAsc(a, b *composeSlot) int {
	if a.cost != b.cost {
		if a.cost < b.cost {
			return -1
		}
		return 1
	}
	return a.order - b.order
}

// enforceRoleCaps 把超出角色上限的单位转移到成本最低且仍有余量的角色
// 返回 true 表示所有角色都已满，超额单位只能留在原处
func (c *WaveComposer) enforceRoleCaps(slots []*composeSlot, roleCounts map[types.EnemyRole]int) bool {
	cheapest := slices.Clone(slots)
	slices.SortStableFunc(cheapest, byCostAsc)

	exceeded := false
	for _, role := range types.AllRoles() {
		excess := roleCounts[role] - c.allocator.RoleCap(role)
		if excess <= 0 {
			continue
		}

		// 从该角色中最贵的类型开始移出
		for i := len(cheapest) - 1; i >= 0 && excess > 0; i-- {
			s := cheapest[i]
			if s.role != role {
				continue
			}
			take := min(excess, s.count)
			s.count -= take
			excess -= take
		}
		moved := roleCounts[role] - c.allocator.RoleCap(role)
		roleCounts[role] -= moved

		for _, s := range cheapest {
			if moved == 0 {
				break
			}
			if s.role == role {
				continue
			}
			add := min(moved, c.roomFor(s.role, roleCounts))
			s.count += add
			roleCounts[s.role] += add
			moved -= add
		}

		if moved > 0 {
			// 没有任何角色还有余量：放回最便宜的类型以保证总数
			exceeded = true
			cheapest[0].count += moved
			roleCounts[cheapest[0].role] += moved
		}
	}
	return exceeded
}

// enforceBudget 花费超出预算时，把最贵的单位降级为更便宜且角色有余量的类型
// 返回 true 表示在不改变总数的前提下无法降到预算以内
func (c *WaveComposer) enforceBudget(slots []*composeSlot, roleCounts map[types.EnemyRole]int, budget float64) bool {
	spent := 0.0
	for _, s := range slots {
		spent += float64(s.count) * s.cost
	}

	ordered := slices.Clone(slots)
	slices.SortStableFunc(ordered, byCostAsc)

	for spent > budget+budgetEpsilon {
		moved := false

		for hi := len(ordered) - 1; hi >= 0 && !moved; hi-- {
			from := ordered[hi]
			if from.count == 0 {
				continue
			}
			for lo := 0; lo < hi; lo++ {
				to := ordered[lo]
				if to.cost >= from.cost {
					break
				}
				room := from.count
				if to.role != from.role {
					room = min(room, c.roomFor(to.role, roleCounts))
				}
				if room == 0 {
					continue
				}

				need := int(math.Ceil((spent - budget) / (from.cost - to.cost)))
				n := min(max(need, 1), room)

				from.count -= n
				to.count += n
				roleCounts[from.role] -= n
				roleCounts[to.role] += n
				spent -= float64(n) * (from.cost - to.cost)
				moved = true
				break
			}
		}

		if !moved {
			return true
		}
	}
	return false
}
