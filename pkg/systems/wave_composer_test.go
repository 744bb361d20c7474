package systems

import (
	"math"
	"testing"

	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/types"
	"github.com/decker502/horde/pkg/utils"
)

func newTestComposer(tables *config.BalanceTables, modifiers ModifierProvider) *WaveComposer {
	composer := NewWaveComposer(tables, newTestAllocator(tables, modifiers))
	composer.SetLogger(utils.DiscardLogger())
	return composer
}

// maxUnitCost 名单中单位成本的最大值
func maxUnitCost(c *WaveComposer) float64 {
	highest := 0.0
	for _, entry := range c.tables.Roster {
		highest = max(highest, c.allocator.UnitCost(entry.EnemyType))
	}
	return highest
}

// twoTypeTables 两种同角色敌人、权重 70/30、每波 100 个
func twoTypeTables() *config.BalanceTables {
	tables := config.DefaultBalanceTables()
	tables.BaselineEnemy = "a"
	tables.Enemies = map[string]config.EnemyStats{
		"a": {Health: 100, MoveSpeed: 40, AttackDamage: 10, AttackCooldownMs: 1000, Role: types.RoleFodder},
		"b": {Health: 100, MoveSpeed: 40, AttackDamage: 10, AttackCooldownMs: 1000, Role: types.RoleFodder},
	}
	tables.Roster = []config.RosterEntry{
		{EnemyType: "a", UnlockWave: 1, Weight: 0.7},
		{EnemyType: "b", UnlockWave: 1, Weight: 0.3},
	}
	tables.Waves.BaseCount = 100
	tables.Waves.MaxCount = 100
	tables.Waves.BaseBudget = 1000
	tables.Validation = nil
	return tables
}

func TestTotalCountScenario(t *testing.T) {
	composer := newTestComposer(config.DefaultBalanceTables(), nil)

	tests := []struct {
		name     string
		wave     int
		expected int
	}{
		{"第1波为基础数量", 1, 8},
		{"第2波增加每波增量", 2, 10},
		{"第20波", 20, 46},
		{"第47波恰好到达上限", 47, 100},
		{"第100波封顶", 100, 100},
		{"极大波次仍然封顶", math.MaxInt / 2, 100},
		{"最大整数波次不溢出", math.MaxInt, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := composer.TotalCount(tt.wave); got != tt.expected {
				t.Errorf("TotalCount(%d): expected %d, got %d", tt.wave, tt.expected, got)
			}
			cfg := composer.GenerateWaveConfig(tt.wave)
			if cfg.TotalCount != tt.expected {
				t.Errorf("WaveConfig.TotalCount(%d): expected %d, got %d", tt.wave, tt.expected, cfg.TotalCount)
			}
			if cfg.SpawnGroupTotal() != tt.expected {
				t.Errorf("spawn group sum(%d): expected %d, got %d", tt.wave, tt.expected, cfg.SpawnGroupTotal())
			}
		})
	}
}

func TestTotalCountMonotonic(t *testing.T) {
	tables := config.DefaultBalanceTables()
	composer := newTestComposer(tables, nil)

	for wave := 1; wave < 200; wave++ {
		cur, next := composer.TotalCount(wave), composer.TotalCount(wave+1)
		if next < cur {
			t.Fatalf("TotalCount decreased: wave %d=%d, wave %d=%d", wave, cur, wave+1, next)
		}
		if next > tables.Waves.MaxCount {
			t.Fatalf("TotalCount(%d)=%d exceeds max %d", wave+1, next, tables.Waves.MaxCount)
		}
		if next < tables.Waves.MaxCount && next-cur != tables.Waves.PerWaveIncrement {
			t.Fatalf("TotalCount increment at wave %d: expected %d, got %d",
				wave+1, tables.Waves.PerWaveIncrement, next-cur)
		}
	}
}

func TestActiveIngressPoints(t *testing.T) {
	tables := config.DefaultBalanceTables()
	composer := newTestComposer(tables, nil)

	tests := []struct {
		name     string
		wave     int
		expected int
	}{
		{"第1波", 1, 1},
		{"第5波仍为初始值", 5, 1},
		{"第6波解锁第2个入口", 6, 2},
		{"第11波", 11, 3},
		{"第16波到达上限", 16, 4},
		{"第100波封顶", 100, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := composer.ActiveIngressPoints(tt.wave); got != tt.expected {
				t.Errorf("ActiveIngressPoints(%d): expected %d, got %d", tt.wave, tt.expected, got)
			}
		})
	}

	// 每 wavesPerIngressUnlock 波恰好加 1，且不减少
	for wave := 1; wave < 100; wave++ {
		cur, next := composer.ActiveIngressPoints(wave), composer.ActiveIngressPoints(wave+1)
		diff := next - cur
		switch {
		case diff < 0:
			t.Fatalf("ingress decreased at wave %d", wave+1)
		case diff > 1:
			t.Fatalf("ingress jumped by %d at wave %d", diff, wave+1)
		case diff == 1 && (wave%tables.Waves.WavesPerIngressUnlock) != 0:
			t.Fatalf("ingress unlocked off-schedule at wave %d", wave+1)
		case diff == 0 && cur < tables.Waves.MaxIngressPoints && wave%tables.Waves.WavesPerIngressUnlock == 0:
			t.Fatalf("ingress should unlock at wave %d", wave+1)
		}
	}
}

func TestAvailableTypesMonotonic(t *testing.T) {
	composer := newTestComposer(config.DefaultBalanceTables(), nil)

	for wave := 1; wave < 30; wave++ {
		cur := make(map[string]bool)
		for _, entry := range composer.AvailableTypes(wave) {
			cur[entry.EnemyType] = true
		}
		next := make(map[string]bool)
		for _, entry := range composer.AvailableTypes(wave + 1) {
			next[entry.EnemyType] = true
		}
		for enemyType := range cur {
			if !next[enemyType] {
				t.Fatalf("%s available at wave %d but not at wave %d", enemyType, wave, wave+1)
			}
		}
	}

	if got := len(composer.AvailableTypes(1)); got != 1 {
		t.Errorf("wave 1 should only offer walker, got %d types", got)
	}
	if got := len(composer.AvailableTypes(12)); got != 5 {
		t.Errorf("wave 12 should offer all 5 types, got %d", got)
	}
}

func TestAvailableTypesSkipsZeroWeight(t *testing.T) {
	tables := config.DefaultBalanceTables()
	tables.Roster[1].Weight = 0 // runner
	composer := newTestComposer(tables, nil)

	for _, entry := range composer.AvailableTypes(20) {
		if entry.EnemyType == "runner" {
			t.Fatal("zero-weight roster entry should not be available")
		}
	}
}

func TestWeightedDistribution(t *testing.T) {
	composer := newTestComposer(twoTypeTables(), nil)
	cfg := composer.GenerateWaveConfig(1)

	if cfg.TotalCount != 100 {
		t.Fatalf("expected total 100, got %d", cfg.TotalCount)
	}
	expected := map[string]int{"a": 70, "b": 30}
	for enemyType, want := range expected {
		got := cfg.Composition.CountsByType[enemyType]
		if got < want-1 || got > want+1 {
			t.Errorf("%s: expected about %d, got %d", enemyType, want, got)
		}
	}
	if cfg.Composition.BudgetExceeded || cfg.Composition.CapsExceeded {
		t.Errorf("unexpected infeasibility flags: %+v", cfg.Composition)
	}
}

func TestSplitProportionally(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		weights  []float64
		expected []int
	}{
		{"整除", 10, []float64{0.5, 0.5}, []int{5, 5}},
		{"正余数计入第一组", 10, []float64{1, 1, 1}, []int{4, 3, 3}},
		{"负余数计入第一组", 1, []float64{0.5, 0.5}, []int{0, 1}},
		{"第一组不够扣时从后续组扣除", 2, []float64{0.1, 0.3, 0.3, 0.3}, []int{0, 0, 1, 1}},
		{"权重和为0时全部给第一组", 5, []float64{0, 0}, []int{5, 0}},
		{"空权重", 5, nil, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitProportionally(tt.total, tt.weights)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Fatalf("expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

func TestDefaultWave20Composition(t *testing.T) {
	composer := newTestComposer(config.DefaultBalanceTables(), nil)
	cfg := composer.GenerateWaveConfig(20)

	expected := map[string]int{"walker": 25, "runner": 9, "spitter": 5, "brute": 5, "summoner": 2}
	for enemyType, want := range expected {
		if got := cfg.Composition.CountsByType[enemyType]; got != want {
			t.Errorf("%s: expected %d, got %d", enemyType, want, got)
		}
	}
	if math.Abs(cfg.Composition.SpentBudget-68.125) > 1e-9 {
		t.Errorf("SpentBudget: expected 68.125, got %v", cfg.Composition.SpentBudget)
	}
	if cfg.Composition.TotalBudget != 111 {
		t.Errorf("TotalBudget: expected 111, got %v", cfg.Composition.TotalBudget)
	}
	if cfg.ActiveIngressPoints != 4 {
		t.Errorf("ActiveIngressPoints: expected 4, got %d", cfg.ActiveIngressPoints)
	}

	// 生成组保持名单顺序
	order := []string{"walker", "runner", "spitter", "brute", "summoner"}
	if len(cfg.SpawnGroups) != len(order) {
		t.Fatalf("expected %d groups, got %d", len(order), len(cfg.SpawnGroups))
	}
	for i, g := range cfg.SpawnGroups {
		if g.EnemyType != order[i] {
			t.Errorf("group %d: expected %s, got %s", i, order[i], g.EnemyType)
		}
	}
}

func TestRoleCapsReassignExcess(t *testing.T) {
	composer := newTestComposer(config.DefaultBalanceTables(), nil)
	cfg := composer.GenerateWaveConfig(100)

	expected := map[string]int{"walker": 61, "runner": 20, "spitter": 10, "brute": 6, "summoner": 3}
	for enemyType, want := range expected {
		if got := cfg.Composition.CountsByType[enemyType]; got != want {
			t.Errorf("%s: expected %d, got %d", enemyType, want, got)
		}
	}
	if cfg.Composition.CountsByRole[types.RoleTank] != 6 {
		t.Errorf("tank count: expected 6, got %d", cfg.Composition.CountsByRole[types.RoleTank])
	}
	if cfg.Composition.CapsExceeded {
		t.Error("caps should be satisfiable at wave 100")
	}
	if cfg.SpawnGroupTotal() != 100 {
		t.Errorf("expected 100 enemies, got %d", cfg.SpawnGroupTotal())
	}
}

func TestRoleCapsInfeasible(t *testing.T) {
	tables := config.DefaultBalanceTables()
	tables.RoleCaps.Fodder = 5
	composer := newTestComposer(tables, nil)

	cfg := composer.GenerateWaveConfig(1) // 只有 walker，8 个
	if !cfg.Composition.CapsExceeded {
		t.Error("expected CapsExceeded when no role has room")
	}
	if cfg.TotalCount != 8 || cfg.SpawnGroupTotal() != 8 {
		t.Errorf("total must stay exact, got %d/%d", cfg.TotalCount, cfg.SpawnGroupTotal())
	}
}

func TestBudgetRepairDowngrades(t *testing.T) {
	composer := newTestComposer(config.DefaultBalanceTables(), budgetModifiers(0.5))
	cfg := composer.GenerateWaveConfig(20)

	if cfg.Composition.TotalBudget != 55.5 {
		t.Fatalf("TotalBudget: expected 55.5, got %v", cfg.Composition.TotalBudget)
	}
	if cfg.Composition.SpentBudget > cfg.Composition.TotalBudget+1e-9 {
		t.Errorf("spent %v exceeds budget %v", cfg.Composition.SpentBudget, cfg.Composition.TotalBudget)
	}
	if cfg.Composition.BudgetExceeded {
		t.Error("budget should be reachable by downgrading to walkers")
	}
	if cfg.SpawnGroupTotal() != 46 {
		t.Errorf("expected 46 enemies, got %d", cfg.SpawnGroupTotal())
	}
	if cfg.Composition.CountsByType["brute"] != 0 {
		t.Errorf("brutes should be downgraded first, got %d", cfg.Composition.CountsByType["brute"])
	}
}

func TestBudgetInfeasible(t *testing.T) {
	composer := newTestComposer(config.DefaultBalanceTables(), budgetModifiers(0))
	cfg := composer.GenerateWaveConfig(10)

	if !cfg.Composition.BudgetExceeded {
		t.Error("expected BudgetExceeded with zero budget")
	}
	if cfg.SpawnGroupTotal() != composer.TotalCount(10) {
		t.Errorf("total must stay exact, got %d", cfg.SpawnGroupTotal())
	}
}

func TestCompositionInvariantsAcrossWaves(t *testing.T) {
	for _, multiplier := range []float64{0.5, 1, 1.5} {
		tables := config.DefaultBalanceTables()
		composer := newTestComposer(tables, budgetModifiers(multiplier))
		tolerance := maxUnitCost(composer)

		for wave := 1; wave <= 150; wave++ {
			cfg := composer.GenerateWaveConfig(wave)

			if cfg.SpawnGroupTotal() != composer.TotalCount(wave) {
				t.Fatalf("x%.1f wave %d: sum %d != total %d",
					multiplier, wave, cfg.SpawnGroupTotal(), composer.TotalCount(wave))
			}
			if cfg.Composition.SpentBudget > cfg.Composition.TotalBudget+tolerance {
				t.Fatalf("x%.1f wave %d: spent %v exceeds budget %v by more than one unit",
					multiplier, wave, cfg.Composition.SpentBudget, cfg.Composition.TotalBudget)
			}
			for _, role := range types.AllRoles() {
				if got := cfg.Composition.CountsByRole[role]; got > tables.RoleCaps.Cap(role) {
					t.Fatalf("x%.1f wave %d: role %s count %d exceeds cap", multiplier, wave, role, got)
				}
			}
			for _, g := range cfg.SpawnGroups {
				if g.Count <= 0 {
					t.Fatalf("x%.1f wave %d: empty spawn group %s", multiplier, wave, g.EnemyType)
				}
			}
		}
	}
}

func TestGenerateWaveConfigWithModifiers(t *testing.T) {
	// 分配器自身倍率为 1，显式快照优先
	composer := newTestComposer(config.DefaultBalanceTables(), nil)
	mods := types.IdentityModifiers()
	mods.BudgetMultiplier = 0.5

	cfg := composer.GenerateWaveConfigWithModifiers(20, mods)
	if cfg.Composition.TotalBudget != 55.5 {
		t.Errorf("expected snapshot budget 55.5, got %v", cfg.Composition.TotalBudget)
	}
}

func TestEmptyRosterReturnsEmptyPlan(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.BalanceTables)
		wave   int
	}{
		{"名单为空", func(bt *config.BalanceTables) { bt.Roster = nil }, 5},
		{"所有类型尚未解锁", func(*config.BalanceTables) {}, 0},
		{"所有权重为0", func(bt *config.BalanceTables) {
			for i := range bt.Roster {
				bt.Roster[i].Weight = 0
			}
		}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := config.DefaultBalanceTables()
			tt.mutate(tables)
			composer := newTestComposer(tables, nil)

			cfg := composer.GenerateWaveConfig(tt.wave)
			if cfg == nil {
				t.Fatal("GenerateWaveConfig returned nil")
			}
			if !cfg.IsEmpty() || cfg.TotalCount != 0 || len(cfg.SpawnGroups) != 0 {
				t.Errorf("expected empty plan, got %+v", cfg)
			}
			if cfg.WaveNumber != tt.wave {
				t.Errorf("WaveNumber: expected %d, got %d", tt.wave, cfg.WaveNumber)
			}
		})
	}
}
