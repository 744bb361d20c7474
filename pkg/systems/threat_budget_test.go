package systems

import (
	"math"
	"testing"

	"github.com/decker502/horde/pkg/balance"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/types"
	"github.com/decker502/horde/pkg/utils"
)

// fixedModifiers 返回固定倍率的 ModifierProvider
type fixedModifiers types.DDAModifiers

func (m fixedModifiers) GetModifiers() types.DDAModifiers {
	return types.DDAModifiers(m)
}

func budgetModifiers(budget float64) fixedModifiers {
	mods := types.IdentityModifiers()
	mods.BudgetMultiplier = budget
	return fixedModifiers(mods)
}

func newTestAllocator(tables *config.BalanceTables, modifiers ModifierProvider) *ThreatBudgetAllocator {
	analytics := balance.NewAnalytics(tables, balance.NewCache())
	analytics.SetLogger(utils.DiscardLogger())
	return NewThreatBudgetAllocator(tables, analytics, modifiers)
}

func TestBaseBudget(t *testing.T) {
	allocator := newTestAllocator(config.DefaultBalanceTables(), nil)

	tests := []struct {
		name     string
		wave     int
		expected float64
	}{
		{"第1波", 1, 16},
		{"第2波", 2, 21},
		{"第20波", 20, 111},
		{"第100波", 100, 511},
		{"第0波按第1波处理", 0, 16},
		{"负数波次按第1波处理", -5, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := allocator.BaseBudget(tt.wave); got != tt.expected {
				t.Errorf("BaseBudget(%d): expected %v, got %v", tt.wave, tt.expected, got)
			}
		})
	}
}

func TestGetBudgetAppliesMultiplier(t *testing.T) {
	tables := config.DefaultBalanceTables()

	tests := []struct {
		name      string
		modifiers ModifierProvider
		expected  float64
	}{
		{"无倍率来源", nil, 111},
		{"中性倍率", fixedModifiers(types.IdentityModifiers()), 111},
		{"降低预算", budgetModifiers(0.5), 55.5},
		{"提高预算", budgetModifiers(1.5), 166.5},
		{"负倍率视为0", budgetModifiers(-1), 0},
		{"NaN倍率视为1", budgetModifiers(math.NaN()), 111},
		{"无穷倍率视为1", budgetModifiers(math.Inf(1)), 111},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocator := newTestAllocator(tables, tt.modifiers)
			got := allocator.GetBudget(20)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("GetBudget(20): expected %v, got %v", tt.expected, got)
			}
			if math.IsNaN(got) || got < 0 {
				t.Errorf("GetBudget(20) must be non-negative, got %v", got)
			}
		})
	}
}

func TestRoleCaps(t *testing.T) {
	allocator := newTestAllocator(config.DefaultBalanceTables(), nil)

	expected := map[types.EnemyRole]int{
		types.RoleFodder:  100,
		types.RoleRusher:  20,
		types.RoleTank:    6,
		types.RoleRanged:  10,
		types.RoleSpecial: 3,
	}
	for role, want := range expected {
		if got := allocator.RoleCap(role); got != want {
			t.Errorf("RoleCap(%s): expected %d, got %d", role, want, got)
		}
	}
	if got := allocator.RoleCap(types.EnemyRole("boss")); got != 0 {
		t.Errorf("unknown role cap: expected 0, got %d", got)
	}
	if allocator.GetRoleCaps() != config.DefaultRoleCaps() {
		t.Errorf("GetRoleCaps mismatch: %+v", allocator.GetRoleCaps())
	}
}

func TestCompositionCost(t *testing.T) {
	allocator := newTestAllocator(config.DefaultBalanceTables(), nil)

	groups := []types.SpawnGroup{
		{EnemyType: "walker", Count: 10},
		{EnemyType: "brute", Count: 2},
		{EnemyType: "ghost", Count: 3}, // 未知类型成本为 0
	}
	expected := 10*1.0 + 2*112.5/40
	if got := allocator.CompositionCost(groups); math.Abs(got-expected) > 1e-9 {
		t.Errorf("CompositionCost: expected %v, got %v", expected, got)
	}
	if got := allocator.CompositionCost(nil); got != 0 {
		t.Errorf("CompositionCost(nil): expected 0, got %v", got)
	}
}
