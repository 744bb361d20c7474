package config

import (
	"fmt"
	"strings"
)

// 难度预设名称
const (
	PresetCasual = "casual"
	PresetNormal = "normal"
	PresetHard   = "hard"
)

// PresetNames 返回全部预设名称
func PresetNames() []string {
	return []string{PresetCasual, PresetNormal, PresetHard}
}

// ApplyPreset 在数据表副本上应用难度预设
// 原表不被修改；未知预设返回错误
func ApplyPreset(tables *BalanceTables, preset string) (*BalanceTables, error) {
	c := tables.Clone()

	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "", PresetNormal:
		return c, nil

	case PresetCasual:
		c.Waves.BaseBudget *= 0.85
		c.Waves.BudgetPerWave *= 0.85
		c.RoleCaps.Tank = max(c.RoleCaps.Tank-2, 0)
		c.RoleCaps.Special = max(c.RoleCaps.Special-1, 0)
		// 休闲模式强制开启辅助，并允许更大的减压幅度
		c.DDA.Disabled = false
		c.DDA.DropRateBounds.Max *= 1.25
		return c, nil

	case PresetHard:
		c.Waves.BaseBudget *= 1.25
		c.Waves.BudgetPerWave *= 1.25
		c.RoleCaps.Tank += 2
		c.RoleCaps.Special++
		c.DDA.BudgetBounds.Max += 0.25
		c.DDA.BudgetStep /= 2
		c.DDA.SpawnDelayStep /= 2
		c.DDA.DropRateStep /= 2
		return c, nil
	}

	return nil, fmt.Errorf("unknown difficulty preset %q (expected one of %s)",
		preset, strings.Join(PresetNames(), ", "))
}
