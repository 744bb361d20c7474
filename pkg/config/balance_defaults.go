package config

import "github.com/decker502/horde/pkg/types"

// DefaultRoleCaps 默认角色上限
// 杂兵上限与单波总数上限一致，实际上不受约束
func DefaultRoleCaps() RoleCaps {
	return RoleCaps{
		Fodder:  100,
		Rusher:  20,
		Tank:    6,
		Ranged:  10,
		Special: 3,
	}
}

// DefaultThreatWeights 默认威胁评分权重
func DefaultThreatWeights() ThreatWeights {
	return ThreatWeights{
		SpeedWeight:  0.5,
		DamageWeight: 2,
		AbilitySurcharges: map[string]float64{
			"armored":  60,
			"ranged":   30,
			"summoner": 70,
		},
	}
}

// DefaultDDAConfig 默认动态难度配置
func DefaultDDAConfig() DDAConfig {
	return DDAConfig{
		Thresholds: DDAThresholds{
			StrugglingAccuracy:             0.25,
			DominatingAccuracy:             0.6,
			StrugglingDamageTakenPerMinute: 60,
			DominatingDamageTakenPerMinute: 15,
			StrugglingKillsPerMinute:       8,
			DominatingKillsPerMinute:       30,
			StrugglingHealthPercent:        0.3,
			DominatingHealthPercent:        0.8,
			StrugglingNearDeathCount:       2,
			SlowWaveClearSeconds:           90,
			FastWaveClearSeconds:           30,
			MinSignals:                     2,
		},
		BudgetStep:       0.1,
		SpawnDelayStep:   0.1,
		DropRateStep:     0.15,
		BudgetBounds:     Bounds{Min: 0.5, Max: 1.5},
		SpawnDelayBounds: Bounds{Min: 0.75, Max: 1.5},
		DropRateBounds:   Bounds{Min: 0.75, Max: 2.0},
		HistorySize:      50,
	}
}

// DefaultWaveProgression 默认波次成长常量
// 第1波 8 个敌人，每波 +2，上限 100
func DefaultWaveProgression() WaveProgression {
	return WaveProgression{
		BaseCount:             8,
		PerWaveIncrement:      2,
		MaxCount:              100,
		InitialIngressPoints:  1,
		WavesPerIngressUnlock: 5,
		MaxIngressPoints:      4,
		BaseBudget:            16,
		BudgetPerWave:         5,
	}
}

// DefaultBalanceTables 返回内置的默认数据表
// 与 data/balance.yaml 保持一致，用于测试和内置数据不可用时的兜底
func DefaultBalanceTables() *BalanceTables {
	return &BalanceTables{
		BaselineEnemy: "walker",
		Weapons: map[string]WeaponStats{
			"pistol":  {Damage: 25, FireRateMs: 400, MagazineSize: 12, ReloadTimeMs: 1500, PelletCount: 1},
			"shotgun": {Damage: 12, FireRateMs: 900, MagazineSize: 6, ReloadTimeMs: 2500, PelletCount: 8},
			"rifle":   {Damage: 30, FireRateMs: 120, MagazineSize: 30, ReloadTimeMs: 2200, PelletCount: 1},
			"sniper":  {Damage: 150, FireRateMs: 1200, MagazineSize: 5, ReloadTimeMs: 3000, PelletCount: 1},
		},
		Enemies: map[string]EnemyStats{
			"walker":   {Health: 100, MoveSpeed: 40, AttackDamage: 10, AttackCooldownMs: 1000, Role: types.RoleFodder},
			"runner":   {Health: 60, MoveSpeed: 110, AttackDamage: 8, AttackCooldownMs: 800, Role: types.RoleRusher},
			"spitter":  {Health: 80, MoveSpeed: 35, AttackDamage: 12, AttackCooldownMs: 2000, Role: types.RoleRanged, Abilities: []string{"ranged"}},
			"brute":    {Health: 600, MoveSpeed: 25, AttackDamage: 30, AttackCooldownMs: 1500, Role: types.RoleTank, Abilities: []string{"armored"}},
			"summoner": {Health: 150, MoveSpeed: 30, AttackDamage: 5, AttackCooldownMs: 1000, Role: types.RoleSpecial, Abilities: []string{"summoner"}},
		},
		DistanceClasses: map[string]float64{
			"near": 120,
			"mid":  300,
			"far":  600,
		},
		Roster: []RosterEntry{
			{EnemyType: "walker", UnlockWave: 1, Weight: 0.55},
			{EnemyType: "runner", UnlockWave: 3, Weight: 0.2},
			{EnemyType: "spitter", UnlockWave: 5, Weight: 0.1},
			{EnemyType: "brute", UnlockWave: 8, Weight: 0.1},
			{EnemyType: "summoner", UnlockWave: 12, Weight: 0.05},
		},
		Waves:    DefaultWaveProgression(),
		RoleCaps: DefaultRoleCaps(),
		Threat:   DefaultThreatWeights(),
		Validation: []ValidationRule{
			{Name: "walker-vs-pistol", Metric: MetricTTK, Enemy: "walker", Weapon: "pistol", Min: 1, Max: 4, Severity: SeverityError},
			{Name: "brute-vs-pistol", Metric: MetricTTK, Enemy: "brute", Weapon: "pistol", Min: 8, Max: 20, Severity: SeverityWarning},
			{Name: "brute-vs-sniper", Metric: MetricTTK, Enemy: "brute", Weapon: "sniper", Min: 4, Max: 12, Severity: SeverityWarning},
			{Name: "summoner-vs-rifle", Metric: MetricTTK, Enemy: "summoner", Weapon: "rifle", Min: 0.5, Max: 3, Severity: SeverityWarning},
			{Name: "runner-cross-mid", Metric: MetricTTC, Enemy: "runner", DistanceClass: "mid", Min: 2, Max: 5, Severity: SeverityError},
			{Name: "walker-cross-mid", Metric: MetricTTC, Enemy: "walker", DistanceClass: "mid", Min: 5, Max: 12, Severity: SeverityWarning},
		},
		DDA: DefaultDDAConfig(),
	}
}
