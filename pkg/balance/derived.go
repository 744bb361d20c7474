// Package balance 根据静态武器/敌人数据推导战斗指标
//
// 推导结果（DPS、击杀时间、穿越时间、威胁成本）按ID懒计算并缓存，
// 其他组件必须通过 Analytics 取值，不得自行重复实现公式。
package balance

import (
	"math"

	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/utils"
)

// DerivedWeaponStats 武器推导指标
// 时间单位为毫秒，DPS 为每秒伤害
type DerivedWeaponStats struct {
	DamagePerShot  float64
	RawDPS         float64
	TimeToEmpty    float64 // 打空弹匣所需时间（毫秒）
	CycleTime      float64 // 打空 + 换弹（毫秒）
	DamagePerCycle float64
	SustainedDPS   float64 // 计入换弹停顿的持续 DPS，所有击杀时间比较都用它
}

// DerivedEnemyStats 敌人推导指标
type DerivedEnemyStats struct {
	TTKByWeapon map[string]float64 // 武器ID -> 击杀时间（秒）
	TTC         map[string]float64 // 距离档位 -> 穿越时间（秒）
	ReceivedDPS float64            // 玩家承受的 DPS
	ThreatScore float64
	Cost        float64 // 相对基准敌人的成本，基准敌人恒为 1
}

// deriveWeaponStats 计算武器推导指标
// 射速或周期为 0 时对应的 DPS 为 0，不会出现除零
func deriveWeaponStats(w config.WeaponStats) DerivedWeaponStats {
	pellets := w.PelletCount
	if pellets <= 0 {
		pellets = 1
	}

	damagePerShot := w.Damage * float64(pellets)
	timeToEmpty := float64(w.MagazineSize) * w.FireRateMs
	cycleTime := timeToEmpty + w.ReloadTimeMs
	damagePerCycle := float64(w.MagazineSize) * damagePerShot

	return DerivedWeaponStats{
		DamagePerShot:  damagePerShot,
		RawDPS:         utils.SafeDiv(damagePerShot, w.FireRateMs/1000),
		TimeToEmpty:    timeToEmpty,
		CycleTime:      cycleTime,
		DamagePerCycle: damagePerCycle,
		SustainedDPS:   utils.SafeDiv(damagePerCycle, cycleTime/1000),
	}
}

// receivedDPS 敌人对玩家造成的 DPS
func receivedDPS(e config.EnemyStats) float64 {
	return utils.SafeDiv(e.AttackDamage, e.AttackCooldownMs/1000)
}

// timeToKill 以持续 DPS 打空生命值所需秒数
// DPS 为 0 的武器永远无法击杀，返回 +Inf
func timeToKill(health, sustainedDPS float64) float64 {
	if health <= 0 {
		return 0
	}
	if sustainedDPS <= 0 {
		return math.Inf(1)
	}
	return health / sustainedDPS
}

// timeToCross 以移动速度穿越 distance 所需秒数
// 速度或距离为 0 时返回 0
func timeToCross(distance, moveSpeed float64) float64 {
	if distance <= 0 || moveSpeed <= 0 {
		return 0
	}
	return distance / moveSpeed
}

// threatScore 威胁评分：移速与伤害线性加权，再加上能力附加分
// 权重为正，因此更快或更痛的敌人评分严格高于基准
func threatScore(e config.EnemyStats, w config.ThreatWeights) float64 {
	score := w.SpeedWeight*e.MoveSpeed + w.DamageWeight*receivedDPS(e)
	for _, ability := range e.Abilities {
		score += w.AbilitySurcharges[ability]
	}
	return score
}
