package balance

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/utils"
)

// Cache 推导指标的记忆化缓存
// 由 Analytics 持有，显式传入以便测试互相隔离
type Cache struct {
	weapons map[string]*DerivedWeaponStats
	enemies map[string]*DerivedEnemyStats
}

// NewCache 创建空缓存
func NewCache() *Cache {
	return &Cache{
		weapons: make(map[string]*DerivedWeaponStats),
		enemies: make(map[string]*DerivedEnemyStats),
	}
}

// Clear 清空缓存，之后的查询会重新计算并返回新对象
func (c *Cache) Clear() {
	clear(c.weapons)
	clear(c.enemies)
}

// Len 返回已缓存的条目数（武器 + 敌人）
func (c *Cache) Len() int {
	return len(c.weapons) + len(c.enemies)
}

// Analytics 平衡分析器
// 所有推导指标的唯一入口，结果按ID缓存到进程结束或显式清空
type Analytics struct {
	tables *config.BalanceTables
	cache  *Cache
	logger *log.Logger
}

// NewAnalytics 创建平衡分析器
//
// 参数：
//   - tables: 静态数据表（只读）
//   - cache: 记忆化缓存，传 nil 时自动创建
func NewAnalytics(tables *config.BalanceTables, cache *Cache) *Analytics {
	if cache == nil {
		cache = NewCache()
	}
	return &Analytics{
		tables: tables,
		cache:  cache,
		logger: utils.ComponentLogger("BalanceAnalytics"),
	}
}

// SetLogger 替换日志器
func (a *Analytics) SetLogger(l *log.Logger) {
	a.logger = l
}

// Tables 返回当前使用的数据表
func (a *Analytics) Tables() *config.BalanceTables {
	return a.tables
}

// Cache 返回缓存实例
func (a *Analytics) Cache() *Cache {
	return a.cache
}

// ClearCache 清空缓存（测试或配置热重载时调用）
func (a *Analytics) ClearCache() {
	a.cache.Clear()
}

// WeaponStats 获取武器推导指标
// 未知武器记录警告并返回全零指标（不缓存）
func (a *Analytics) WeaponStats(weaponID string) *DerivedWeaponStats {
	if cached, ok := a.cache.weapons[weaponID]; ok {
		return cached
	}

	w, ok := a.tables.Weapon(weaponID)
	if !ok {
		a.logger.Warn("unknown weapon id, using zeroed stats", "weapon", weaponID)
		return &DerivedWeaponStats{}
	}

	stats := deriveWeaponStats(w)
	a.cache.weapons[weaponID] = &stats
	return &stats
}

// EnemyStats 获取敌人推导指标
// 未知敌人记录警告并返回全零指标（不缓存）
func (a *Analytics) EnemyStats(enemyID string) *DerivedEnemyStats {
	if cached, ok := a.cache.enemies[enemyID]; ok {
		return cached
	}

	e, ok := a.tables.Enemy(enemyID)
	if !ok {
		a.logger.Warn("unknown enemy id, using zeroed stats", "enemy", enemyID)
		return &DerivedEnemyStats{
			TTKByWeapon: map[string]float64{},
			TTC:         map[string]float64{},
		}
	}

	stats := &DerivedEnemyStats{
		TTKByWeapon: make(map[string]float64, len(a.tables.Weapons)),
		TTC:         make(map[string]float64, len(a.tables.DistanceClasses)),
		ReceivedDPS: receivedDPS(e),
		ThreatScore: threatScore(e, a.tables.Threat),
	}
	for weaponID := range a.tables.Weapons {
		stats.TTKByWeapon[weaponID] = timeToKill(e.Health, a.WeaponStats(weaponID).SustainedDPS)
	}
	for class, distance := range a.tables.DistanceClasses {
		stats.TTC[class] = timeToCross(distance, e.MoveSpeed)
	}
	stats.Cost = a.relativeCost(enemyID, stats.ThreatScore)

	a.cache.enemies[enemyID] = stats
	return stats
}

// relativeCost 以基准敌人的威胁评分归一化
func (a *Analytics) relativeCost(enemyID string, score float64) float64 {
	if enemyID == a.tables.BaselineEnemy {
		return 1
	}

	baseline, ok := a.tables.Enemy(a.tables.BaselineEnemy)
	if !ok {
		a.logger.Warn("baseline enemy missing, cost defaults to 0", "baseline", a.tables.BaselineEnemy)
		return 0
	}
	baseScore := threatScore(baseline, a.tables.Threat)
	if baseScore <= 0 {
		a.logger.Warn("baseline threat score is not positive, cost defaults to 0",
			"baseline", a.tables.BaselineEnemy, "score", baseScore)
		return 0
	}

	cost := score / baseScore
	if cost < 0 || !utils.IsFinite(cost) {
		return 0
	}
	return cost
}

// TTK 敌人被指定武器击杀所需秒数
func (a *Analytics) TTK(enemyID, weaponID string) float64 {
	if ttk, ok := a.EnemyStats(enemyID).TTKByWeapon[weaponID]; ok {
		return ttk
	}
	if _, ok := a.tables.Enemy(enemyID); !ok {
		return 0
	}
	// 敌人已知而武器未知：DPS 为 0，永远无法击杀
	a.WeaponStats(weaponID)
	return math.Inf(1)
}

// TTC 敌人穿越任意距离所需秒数
// 速度或距离为 0 时返回 0
func (a *Analytics) TTC(enemyID string, distance float64) float64 {
	e, ok := a.tables.Enemy(enemyID)
	if !ok {
		a.logger.Warn("unknown enemy id, TTC defaults to 0", "enemy", enemyID)
		return 0
	}
	return timeToCross(distance, e.MoveSpeed)
}

// TTCClass 敌人穿越指定距离档位所需秒数
// 档位未定义时第二个返回值为 false
func (a *Analytics) TTCClass(enemyID, distanceClass string) (float64, bool) {
	ttc, ok := a.EnemyStats(enemyID).TTC[distanceClass]
	return ttc, ok
}

// ThreatScore 敌人的威胁评分
func (a *Analytics) ThreatScore(enemyID string) float64 {
	return a.EnemyStats(enemyID).ThreatScore
}

// Cost 敌人相对基准的成本
func (a *Analytics) Cost(enemyID string) float64 {
	return a.EnemyStats(enemyID).Cost
}
