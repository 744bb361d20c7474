package config

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/decker502/horde/pkg/embedded"
	"github.com/decker502/horde/pkg/types"
	"gopkg.in/yaml.v3"
)

// WeaponStats 单个武器的基础属性
type WeaponStats struct {
	Damage       float64 `yaml:"damage"`       // 单发（单弹丸）伤害
	FireRateMs   float64 `yaml:"fireRateMs"`   // 射击间隔（毫秒）
	MagazineSize int     `yaml:"magazineSize"` // 弹匣容量
	ReloadTimeMs float64 `yaml:"reloadTimeMs"` // 换弹时间（毫秒）
	PelletCount  int     `yaml:"pelletCount"`  // 每发弹丸数，单弹丸武器可省略（按 1 处理）
}

// EnemyStats 单个敌人类型的基础属性
type EnemyStats struct {
	Health           float64         `yaml:"health"`           // 生命值
	MoveSpeed        float64         `yaml:"moveSpeed"`        // 移动速度（像素/秒）
	AttackDamage     float64         `yaml:"attackDamage"`     // 单次攻击伤害
	AttackCooldownMs float64         `yaml:"attackCooldownMs"` // 攻击间隔（毫秒）
	Role             types.EnemyRole `yaml:"role"`             // 行为角色
	Abilities        []string        `yaml:"abilities"`        // 特殊能力标签，如 "summoner", "ranged"
}

// RosterEntry 出怪名单中的一项
type RosterEntry struct {
	EnemyType  string  `yaml:"enemyType"`  // 敌人类型ID
	UnlockWave int     `yaml:"unlockWave"` // 最早出现的波次（从1开始）
	Weight     float64 `yaml:"weight"`     // 生成权重
}

// WaveProgression 波次成长常量
type WaveProgression struct {
	BaseCount             int     `yaml:"baseCount"`             // 第1波敌人总数
	PerWaveIncrement      int     `yaml:"perWaveIncrement"`      // 每波增加的敌人数
	MaxCount              int     `yaml:"maxCount"`              // 单波敌人总数上限
	InitialIngressPoints  int     `yaml:"initialIngressPoints"`  // 第1波启用的入口数
	WavesPerIngressUnlock int     `yaml:"wavesPerIngressUnlock"` // 每隔多少波解锁一个入口
	MaxIngressPoints      int     `yaml:"maxIngressPoints"`      // 入口数上限
	BaseBudget            float64 `yaml:"baseBudget"`            // 第1波威胁预算
	BudgetPerWave         float64 `yaml:"budgetPerWave"`         // 每波增加的威胁预算
}

// RoleCaps 各角色同时存在数量上限
type RoleCaps struct {
	Fodder  int `yaml:"fodder"`
	Rusher  int `yaml:"rusher"`
	Tank    int `yaml:"tank"`
	Ranged  int `yaml:"ranged"`
	Special int `yaml:"special"`
}

// Cap 返回指定角色的上限，未知角色返回 0
func (c RoleCaps) Cap(role types.EnemyRole) int {
	switch role {
	case types.RoleFodder:
		return c.Fodder
	case types.RoleRusher:
		return c.Rusher
	case types.RoleTank:
		return c.Tank
	case types.RoleRanged:
		return c.Ranged
	case types.RoleSpecial:
		return c.Special
	}
	return 0
}

// ThreatWeights 威胁评分权重
// threatScore = SpeedWeight*moveSpeed + DamageWeight*receivedDPS + Σ AbilitySurcharges[ability]
type ThreatWeights struct {
	SpeedWeight       float64            `yaml:"speedWeight"`
	DamageWeight      float64            `yaml:"damageWeight"`
	AbilitySurcharges map[string]float64 `yaml:"abilitySurcharges"`
}

// 校验规则的指标类型
const (
	MetricTTK = "ttk"
	MetricTTC = "ttc"
)

// 校验规则的严重级别
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationRule 平衡校验规则
// TTK 规则需要 Enemy + Weapon；TTC 规则需要 Enemy + DistanceClass
type ValidationRule struct {
	Name          string  `yaml:"name"`
	Metric        string  `yaml:"metric"`
	Enemy         string  `yaml:"enemy"`
	Weapon        string  `yaml:"weapon"`
	DistanceClass string  `yaml:"distanceClass"`
	Min           float64 `yaml:"min"`
	Max           float64 `yaml:"max"`
	Severity      string  `yaml:"severity"` // "error" 或 "warning"，默认 "error"
}

// Bounds 闭区间 [Min, Max]
type Bounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Clamp 把 v 限制在区间内
func (b Bounds) Clamp(v float64) float64 {
	return min(max(v, b.Min), b.Max)
}

// DDAThresholds 表现分类阈值
// 值为 0 的可选信号（NearDeath、WaveClear）视为关闭
type DDAThresholds struct {
	StrugglingAccuracy             float64 `yaml:"strugglingAccuracy"`
	DominatingAccuracy             float64 `yaml:"dominatingAccuracy"`
	StrugglingDamageTakenPerMinute float64 `yaml:"strugglingDamageTakenPerMinute"`
	DominatingDamageTakenPerMinute float64 `yaml:"dominatingDamageTakenPerMinute"`
	StrugglingKillsPerMinute       float64 `yaml:"strugglingKillsPerMinute"`
	DominatingKillsPerMinute       float64 `yaml:"dominatingKillsPerMinute"`
	StrugglingHealthPercent        float64 `yaml:"strugglingHealthPercent"`
	DominatingHealthPercent        float64 `yaml:"dominatingHealthPercent"`
	StrugglingNearDeathCount       int     `yaml:"strugglingNearDeathCount"`
	SlowWaveClearSeconds           float64 `yaml:"slowWaveClearSeconds"`
	FastWaveClearSeconds           float64 `yaml:"fastWaveClearSeconds"`
	MinSignals                     int     `yaml:"minSignals"` // 判定为非中性所需的最少信号数
}

// DDAConfig 动态难度调整配置
type DDAConfig struct {
	Disabled         bool          `yaml:"disabled"`
	Thresholds       DDAThresholds `yaml:"thresholds"`
	BudgetStep       float64       `yaml:"budgetStep"`     // 每次调整的相对幅度
	SpawnDelayStep   float64       `yaml:"spawnDelayStep"` // 同上
	DropRateStep     float64       `yaml:"dropRateStep"`   // 同上
	BudgetBounds     Bounds        `yaml:"budgetBounds"`
	SpawnDelayBounds Bounds        `yaml:"spawnDelayBounds"`
	DropRateBounds   Bounds        `yaml:"dropRateBounds"`
	HistorySize      int           `yaml:"historySize"` // 调整历史最大条数
}

// BalanceTables 平衡引擎的静态数据表
// 启动时加载一次，会话内只读
type BalanceTables struct {
	BaselineEnemy   string                 `yaml:"baselineEnemy"`   // 基准敌人（cost 恒为 1）
	Weapons         map[string]WeaponStats `yaml:"weapons"`         // 武器ID -> 属性
	Enemies         map[string]EnemyStats  `yaml:"enemies"`         // 敌人ID -> 属性
	DistanceClasses map[string]float64     `yaml:"distanceClasses"` // 距离档位 -> 像素距离
	Roster          []RosterEntry          `yaml:"roster"`          // 出怪名单（顺序有意义）
	Waves           WaveProgression        `yaml:"waves"`
	RoleCaps        RoleCaps               `yaml:"roleCaps"`
	Threat          ThreatWeights          `yaml:"threat"`
	Validation      []ValidationRule       `yaml:"validation"`
	DDA             DDAConfig              `yaml:"dda"`
}

// Weapon 查询武器属性
func (t *BalanceTables) Weapon(id string) (WeaponStats, bool) {
	w, ok := t.Weapons[id]
	return w, ok
}

// Enemy 查询敌人属性
func (t *BalanceTables) Enemy(id string) (EnemyStats, bool) {
	e, ok := t.Enemies[id]
	return e, ok
}

// WeaponIDs 返回排序后的武器ID列表
func (t *BalanceTables) WeaponIDs() []string {
	return slices.Sorted(maps.Keys(t.Weapons))
}

// EnemyIDs 返回排序后的敌人ID列表
func (t *BalanceTables) EnemyIDs() []string {
	return slices.Sorted(maps.Keys(t.Enemies))
}

// DistanceClassIDs 返回排序后的距离档位列表
func (t *BalanceTables) DistanceClassIDs() []string {
	return slices.Sorted(maps.Keys(t.DistanceClasses))
}

// Clone 深拷贝数据表，预设和热重载在副本上修改，不影响正在使用的表
func (t *BalanceTables) Clone() *BalanceTables {
	c := *t
	c.Weapons = maps.Clone(t.Weapons)
	c.Enemies = make(map[string]EnemyStats, len(t.Enemies))
	for id, e := range t.Enemies {
		e.Abilities = slices.Clone(e.Abilities)
		c.Enemies[id] = e
	}
	c.DistanceClasses = maps.Clone(t.DistanceClasses)
	c.Roster = slices.Clone(t.Roster)
	c.Threat.AbilitySurcharges = maps.Clone(t.Threat.AbilitySurcharges)
	c.Validation = slices.Clone(t.Validation)
	return &c
}

// LoadBalanceTables 从文件系统加载平衡数据表
// 参数：
//
//	filePath - YAML 文件路径
//
// 返回：
//
//	*BalanceTables - 解析并校验后的数据表
//	error - 读取、解析或校验失败
func LoadBalanceTables(filePath string) (*BalanceTables, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance tables file %s: %w", filePath, err)
	}
	tables, err := ParseBalanceTables(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return tables, nil
}

// LoadEmbeddedBalanceTables 从内置数据加载平衡数据表
// 路径必须以 "data/" 开头，且 embedded.Init() 已被调用
func LoadEmbeddedBalanceTables(path string) (*BalanceTables, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded balance tables %s: %w", path, err)
	}
	tables, err := ParseBalanceTables(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tables, nil
}

// ResolveBalanceTables 按路径加载数据表
// 磁盘上有该文件时读取磁盘；否则在内置数据中存在同名文件时读取内置数据
func ResolveBalanceTables(path string) (*BalanceTables, error) {
	if _, err := os.Stat(path); err != nil && embedded.IsInitialized() && embedded.Exists(path) {
		return LoadEmbeddedBalanceTables(path)
	}
	return LoadBalanceTables(path)
}

// ParseBalanceTables 解析 YAML 数据，应用默认值并校验
func ParseBalanceTables(data []byte) (*BalanceTables, error) {
	var tables BalanceTables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse balance tables YAML: %w", err)
	}

	applyBalanceDefaults(&tables)

	if err := validateBalanceTables(&tables); err != nil {
		return nil, fmt.Errorf("invalid balance tables: %w", err)
	}
	return &tables, nil
}

// applyBalanceDefaults 为缺失的可选字段设置默认值
func applyBalanceDefaults(t *BalanceTables) {
	for id, w := range t.Weapons {
		if w.PelletCount == 0 {
			w.PelletCount = 1
			t.Weapons[id] = w
		}
	}

	for i := range t.Validation {
		if t.Validation[i].Severity == "" {
			t.Validation[i].Severity = SeverityError
		}
		if t.Validation[i].Name == "" {
			r := t.Validation[i]
			t.Validation[i].Name = fmt.Sprintf("%s:%s:%s%s", r.Metric, r.Enemy, r.Weapon, r.DistanceClass)
		}
	}

	// 整块未配置时才使用默认值，单个 0 可能是有意为之（例如禁止坦克）
	if t.RoleCaps == (RoleCaps{}) {
		t.RoleCaps = DefaultRoleCaps()
	}

	if t.Threat.SpeedWeight == 0 && t.Threat.DamageWeight == 0 {
		def := DefaultThreatWeights()
		t.Threat.SpeedWeight = def.SpeedWeight
		t.Threat.DamageWeight = def.DamageWeight
	}

	applyDDADefaults(&t.DDA)
}

func applyDDADefaults(c *DDAConfig) {
	def := DefaultDDAConfig()
	if c.Thresholds == (DDAThresholds{}) {
		c.Thresholds = def.Thresholds
	}
	if c.Thresholds.MinSignals == 0 {
		c.Thresholds.MinSignals = def.Thresholds.MinSignals
	}
	if c.BudgetStep == 0 {
		c.BudgetStep = def.BudgetStep
	}
	if c.SpawnDelayStep == 0 {
		c.SpawnDelayStep = def.SpawnDelayStep
	}
	if c.DropRateStep == 0 {
		c.DropRateStep = def.DropRateStep
	}
	if c.BudgetBounds == (Bounds{}) {
		c.BudgetBounds = def.BudgetBounds
	}
	if c.SpawnDelayBounds == (Bounds{}) {
		c.SpawnDelayBounds = def.SpawnDelayBounds
	}
	if c.DropRateBounds == (Bounds{}) {
		c.DropRateBounds = def.DropRateBounds
	}
	if c.HistorySize == 0 {
		c.HistorySize = def.HistorySize
	}
}

// validateBalanceTables 验证数据表的完整性和合法性
// 校验规则中引用的未知ID不在这里报错，由 balance.Analytics.ValidateBalance 报告
func validateBalanceTables(t *BalanceTables) error {
	if len(t.Weapons) == 0 {
		return fmt.Errorf("at least one weapon is required")
	}
	if len(t.Enemies) == 0 {
		return fmt.Errorf("at least one enemy is required")
	}
	if t.BaselineEnemy == "" {
		return fmt.Errorf("baselineEnemy is required")
	}
	if _, ok := t.Enemies[t.BaselineEnemy]; !ok {
		return fmt.Errorf("baselineEnemy %q is not defined in enemies", t.BaselineEnemy)
	}

	for id, w := range t.Weapons {
		if w.Damage < 0 {
			return fmt.Errorf("weapon %s: damage cannot be negative, got %v", id, w.Damage)
		}
		if w.FireRateMs <= 0 {
			return fmt.Errorf("weapon %s: fireRateMs must be positive, got %v", id, w.FireRateMs)
		}
		if w.MagazineSize < 1 {
			return fmt.Errorf("weapon %s: magazineSize must be at least 1, got %d", id, w.MagazineSize)
		}
		if w.ReloadTimeMs < 0 {
			return fmt.Errorf("weapon %s: reloadTimeMs cannot be negative, got %v", id, w.ReloadTimeMs)
		}
		if w.PelletCount < 1 {
			return fmt.Errorf("weapon %s: pelletCount must be at least 1, got %d", id, w.PelletCount)
		}
	}

	for id, e := range t.Enemies {
		if e.Health <= 0 {
			return fmt.Errorf("enemy %s: health must be positive, got %v", id, e.Health)
		}
		if e.MoveSpeed < 0 {
			return fmt.Errorf("enemy %s: moveSpeed cannot be negative, got %v", id, e.MoveSpeed)
		}
		if e.AttackDamage < 0 {
			return fmt.Errorf("enemy %s: attackDamage cannot be negative, got %v", id, e.AttackDamage)
		}
		if e.AttackCooldownMs < 0 {
			return fmt.Errorf("enemy %s: attackCooldownMs cannot be negative, got %v", id, e.AttackCooldownMs)
		}
		// 冷却为 0 时承受 DPS 无法计算，会被当成无害敌人
		if e.AttackDamage > 0 && e.AttackCooldownMs == 0 {
			return fmt.Errorf("enemy %s: attackCooldownMs must be positive when attackDamage > 0", id)
		}
		if !e.Role.IsValid() {
			return fmt.Errorf("enemy %s: unknown role %q", id, e.Role)
		}
	}

	for name, d := range t.DistanceClasses {
		if d < 0 {
			return fmt.Errorf("distance class %s: distance cannot be negative, got %v", name, d)
		}
	}

	for i, r := range t.Roster {
		if _, ok := t.Enemies[r.EnemyType]; !ok {
			return fmt.Errorf("roster[%d]: unknown enemy type %q", i, r.EnemyType)
		}
		if r.UnlockWave < 1 {
			return fmt.Errorf("roster[%d]: unlockWave must be >= 1, got %d", i, r.UnlockWave)
		}
		if r.Weight < 0 {
			return fmt.Errorf("roster[%d]: weight cannot be negative, got %v", i, r.Weight)
		}
	}

	if err := validateWaveProgression(&t.Waves); err != nil {
		return err
	}

	for _, role := range types.AllRoles() {
		if t.RoleCaps.Cap(role) < 0 {
			return fmt.Errorf("roleCaps.%s cannot be negative", role)
		}
	}

	if t.Threat.SpeedWeight <= 0 || t.Threat.DamageWeight <= 0 {
		return fmt.Errorf("threat weights must be positive, got speed=%v damage=%v",
			t.Threat.SpeedWeight, t.Threat.DamageWeight)
	}
	for ability, s := range t.Threat.AbilitySurcharges {
		if s < 0 {
			return fmt.Errorf("threat surcharge for %s cannot be negative, got %v", ability, s)
		}
	}

	for i, r := range t.Validation {
		if r.Metric != MetricTTK && r.Metric != MetricTTC {
			return fmt.Errorf("validation[%d] %s: metric must be ttk or ttc, got %q", i, r.Name, r.Metric)
		}
		if r.Severity != SeverityError && r.Severity != SeverityWarning {
			return fmt.Errorf("validation[%d] %s: severity must be error or warning, got %q", i, r.Name, r.Severity)
		}
		if r.Min > r.Max {
			return fmt.Errorf("validation[%d] %s: min %v is greater than max %v", i, r.Name, r.Min, r.Max)
		}
	}

	return validateDDAConfig(&t.DDA)
}

func validateWaveProgression(w *WaveProgression) error {
	if w.BaseCount < 0 {
		return fmt.Errorf("waves.baseCount cannot be negative, got %d", w.BaseCount)
	}
	if w.PerWaveIncrement < 0 {
		return fmt.Errorf("waves.perWaveIncrement cannot be negative, got %d", w.PerWaveIncrement)
	}
	if w.MaxCount < w.BaseCount {
		return fmt.Errorf("waves.maxCount (%d) must be >= baseCount (%d)", w.MaxCount, w.BaseCount)
	}
	if w.InitialIngressPoints < 1 {
		return fmt.Errorf("waves.initialIngressPoints must be >= 1, got %d", w.InitialIngressPoints)
	}
	if w.WavesPerIngressUnlock < 1 {
		return fmt.Errorf("waves.wavesPerIngressUnlock must be >= 1, got %d", w.WavesPerIngressUnlock)
	}
	if w.MaxIngressPoints < w.InitialIngressPoints {
		return fmt.Errorf("waves.maxIngressPoints (%d) must be >= initialIngressPoints (%d)",
			w.MaxIngressPoints, w.InitialIngressPoints)
	}
	if w.BaseBudget < 0 {
		return fmt.Errorf("waves.baseBudget cannot be negative, got %v", w.BaseBudget)
	}
	if w.BudgetPerWave <= 0 {
		return fmt.Errorf("waves.budgetPerWave must be positive, got %v", w.BudgetPerWave)
	}
	return nil
}

func validateDDAConfig(c *DDAConfig) error {
	steps := map[string]float64{
		"budgetStep":     c.BudgetStep,
		"spawnDelayStep": c.SpawnDelayStep,
		"dropRateStep":   c.DropRateStep,
	}
	for name, s := range steps {
		if s < 0 || s >= 1 {
			return fmt.Errorf("dda.%s must be in [0, 1), got %v", name, s)
		}
	}

	bounds := map[string]Bounds{
		"budgetBounds":     c.BudgetBounds,
		"spawnDelayBounds": c.SpawnDelayBounds,
		"dropRateBounds":   c.DropRateBounds,
	}
	for name, b := range bounds {
		if b.Min <= 0 {
			return fmt.Errorf("dda.%s.min must be positive, got %v", name, b.Min)
		}
		if b.Min > 1 || b.Max < 1 {
			return fmt.Errorf("dda.%s must contain 1, got [%v, %v]", name, b.Min, b.Max)
		}
	}

	if c.HistorySize < 1 {
		return fmt.Errorf("dda.historySize must be >= 1, got %d", c.HistorySize)
	}
	if c.Thresholds.MinSignals < 1 {
		return fmt.Errorf("dda.thresholds.minSignals must be >= 1, got %d", c.Thresholds.MinSignals)
	}
	return nil
}
