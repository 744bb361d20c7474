package systems

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/telemetry"
	"github.com/decker502/horde/pkg/types"
	"github.com/decker502/horde/pkg/utils"
)

// 调整动作名称，写入 AdjustmentRecord.Action
const (
	ActionEase      = "ease"      // 降低难度
	ActionIntensify = "intensify" // 提高难度
	ActionRebound   = "rebound"   // 热更新配置后倍率被限制到新区间
	ActionReset     = "reset"     // 手动恢复中性倍率
)

// DDAController 动态难度控制器
//
// 职责：
//   - 在波次边界读取遥测快照并分类玩家表现
//   - 按分类结果成比例地调整三个难度倍率，并限制在配置区间内
//   - 倍率每次实际变化（评估、热更新限幅、重置）都写入有界历史
//
// 只在波次边界调用，不在每帧调用。
type DDAController struct {
	cfg       config.DDAConfig
	source    telemetry.Source
	enabled   bool
	modifiers types.DDAModifiers
	lastState types.PerformanceState
	history   *utils.RingBuffer[types.AdjustmentRecord]
	now       func() time.Time
	logger    *log.Logger
}

// NewDDAController 创建动态难度控制器
//
// 参数：
//   - cfg: 动态难度配置（阈值、步长、区间、历史容量）
//   - source: 遥测快照来源，可为 nil（始终判定为中性）
//
// 返回：
//   - 倍率为 {1,1,1} 的控制器，启用状态取决于 cfg.Disabled
func NewDDAController(cfg config.DDAConfig, source telemetry.Source) *DDAController {
	return &DDAController{
		cfg:       cfg,
		source:    source,
		enabled:   !cfg.Disabled,
		modifiers: types.IdentityModifiers(),
		lastState: types.PerformanceNeutral,
		history:   utils.NewRingBuffer[types.AdjustmentRecord](cfg.HistorySize),
		now:       time.Now,
		logger:    utils.ComponentLogger("DDAController"),
	}
}

// SetClock 替换时间来源，测试中使用
func (d *DDAController) SetClock(now func() time.Time) {
	d.now = now
}

// SetLogger 替换日志器
func (d *DDAController) SetLogger(l *log.Logger) {
	d.logger = l
}

// SetConfig 热更新配置
// 当前倍率被限制到新区间内，发生变化时写入一条 rebound 记录；
// 历史容量和启用开关保持不变
func (d *DDAController) SetConfig(cfg config.DDAConfig) {
	d.cfg = cfg
	d.record(d.lastState, ActionRebound, types.DDAModifiers{
		BudgetMultiplier:     cfg.BudgetBounds.Clamp(d.modifiers.BudgetMultiplier),
		SpawnDelayMultiplier: cfg.SpawnDelayBounds.Clamp(d.modifiers.SpawnDelayMultiplier),
		DropRateMultiplier:   cfg.DropRateBounds.Clamp(d.modifiers.DropRateMultiplier),
	})
}

// Config 返回当前配置
func (d *DDAController) Config() config.DDAConfig {
	return d.cfg
}

// SetSource 替换遥测快照来源
func (d *DDAController) SetSource(source telemetry.Source) {
	d.source = source
}

// IsEnabled 返回动态难度是否启用
func (d *DDAController) IsEnabled() bool {
	return d.enabled
}

// SetEnabled 启用或禁用动态难度
// 禁用期间内部倍率保持不变，重新启用后从原值继续
func (d *DDAController) SetEnabled(enabled bool) {
	if d.enabled == enabled {
		return
	}
	d.enabled = enabled
	d.logger.Info("dynamic difficulty toggled", "enabled", enabled)
}

// GetModifiers 返回当前生效的倍率
// 禁用时返回 {1,1,1}
func (d *DDAController) GetModifiers() types.DDAModifiers {
	if !d.enabled {
		return types.IdentityModifiers()
	}
	return d.modifiers
}

// RawModifiers 返回内部倍率，不受启用开关影响，调试面板使用
func (d *DDAController) RawModifiers() types.DDAModifiers {
	return d.modifiers
}

// LastState 返回最近一次评估的分类
func (d *DDAController) LastState() types.PerformanceState {
	return d.lastState
}

// Classify 按阈值对快照分类，不修改任何状态
//
// 每个信号严格越过阈值才投一票，恰好落在阈值上不投票。
// 某一状态的票数至少为 MinSignals 且严格多于相反状态时才采用，否则为中性。
// 全零快照视为尚无数据，判定为中性。
func (d *DDAController) Classify(s telemetry.Snapshot) types.PerformanceState {
	if s == (telemetry.Snapshot{}) {
		return types.PerformanceNeutral
	}

	th := d.cfg.Thresholds
	struggling, dominating := 0, 0
	vote := func(strugglingHit, dominatingHit bool) {
		if strugglingHit {
			struggling++
		}
		if dominatingHit {
			dominating++
		}
	}

	vote(s.Accuracy < th.StrugglingAccuracy, s.Accuracy > th.DominatingAccuracy)
	vote(s.DamageTakenPerMinute > th.StrugglingDamageTakenPerMinute,
		s.DamageTakenPerMinute < th.DominatingDamageTakenPerMinute)
	vote(s.KillsPerMinute < th.StrugglingKillsPerMinute, s.KillsPerMinute > th.DominatingKillsPerMinute)
	vote(s.CurrentHealthPercent < th.StrugglingHealthPercent,
		s.CurrentHealthPercent > th.DominatingHealthPercent)

	// 可选信号：阈值为 0 时关闭
	if th.StrugglingNearDeathCount > 0 {
		vote(s.NearDeathCount >= th.StrugglingNearDeathCount, false)
	}
	if s.AverageWaveClearSeconds > 0 {
		vote(th.SlowWaveClearSeconds > 0 && s.AverageWaveClearSeconds > th.SlowWaveClearSeconds,
			th.FastWaveClearSeconds > 0 && s.AverageWaveClearSeconds < th.FastWaveClearSeconds)
	}

	minSignals := max(th.MinSignals, 1)
	switch {
	case struggling >= minSignals && struggling > dominating:
		return types.PerformanceStruggling
	case dominating >= minSignals && dominating > struggling:
		return types.PerformanceDominating
	default:
		return types.PerformanceNeutral
	}
}

// EvaluatePerformance 执行一次评估
// 读取快照并分类；启用时按分类调整倍率，禁用时只报告分类
func (d *DDAController) EvaluatePerformance() types.PerformanceState {
	state := types.PerformanceNeutral
	if d.source != nil {
		state = d.Classify(d.source.Snapshot())
	}
	d.lastState = state

	if !d.enabled {
		d.logger.Debug("evaluation skipped, controller disabled", "state", state)
		return state
	}
	if state != types.PerformanceNeutral {
		d.adjust(state)
	}
	return state
}

// adjust 按状态成比例调整倍率并限制在区间内
func (d *DDAController) adjust(state types.PerformanceState) {
	before := d.modifiers
	after := before

	// direction 为 +1 时降低难度，-1 时提高难度
	direction := 1.0
	action := ActionEase
	if state == types.PerformanceDominating {
		direction = -1
		action = ActionIntensify
	}

	after.BudgetMultiplier = d.cfg.BudgetBounds.Clamp(before.BudgetMultiplier * (1 - direction*d.cfg.BudgetStep))
	after.SpawnDelayMultiplier = d.cfg.SpawnDelayBounds.Clamp(before.SpawnDelayMultiplier * (1 + direction*d.cfg.SpawnDelayStep))
	after.DropRateMultiplier = d.cfg.DropRateBounds.Clamp(before.DropRateMultiplier * (1 + direction*d.cfg.DropRateStep))

	if !d.record(state, action, after) {
		d.logger.Debug("modifiers already at bounds", "state", state, "modifiers", before)
	}
}

// record 把倍率设为 after，实际发生变化时写入一条历史
// 返回：倍率是否变化
func (d *DDAController) record(state types.PerformanceState, action string, after types.DDAModifiers) bool {
	before := d.modifiers
	if after == before {
		return false
	}

	d.modifiers = after
	d.history.Push(types.AdjustmentRecord{
		Timestamp: d.now(),
		State:     state,
		Action:    action,
		Before:    before,
		After:     after,
	})
	d.logger.Info("difficulty adjusted",
		"state", state, "action", action,
		"budget", after.BudgetMultiplier,
		"spawnDelay", after.SpawnDelayMultiplier,
		"dropRate", after.DropRateMultiplier)
	return true
}

// History 返回调整历史副本（从旧到新）
func (d *DDAController) History() []types.AdjustmentRecord {
	return d.history.Items()
}

// LastAdjustment 返回最近一条调整记录，没有记录时 ok 为 false
func (d *DDAController) LastAdjustment() (types.AdjustmentRecord, bool) {
	return d.history.Last()
}

// TotalAdjustments 返回累计调整次数（包含已被淘汰的记录）
func (d *DDAController) TotalAdjustments() int64 {
	return d.history.TotalAdded()
}

// Reset 恢复中性倍率，倍率有变化时写入一条 reset 记录
// 历史只追加不清空，启用开关保持不变
func (d *DDAController) Reset() {
	d.lastState = types.PerformanceNeutral
	d.record(types.PerformanceNeutral, ActionReset, types.IdentityModifiers())
	d.logger.Info("dynamic difficulty reset")
}
