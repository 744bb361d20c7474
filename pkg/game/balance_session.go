package game

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/decker502/horde/pkg/balance"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/systems"
	"github.com/decker502/horde/pkg/telemetry"
	"github.com/decker502/horde/pkg/types"
	"github.com/decker502/horde/pkg/utils"
)

// BalanceSession 一局游戏的平衡引擎编排
//
// 宿主游戏循环在阶段边界调用：
//   - 波次开始：StartWave / NextWave，按当时的倍率快照编排本波
//   - 波次清空：CompleteWave，执行一次动态难度评估
//
// 所有调用都在同一逻辑线程上，会话本身不加锁。
type BalanceSession struct {
	base      *config.BalanceTables // 未应用预设的原始数据表
	tables    *config.BalanceTables // 当前生效的数据表
	preset    string
	analytics *balance.Analytics
	allocator *systems.ThreatBudgetAllocator
	composer  *systems.WaveComposer
	dda       *systems.DDAController

	currentWave   int
	current       *types.WaveConfig
	waveModifiers types.DDAModifiers

	logger *log.Logger
}

// NewBalanceSession 创建平衡会话
//
// 参数：
//   - tables: 静态数据表，会话期间视为只读
//   - source: 遥测快照来源，可为 nil
func NewBalanceSession(tables *config.BalanceTables, source telemetry.Source) *BalanceSession {
	s := &BalanceSession{
		base:          tables,
		tables:        tables,
		preset:        config.PresetNormal,
		analytics:     balance.NewAnalytics(tables, balance.NewCache()),
		dda:           systems.NewDDAController(tables.DDA, source),
		waveModifiers: types.IdentityModifiers(),
		logger:        utils.ComponentLogger("BalanceSession"),
	}
	s.rebuild()
	return s
}

// rebuild 根据当前数据表重建分配器和编排器
func (s *BalanceSession) rebuild() {
	s.allocator = systems.NewThreatBudgetAllocator(s.tables, s.analytics, s.dda)
	s.composer = systems.NewWaveComposer(s.tables, s.allocator)
}

// SetLogger 替换会话及其所有组件的日志器
func (s *BalanceSession) SetLogger(l *log.Logger) {
	s.logger = l
	s.analytics.SetLogger(l)
	s.composer.SetLogger(l)
	s.dda.SetLogger(l)
}

// StartWave 开始指定波次
// 先取一次倍率快照，本波编排和之后的 Modifiers() 都使用这份快照
func (s *BalanceSession) StartWave(waveNumber int) *types.WaveConfig {
	s.waveModifiers = s.dda.GetModifiers()
	s.currentWave = waveNumber
	s.current = s.composer.GenerateWaveConfigWithModifiers(waveNumber, s.waveModifiers)

	if s.current.IsEmpty() {
		s.logger.Warn("wave has no spawns", "wave", waveNumber)
	} else {
		s.logger.Info("wave started",
			"wave", waveNumber,
			"total", s.current.TotalCount,
			"ingress", s.current.ActiveIngressPoints,
			"budget", s.current.Composition.TotalBudget)
	}
	return s.current
}

// NextWave 开始下一波
func (s *BalanceSession) NextWave() *types.WaveConfig {
	return s.StartWave(s.currentWave + 1)
}

// CompleteWave 波次清空时调用，执行一次动态难度评估
// 新倍率从下一次 StartWave 开始生效
func (s *BalanceSession) CompleteWave() types.PerformanceState {
	state := s.dda.EvaluatePerformance()
	s.logger.Info("wave completed", "wave", s.currentWave, "state", state)
	return state
}

// CurrentWave 返回当前波次号，尚未开始时为 0
func (s *BalanceSession) CurrentWave() int {
	return s.currentWave
}

// CurrentConfig 返回当前波次的生成计划，尚未开始时为 nil
func (s *BalanceSession) CurrentConfig() *types.WaveConfig {
	return s.current
}

// Modifiers 返回本波开始时的倍率快照
// 出怪节奏和掉落率在整个波次内都应读取这份快照
func (s *BalanceSession) Modifiers() types.DDAModifiers {
	return s.waveModifiers
}

// PreviewWaves 用当前倍率预览一段波次，不改变会话状态
func (s *BalanceSession) PreviewWaves(from, to int) []*types.WaveConfig {
	if to < from {
		return nil
	}
	mods := s.dda.GetModifiers()
	previews := make([]*types.WaveConfig, 0, to-from+1)
	for wave := from; wave <= to; wave++ {
		previews = append(previews, s.composer.GenerateWaveConfigWithModifiers(wave, mods))
	}
	return previews
}

// Reload 热更新数据表
// 推导缓存被清空，动态难度倍率和历史保留（倍率被限制到新区间内）
func (s *BalanceSession) Reload(tables *config.BalanceTables) error {
	effective, err := config.ApplyPreset(tables, s.preset)
	if err != nil {
		return fmt.Errorf("failed to reload tables: %w", err)
	}
	s.base = tables
	s.apply(effective)
	s.logger.Info("balance tables reloaded", "preset", s.preset)
	return nil
}

// ApplySettings 应用玩家的难度偏好
// 预设作用在原始数据表的副本上，重复应用不会叠加
func (s *BalanceSession) ApplySettings(settings *GameSettings) error {
	if settings == nil {
		return nil
	}
	effective, err := config.ApplyPreset(s.base, settings.Preset)
	if err != nil {
		return fmt.Errorf("failed to apply settings: %w", err)
	}
	s.preset = cmp.Or(strings.ToLower(strings.TrimSpace(settings.Preset)), config.PresetNormal)
	s.apply(effective)
	s.dda.SetEnabled(settings.DifficultyAssist)
	s.logger.Info("settings applied", "preset", s.preset, "assist", settings.DifficultyAssist)
	return nil
}

func (s *BalanceSession) apply(tables *config.BalanceTables) {
	s.tables = tables
	s.analytics = balance.NewAnalytics(tables, s.analytics.Cache())
	s.analytics.SetLogger(s.logger)
	s.analytics.ClearCache()
	s.dda.SetConfig(tables.DDA)
	s.rebuild()
	s.composer.SetLogger(s.logger)
}

// Preset 返回当前预设名
func (s *BalanceSession) Preset() string {
	return s.preset
}

// Tables 返回当前生效的数据表
func (s *BalanceSession) Tables() *config.BalanceTables {
	return s.tables
}

// Analytics 返回平衡分析器
func (s *BalanceSession) Analytics() *balance.Analytics {
	return s.analytics
}

// Composer 返回波次编排器
func (s *BalanceSession) Composer() *systems.WaveComposer {
	return s.composer
}

// Allocator 返回威胁预算分配器
func (s *BalanceSession) Allocator() *systems.ThreatBudgetAllocator {
	return s.allocator
}

// DDA 返回动态难度控制器
func (s *BalanceSession) DDA() *systems.DDAController {
	return s.dda
}
