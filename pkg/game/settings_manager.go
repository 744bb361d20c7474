package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/utils"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// GameSettings 玩家难度偏好
// 只保存玩家的选择，不保存任何推导出的平衡数值
type GameSettings struct {
	DifficultyAssist bool   `yaml:"difficultyAssist"` // 是否启用动态难度
	Preset           string `yaml:"preset"`           // 难度预设名
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		DifficultyAssist: true,
		Preset:           config.PresetNormal,
	}
}

// SettingsManager 设置管理器
// 负责难度偏好的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *GameSettings
	logger       *log.Logger
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "difficulty"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例，加载失败时使用默认设置
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
		logger:       utils.ComponentLogger("SettingsManager"),
	}

	if err := sm.Load(); err != nil {
		sm.logger.Warn("failed to load settings, using defaults", "err", err)
	}
	return sm
}

// SetLogger 替换日志器
func (sm *SettingsManager) SetLogger(l *log.Logger) {
	sm.logger = l
}

// IsPersistent 返回设置是否能持久化
func (sm *SettingsManager) IsPersistent() bool {
	return sm.gdataManager != nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或数据不存在，使用默认设置
// 已保存的预设名无效时回退为 normal
//
// 返回：
//   - error: 如果读取或反序列化失败返回错误
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if preset, ok := normalizePreset(loaded.Preset); ok {
		loaded.Preset = preset
	} else {
		sm.logger.Warn("saved preset is unknown, falling back", "preset", loaded.Preset, "fallback", config.PresetNormal)
		loaded.Preset = config.PresetNormal
	}

	sm.settings = loaded
	sm.logger.Debug("settings loaded", "assist", loaded.DifficultyAssist, "preset", loaded.Preset)
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sm.logger.Debug("settings saved")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetDifficultyAssist 设置动态难度开关
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetDifficultyAssist(enabled bool) {
	sm.settings.DifficultyAssist = enabled
}

// SetPreset 设置难度预设
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
//
// 参数：
//   - preset: 预设名（不区分大小写）
//
// 返回：
//   - error: 预设名未知时返回错误，设置保持不变
func (sm *SettingsManager) SetPreset(preset string) error {
	normalized, ok := normalizePreset(preset)
	if !ok {
		return fmt.Errorf("unknown preset %q (want one of %s)", preset, strings.Join(config.PresetNames(), ", "))
	}
	sm.settings.Preset = normalized
	return nil
}

func normalizePreset(preset string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(preset))
	return normalized, slices.Contains(config.PresetNames(), normalized)
}
