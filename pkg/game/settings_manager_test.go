package game

import (
	"testing"

	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/utils"
	"github.com/quasilyte/gdata/v2"
)

func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	gdataManager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return gdataManager
}

func newQuietSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := NewSettingsManager(gdataManager)
	sm.SetLogger(utils.DiscardLogger())
	return sm
}

// TestDefaultSettings 测试默认设置
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if !settings.DifficultyAssist {
		t.Error("DifficultyAssist: got false, want true")
	}
	if settings.Preset != config.PresetNormal {
		t.Errorf("Preset: got %q, want %q", settings.Preset, config.PresetNormal)
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm := newQuietSettingsManager(nil)

	if sm.IsPersistent() {
		t.Error("nil gdata manager should not be persistent")
	}
	if *sm.GetSettings() != *DefaultSettings() {
		t.Errorf("degraded mode should use defaults, got %+v", sm.GetSettings())
	}

	sm.SetDifficultyAssist(false)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail: %v", err)
	}
	if sm.GetSettings().DifficultyAssist {
		t.Error("in-memory change should survive a degraded Save()")
	}
}

// TestSettingsLoadSave 测试保存后重新加载
func TestSettingsLoadSave(t *testing.T) {
	gdataManager := openTestGdata(t, "horde_test_settings")

	sm1 := newQuietSettingsManager(gdataManager)
	if !sm1.IsPersistent() {
		t.Fatal("expected persistent settings manager")
	}
	sm1.SetDifficultyAssist(false)
	if err := sm1.SetPreset("Hard"); err != nil {
		t.Fatalf("SetPreset() error: %v", err)
	}
	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2 := newQuietSettingsManager(gdataManager)
	settings := sm2.GetSettings()
	if settings.DifficultyAssist {
		t.Error("Loaded DifficultyAssist: got true, want false")
	}
	if settings.Preset != config.PresetHard {
		t.Errorf("Loaded Preset: got %q, want %q", settings.Preset, config.PresetHard)
	}
}

// TestLoadUnknownPresetFallsBack 测试已保存的无效预设回退为 normal
func TestLoadUnknownPresetFallsBack(t *testing.T) {
	gdataManager := openTestGdata(t, "horde_test_settings_fallback")

	data := []byte("difficultyAssist: false\npreset: nightmare\n")
	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm := newQuietSettingsManager(gdataManager)
	if err := sm.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if sm.GetSettings().Preset != config.PresetNormal {
		t.Errorf("Preset: got %q, want fallback %q", sm.GetSettings().Preset, config.PresetNormal)
	}
	if sm.GetSettings().DifficultyAssist {
		t.Error("DifficultyAssist should still load from the saved data")
	}
}

// TestLoadCorruptedSettings 测试损坏的数据返回错误并回退默认值
func TestLoadCorruptedSettings(t *testing.T) {
	gdataManager := openTestGdata(t, "horde_test_settings_corrupt")

	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte("preset: [unterminated")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm := newQuietSettingsManager(gdataManager)
	if err := sm.Load(); err == nil {
		t.Error("Load() should fail on corrupted data")
	}
	if *sm.GetSettings() != *DefaultSettings() {
		t.Errorf("corrupted data should fall back to defaults, got %+v", sm.GetSettings())
	}
}

// TestSetPreset 测试预设名校验
func TestSetPreset(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"小写", "casual", config.PresetCasual, false},
		{"大小写混合", "HaRd", config.PresetHard, false},
		{"带空格", "  normal ", config.PresetNormal, false},
		{"未知预设", "nightmare", config.PresetNormal, true},
		{"空字符串", "", config.PresetNormal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newQuietSettingsManager(nil)
			err := sm.SetPreset(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetPreset(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if sm.GetSettings().Preset != tt.expected {
				t.Errorf("Preset: got %q, want %q", sm.GetSettings().Preset, tt.expected)
			}
		})
	}
}
