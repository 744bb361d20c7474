package main

import (
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/game"
	"github.com/decker502/horde/pkg/telemetry"
	"github.com/decker502/horde/pkg/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

const (
	screenWidth  = 800
	screenHeight = 600
)

var (
	tablesPath = flag.String("tables", config.GetEnv("HORDE_TABLES", "data/balance.yaml"), "Balance tables YAML")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

// Inspector 波次调试面板
type Inspector struct {
	session  *game.BalanceSession
	source   *telemetry.StaticSource
	settings *game.SettingsManager
	path     string // 数据表路径，L 键重新加载
	profile  string
	logger   *log.Logger
}

// NewInspector 创建调试面板并开始第1波
func NewInspector(path string, tables *config.BalanceTables, settings *game.SettingsManager) *Inspector {
	source := telemetry.NewStaticSource(telemetry.NeutralProfile())
	in := &Inspector{
		session:  game.NewBalanceSession(tables, source),
		source:   source,
		settings: settings,
		path:     path,
		profile:  "neutral",
		logger:   log.Default().WithPrefix("WaveInspector"),
	}
	if err := in.session.ApplySettings(settings.GetSettings()); err != nil {
		in.logger.Warn("failed to apply saved settings", "err", err)
	}
	in.session.StartWave(1)
	return in
}

// Update 处理按键
func (in *Inspector) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		in.session.NextWave()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		in.session.StartWave(max(in.session.CurrentWave()-1, 1))
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		in.completeWith("struggling", telemetry.StrugglingProfile())
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		in.completeWith("dominating", telemetry.DominatingProfile())
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		in.completeWith("neutral", telemetry.NeutralProfile())
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		in.toggleAssist()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		in.cyclePreset()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		in.session.DDA().Reset()
		in.session.StartWave(in.session.CurrentWave())
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		in.reload()
	}
	return nil
}

// reload 从磁盘重新加载数据表并重排当前波
func (in *Inspector) reload() {
	tables, err := config.LoadBalanceTables(in.path)
	if err != nil {
		in.logger.Warn("failed to reload balance tables", "path", in.path, "err", err)
		return
	}
	if err := in.session.Reload(tables); err != nil {
		in.logger.Warn("failed to apply reloaded tables", "err", err)
		return
	}
	in.session.StartWave(in.session.CurrentWave())
}

// completeWith 注入遥测快照、清空当前波并开始下一波
func (in *Inspector) completeWith(profile string, snap telemetry.Snapshot) {
	in.profile = profile
	in.source.Set(snap)
	in.session.CompleteWave()
	in.session.NextWave()
}

func (in *Inspector) toggleAssist() {
	assist := !in.settings.GetSettings().DifficultyAssist
	in.settings.SetDifficultyAssist(assist)
	in.session.DDA().SetEnabled(assist)
	in.save()
}

func (in *Inspector) cyclePreset() {
	names := config.PresetNames()
	next := names[(slices.Index(names, in.session.Preset())+1)%len(names)]
	if err := in.settings.SetPreset(next); err != nil {
		in.logger.Warn("failed to set preset", "err", err)
		return
	}
	if err := in.session.ApplySettings(in.settings.GetSettings()); err != nil {
		in.logger.Warn("failed to apply preset", "err", err)
		return
	}
	in.session.StartWave(in.session.CurrentWave())
	in.save()
}

func (in *Inspector) save() {
	if err := in.settings.Save(); err != nil {
		in.logger.Warn("failed to save settings", "err", err)
	}
}

// Draw 绘制当前波次构成和动态难度状态
func (in *Inspector) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, in.panelText())
}

func (in *Inspector) panelText() string {
	var b strings.Builder
	cfg := in.session.CurrentConfig()
	dda := in.session.DDA()
	comp := cfg.Composition

	fmt.Fprintf(&b, "Wave %d  preset=%s  telemetry=%s\n", cfg.WaveNumber, in.session.Preset(), in.profile)
	fmt.Fprintf(&b, "Total %d  ingress %d\n", cfg.TotalCount, cfg.ActiveIngressPoints)
	fmt.Fprintf(&b, "Budget %.1f / %.1f", comp.SpentBudget, comp.TotalBudget)
	if comp.BudgetExceeded {
		b.WriteString("  OVER BUDGET")
	}
	if comp.CapsExceeded {
		b.WriteString("  OVER CAPS")
	}
	b.WriteString("\n\nSpawn groups:\n")
	if cfg.IsEmpty() {
		b.WriteString("  (empty plan)\n")
	}
	for _, g := range cfg.SpawnGroups {
		fmt.Fprintf(&b, "  %-10s x%d\n", g.EnemyType, g.Count)
	}

	b.WriteString("\nBy role (count / cap):\n")
	caps := in.session.Allocator().GetRoleCaps()
	for _, role := range types.AllRoles() {
		fmt.Fprintf(&b, "  %-8s %3d / %d\n", role, comp.CountsByRole[role], caps.Cap(role))
	}

	storage := "in-memory"
	if in.settings.IsPersistent() {
		storage = "persistent"
	}
	fmt.Fprintf(&b, "\nSettings %s  derived cache %d entries\n", storage, in.session.Analytics().Cache().Len())

	bounds := dda.Config().BudgetBounds
	fmt.Fprintf(&b, "\nDDA enabled=%v  last=%s  adjustments=%d  budget bounds [%.2f, %.2f]\n",
		dda.IsEnabled(), dda.LastState(), dda.TotalAdjustments(), bounds.Min, bounds.Max)
	fmt.Fprintf(&b, "  wave snapshot: %s\n", in.session.Modifiers())
	fmt.Fprintf(&b, "  raw:           %s\n", dda.RawModifiers())
	if rec, ok := dda.LastAdjustment(); ok {
		fmt.Fprintf(&b, "  last change:   %s (%s) %s -> %s\n", rec.Action, rec.State, rec.Before, rec.After)
	}
	history := dda.History()
	for _, rec := range history[max(len(history)-5, 0):] {
		fmt.Fprintf(&b, "  %s %-9s %s\n", rec.Timestamp.Format("15:04:05"), rec.Action, rec.After)
	}

	b.WriteString("\n<-/-> wave  S/D/N inject telemetry + clear wave  T toggle DDA  P preset  R reset  L reload  Esc quit")
	return b.String()
}

// Layout 返回逻辑屏幕尺寸
func (in *Inspector) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	tables, err := config.LoadBalanceTables(*tablesPath)
	if err != nil {
		log.Warn("failed to load balance tables, using defaults", "path", *tablesPath, "err", err)
		tables = config.DefaultBalanceTables()
	}

	// gdata 不可用时降级为仅内存设置
	gdataManager, err := gdata.Open(gdata.Config{AppName: "horde"})
	if err != nil {
		log.Warn("settings persistence unavailable", "err", err)
		gdataManager = nil
	}
	settings := game.NewSettingsManager(gdataManager)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Horde - Wave Inspector")

	if err := ebiten.RunGame(NewInspector(*tablesPath, tables, settings)); err != nil {
		log.Fatal("inspector stopped", "err", err)
	}
}
