package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/embedded"
	"github.com/decker502/horde/pkg/game"
	"github.com/decker502/horde/pkg/types"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultTablesPath = "data/balance.yaml"

var (
	tablesPath = flag.String("tables", config.GetEnv("HORDE_TABLES", ""), "Balance tables YAML; paths missing on disk fall back to built-in data/ (empty = built-in tables)")
	preset     = flag.String("preset", config.PresetNormal, "Difficulty preset: "+strings.Join(config.PresetNames(), ", "))
	waves      = flag.Int("waves", 0, "Preview the first N waves")
	validate   = flag.Bool("validate", false, "Exit with status 1 when balance validation fails")
	logLevel   = flag.String("log-level", config.GetEnv("HORDE_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()
	setupLogger(*logLevel)

	embedded.Init(dataFS)

	tables, err := loadTables(*tablesPath)
	if err != nil {
		log.Fatal("failed to load balance tables", "err", err)
	}
	tables, err = config.ApplyPreset(tables, *preset)
	if err != nil {
		log.Fatal("invalid preset", "err", err)
	}

	session := game.NewBalanceSession(tables, nil)
	analytics := session.Analytics()

	fmt.Print(analytics.GenerateBalanceReport())

	if *waves > 0 {
		fmt.Println()
		printWavePreview(session.PreviewWaves(1, *waves))
	}

	if *validate {
		result := analytics.ValidateBalance()
		if !result.Valid {
			log.Error("balance validation failed", "errors", len(result.Errors), "warnings", len(result.Warnings))
			os.Exit(1)
		}
		log.Info("balance validation passed", "warnings", len(result.Warnings))
	}
}

// setupLogger 设置日志级别；输出不是终端时改用 logfmt 格式
func setupLogger(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		log.SetFormatter(log.LogfmtFormatter)
	}
}

// loadTables 加载数据表，路径为空时读取内置数据
func loadTables(path string) (*config.BalanceTables, error) {
	if path == "" {
		log.Debug("using built-in balance tables", "path", defaultTablesPath)
		return config.LoadEmbeddedBalanceTables(defaultTablesPath)
	}
	log.Debug("loading balance tables", "path", path)
	return config.ResolveBalanceTables(path)
}

// printWavePreview 打印波次预览表
func printWavePreview(configs []*types.WaveConfig) {
	p := message.NewPrinter(language.English)

	fmt.Println("=== Wave Preview ===")
	p.Printf("%5s %6s %8s %9s %9s  %s\n", "wave", "total", "ingress", "budget", "spent", "groups")
	for _, cfg := range configs {
		groups := make([]string, 0, len(cfg.SpawnGroups))
		for _, g := range cfg.SpawnGroups {
			groups = append(groups, fmt.Sprintf("%s×%d", g.EnemyType, g.Count))
		}

		var flags []string
		if cfg.Composition.BudgetExceeded {
			flags = append(flags, "over-budget")
		}
		if cfg.Composition.CapsExceeded {
			flags = append(flags, "over-caps")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = " [" + strings.Join(flags, ", ") + "]"
		}

		p.Printf("%5d %6d %8d %9.1f %9.1f  %s%s\n",
			cfg.WaveNumber, cfg.TotalCount, cfg.ActiveIngressPoints,
			cfg.Composition.TotalBudget, cfg.Composition.SpentBudget,
			strings.Join(groups, " "), suffix)
	}
}
