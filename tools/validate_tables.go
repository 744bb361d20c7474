package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/decker502/horde/pkg/balance"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/game"
	"github.com/decker502/horde/pkg/utils"
	"gopkg.in/yaml.v3"
)

// 波次可行性检查覆盖的波数
const scanWaves = 100

// 数据表允许的顶层字段
var knownSections = []string{
	"baselineEnemy", "weapons", "enemies", "distanceClasses", "roster",
	"waves", "roleCaps", "threat", "validation", "dda",
}

func main() {
	path := "data/balance.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ 读取文件失败: %v\n", err)
		os.Exit(1)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		fmt.Printf("❌ YAML 解析失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ YAML 格式正确\n")

	unknown := 0
	for key, node := range raw {
		if !slices.Contains(knownSections, key) {
			fmt.Printf("❌ 未知字段 %q（第 %d 行）\n", key, node.Line)
			unknown++
		}
	}
	if unknown > 0 {
		os.Exit(1)
	}

	tables, err := config.ParseBalanceTables(data)
	if err != nil {
		fmt.Printf("❌ 数据表校验失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ 武器 %d 种，敌人 %d 种，名单 %d 项\n",
		len(tables.Weapons), len(tables.Enemies), len(tables.Roster))

	result := balance.NewAnalytics(tables, balance.NewCache()).ValidateBalance()
	for _, w := range result.Warnings {
		fmt.Printf("⚠️  %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Printf("❌ %s\n", e)
	}

	if !result.Valid {
		fmt.Printf("❌ 平衡校验未通过：%d 个错误\n", len(result.Errors))
		os.Exit(1)
	}
	fmt.Printf("✅ 平衡校验通过（%d 条规则）\n", len(tables.Validation))

	if !scanWaveFeasibility(tables) {
		os.Exit(1)
	}
}

// scanWaveFeasibility 以中性倍率编排前 scanWaves 波
// 预算或角色上限无法满足只报警告；生成组总数与波次总数不符时报错
func scanWaveFeasibility(tables *config.BalanceTables) bool {
	session := game.NewBalanceSession(tables, nil)
	session.SetLogger(utils.DiscardLogger())
	composer := session.Composer()

	ok := true
	overBudget, overCaps := 0, 0
	for wave := 1; wave <= scanWaves; wave++ {
		cfg := composer.GenerateWaveConfig(wave)
		if got := cfg.SpawnGroupTotal(); got != cfg.TotalCount {
			fmt.Printf("❌ 第 %d 波生成组总数 %d 与波次总数 %d 不符\n", wave, got, cfg.TotalCount)
			ok = false
		}
		if cfg.Composition.BudgetExceeded {
			overBudget++
		}
		if cfg.Composition.CapsExceeded {
			overCaps++
		}
	}

	if overBudget > 0 {
		fmt.Printf("⚠️  %d 波的威胁预算不足以容纳敌人总数\n", overBudget)
	}
	if overCaps > 0 {
		fmt.Printf("⚠️  %d 波的角色上限不足以容纳敌人总数\n", overCaps)
	}
	if ok {
		fmt.Printf("✅ 前 %d 波编排检查完成\n", scanWaves)
	}
	return ok
}
