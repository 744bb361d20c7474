package balance

import (
	"fmt"
	"math"

	"github.com/decker502/horde/pkg/config"
)

// ValidationResult 平衡校验结果
// 越界指标以数据形式报告，从不以错误返回
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) add(severity, msg string) {
	if severity == config.SeverityWarning {
		r.Warnings = append(r.Warnings, msg)
		return
	}
	r.Errors = append(r.Errors, msg)
}

// ValidateBalance 按校验表重新推导所有 TTK/TTC 并检查是否落在接受区间内
// 用作回归门禁，不在游戏运行时拦截任何行为
func (a *Analytics) ValidateBalance() ValidationResult {
	var result ValidationResult

	for _, rule := range a.tables.Validation {
		value, label, ok := a.evaluateRule(rule, &result)
		if !ok {
			continue
		}
		if math.IsNaN(value) || value < rule.Min || value > rule.Max {
			result.add(rule.Severity, fmt.Sprintf("%s: %s = %s outside [%.2f, %.2f]",
				rule.Name, label, formatSeconds(value), rule.Min, rule.Max))
		}
	}

	for _, id := range a.tables.EnemyIDs() {
		cost := a.Cost(id)
		if cost < 0 || math.IsNaN(cost) {
			result.add(config.SeverityError, fmt.Sprintf("enemy %s: cost %v must be >= 0", id, cost))
		}
	}

	for _, entry := range a.tables.Roster {
		if entry.EnemyType != a.tables.BaselineEnemy && a.Cost(entry.EnemyType) == 0 {
			result.add(config.SeverityWarning, fmt.Sprintf("roster enemy %s has zero cost", entry.EnemyType))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// evaluateRule 计算单条规则的实际值
// 引用未知ID时追加警告并返回 ok=false
func (a *Analytics) evaluateRule(rule config.ValidationRule, result *ValidationResult) (float64, string, bool) {
	if _, ok := a.tables.Enemy(rule.Enemy); !ok {
		result.add(config.SeverityWarning, fmt.Sprintf("%s: unknown enemy %q", rule.Name, rule.Enemy))
		return 0, "", false
	}

	switch rule.Metric {
	case config.MetricTTK:
		if _, ok := a.tables.Weapon(rule.Weapon); !ok {
			result.add(config.SeverityWarning, fmt.Sprintf("%s: unknown weapon %q", rule.Name, rule.Weapon))
			return 0, "", false
		}
		return a.TTK(rule.Enemy, rule.Weapon), fmt.Sprintf("TTK(%s, %s)", rule.Enemy, rule.Weapon), true

	case config.MetricTTC:
		ttc, ok := a.TTCClass(rule.Enemy, rule.DistanceClass)
		if !ok {
			result.add(config.SeverityWarning, fmt.Sprintf("%s: unknown distance class %q", rule.Name, rule.DistanceClass))
			return 0, "", false
		}
		return ttc, fmt.Sprintf("TTC(%s, %s)", rule.Enemy, rule.DistanceClass), true
	}

	result.add(config.SeverityWarning, fmt.Sprintf("%s: unknown metric %q", rule.Name, rule.Metric))
	return 0, "", false
}

// formatSeconds 格式化秒数，无法击杀时显示 ∞
func formatSeconds(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2fs", v)
}
