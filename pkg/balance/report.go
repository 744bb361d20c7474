package balance

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// GenerateBalanceReport 生成可读的平衡报告
// 包含每个武器/敌人的全部推导指标和校验结果，仅用于诊断
func (a *Analytics) GenerateBalanceReport() string {
	var b strings.Builder
	p := message.NewPrinter(language.English)

	weaponIDs := a.tables.WeaponIDs()
	enemyIDs := a.tables.EnemyIDs()
	classIDs := a.tables.DistanceClassIDs()

	p.Fprintf(&b, "=== Balance Report ===\n")
	p.Fprintf(&b, "Baseline enemy: %s\n\n", a.tables.BaselineEnemy)

	p.Fprintf(&b, "-- Weapons --\n")
	p.Fprintf(&b, "%-12s %10s %10s %12s %12s %12s %12s\n",
		"weapon", "dmg/shot", "rawDPS", "empty(ms)", "cycle(ms)", "dmg/cycle", "sustainedDPS")
	for _, id := range weaponIDs {
		w := a.WeaponStats(id)
		p.Fprintf(&b, "%-12s %10.1f %10.2f %12.0f %12.0f %12.1f %12.2f\n",
			id, w.DamagePerShot, w.RawDPS, w.TimeToEmpty, w.CycleTime, w.DamagePerCycle, w.SustainedDPS)
	}

	p.Fprintf(&b, "\n-- Enemies --\n")
	p.Fprintf(&b, "%-12s %-8s %10s %8s %10s %10s %8s\n",
		"enemy", "role", "health", "speed", "recvDPS", "threat", "cost")
	for _, id := range enemyIDs {
		e, _ := a.tables.Enemy(id)
		s := a.EnemyStats(id)
		p.Fprintf(&b, "%-12s %-8s %10.0f %8.1f %10.2f %10.2f %8.3f\n",
			id, string(e.Role), e.Health, e.MoveSpeed, s.ReceivedDPS, s.ThreatScore, s.Cost)
	}

	p.Fprintf(&b, "\n-- Time to kill (s) --\n")
	p.Fprintf(&b, "%-12s", "enemy")
	for _, wid := range weaponIDs {
		p.Fprintf(&b, " %10s", wid)
	}
	b.WriteString("\n")
	for _, id := range enemyIDs {
		s := a.EnemyStats(id)
		p.Fprintf(&b, "%-12s", id)
		for _, wid := range weaponIDs {
			p.Fprintf(&b, " %10s", reportSeconds(p, s.TTKByWeapon[wid]))
		}
		b.WriteString("\n")
	}

	if len(classIDs) > 0 {
		p.Fprintf(&b, "\n-- Time to cross (s) --\n")
		p.Fprintf(&b, "%-12s", "enemy")
		for _, class := range classIDs {
			p.Fprintf(&b, " %10s", p.Sprintf("%s(%.0f)", class, a.tables.DistanceClasses[class]))
		}
		b.WriteString("\n")
		for _, id := range enemyIDs {
			s := a.EnemyStats(id)
			p.Fprintf(&b, "%-12s", id)
			for _, class := range classIDs {
				p.Fprintf(&b, " %10s", reportSeconds(p, s.TTC[class]))
			}
			b.WriteString("\n")
		}
	}

	result := a.ValidateBalance()
	p.Fprintf(&b, "\n-- Validation --\n")
	status := "VALID"
	if !result.Valid {
		status = "INVALID"
	}
	p.Fprintf(&b, "%s (%d errors, %d warnings, %d rules)\n",
		status, len(result.Errors), len(result.Warnings), len(a.tables.Validation))
	for _, e := range result.Errors {
		p.Fprintf(&b, "  ERROR %s\n", e)
	}
	for _, w := range result.Warnings {
		p.Fprintf(&b, "  WARN  %s\n", w)
	}

	return b.String()
}

func reportSeconds(p *message.Printer, v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return p.Sprintf("%.2f", v)
}
