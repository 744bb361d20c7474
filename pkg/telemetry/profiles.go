package telemetry

// 典型表现快照，调试工具注入用

// StrugglingProfile 吃力玩家：命中低、掉血快、残血
func StrugglingProfile() Snapshot {
	return Snapshot{
		Accuracy:                0.15,
		DamageTakenPerMinute:    90,
		KillsPerMinute:          5,
		CurrentHealthPercent:    0.2,
		NearDeathCount:          3,
		SurvivalTimeSeconds:     120,
		AverageWaveClearSeconds: 110,
	}
}

// NeutralProfile 表现正常
func NeutralProfile() Snapshot {
	return Snapshot{
		Accuracy:                0.4,
		DamageTakenPerMinute:    35,
		KillsPerMinute:          18,
		CurrentHealthPercent:    0.6,
		NearDeathCount:          0,
		SurvivalTimeSeconds:     300,
		AverageWaveClearSeconds: 60,
	}
}

// DominatingProfile 碾压玩家：高命中、几乎不掉血
func DominatingProfile() Snapshot {
	return Snapshot{
		Accuracy:                0.8,
		DamageTakenPerMinute:    5,
		KillsPerMinute:          45,
		CurrentHealthPercent:    0.95,
		NearDeathCount:          0,
		SurvivalTimeSeconds:     600,
		AverageWaveClearSeconds: 20,
	}
}
