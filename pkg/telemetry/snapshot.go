// Package telemetry 定义平衡引擎读取的玩家表现快照
//
// 滚动窗口统计由外部的遥测模块负责，这里只约定快照结构和读取接口。
package telemetry

// Snapshot 近期（约30秒滚动窗口）玩家表现快照
type Snapshot struct {
	Accuracy                float64 // 命中率 0..1
	DamageTakenPerMinute    float64
	KillsPerMinute          float64
	CurrentHealthPercent    float64 // 当前生命百分比 0..1
	NearDeathCount          int     // 窗口内濒死次数
	SurvivalTimeSeconds     float64
	AverageWaveClearSeconds float64
}

// Source 快照来源
// 实现方保证每个波次边界前至少刷新一次，读取方视为只读
type Source interface {
	Snapshot() Snapshot
}

// SourceFunc 把函数适配为 Source
type SourceFunc func() Snapshot

// Snapshot 实现 Source
func (f SourceFunc) Snapshot() Snapshot {
	return f()
}

// StaticSource 返回固定快照的来源，调试工具和测试使用
type StaticSource struct {
	Current Snapshot
}

// NewStaticSource 创建固定快照来源
func NewStaticSource(s Snapshot) *StaticSource {
	return &StaticSource{Current: s}
}

// Snapshot 实现 Source
func (s *StaticSource) Snapshot() Snapshot {
	return s.Current
}

// Set 替换当前快照
func (s *StaticSource) Set(snap Snapshot) {
	s.Current = snap
}
