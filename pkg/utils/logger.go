package utils

import (
	"io"

	"github.com/charmbracelet/log"
)

// ComponentLogger 返回带组件前缀的日志器
// 前缀即组件名，对应日志中的 "WaveComposer: ..." 形式
func ComponentLogger(component string) *log.Logger {
	return log.Default().WithPrefix(component)
}

// DiscardLogger 返回丢弃所有输出的日志器，测试中使用
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
