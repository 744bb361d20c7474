package utils

// RingBuffer 固定容量的环形缓冲区
// 写满后按 FIFO 顺序覆盖最旧的条目，内存占用恒定
// 非并发安全：平衡引擎所有调用都在游戏主循环的同一逻辑线程上
type RingBuffer[T any] struct {
	entries    []T
	capacity   int
	head       int   // 下一次写入的位置
	totalAdded int64 // 累计写入数（包含已被淘汰的条目）
}

// NewRingBuffer 创建指定容量的环形缓冲区，容量小于 1 时按 1 处理
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	capacity = max(capacity, 1)
	return &RingBuffer[T]{
		entries:  make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Push 追加一个条目，缓冲区已满时淘汰最旧的条目
func (rb *RingBuffer[T]) Push(entry T) {
	if len(rb.entries) < rb.capacity {
		rb.entries = append(rb.entries, entry)
	} else {
		rb.entries[rb.head] = entry
	}
	rb.head = (rb.head + 1) % rb.capacity
	rb.totalAdded++
}

// TotalAdded 返回累计写入数
func (rb *RingBuffer[T]) TotalAdded() int64 {
	return rb.totalAdded
}

// Items 按从旧到新的顺序返回条目副本
func (rb *RingBuffer[T]) Items() []T {
	out := make([]T, 0, len(rb.entries))
	if len(rb.entries) < rb.capacity {
		return append(out, rb.entries...)
	}
	out = append(out, rb.entries[rb.head:]...)
	return append(out, rb.entries[:rb.head]...)
}

// Last 返回最新的条目
func (rb *RingBuffer[T]) Last() (T, bool) {
	var zero T
	if len(rb.entries) == 0 {
		return zero, false
	}
	idx := (rb.head - 1 + rb.capacity) % rb.capacity
	return rb.entries[idx], true
}
