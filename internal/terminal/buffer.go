package terminal

import "sync"

// Buffer receives the output lines of a command.
type Buffer interface {
	Add(line string)
}

// RingBuffer keeps the last Cap() lines; adding to a full buffer drops the
// oldest line. It is safe for concurrent use.
type RingBuffer struct {
	mu    sync.Mutex
	lines []string
	start int
	size  int
}

// NewRingBuffer creates a buffer holding at most capacity lines.
// A capacity below 1 is raised to 1.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{lines: make([]string, capacity)}
}

// Add appends line, evicting the oldest line when full.
func (b *RingBuffer) Add(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size < len(b.lines) {
		b.lines[(b.start+b.size)%len(b.lines)] = line
		b.size++
		return
	}
	b.lines[b.start] = line
	b.start = (b.start + 1) % len(b.lines)
}

// Lines returns the buffered lines, oldest first.
func (b *RingBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.lines[(b.start+i)%len(b.lines)]
	}
	return out
}

// Len returns the number of buffered lines.
func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Cap returns the maximum number of lines.
func (b *RingBuffer) Cap() int {
	return len(b.lines)
}

// Clear drops every line.
func (b *RingBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.lines {
		b.lines[i] = ""
	}
	b.start, b.size = 0, 0
}
