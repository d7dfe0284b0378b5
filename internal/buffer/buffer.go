package buffer

// Buffer accumulates bytes of a single segment (e.g. a line) up to a limit. Memory is kept
// between segments, so reading many short lines doesn't allocate over and over again.
type Buffer struct {
	memory  []byte
	maxSize int
}

func New(initialSize, maxSize int) *Buffer {
	return &Buffer{
		memory:  make([]byte, 0, initialSize),
		maxSize: maxSize,
	}
}

// AppendByte writes a single byte, checking whether it won't exceed the limit. If it does,
// the byte is discarded and false is returned.
func (b *Buffer) AppendByte(c byte) (ok bool) {
	if len(b.memory)+1 > b.maxSize {
		return false
	}

	b.memory = append(b.memory, c)
	return true
}

// Len returns the length of the current segment.
func (b *Buffer) Len() int {
	return len(b.memory)
}

// Finish completes current segment, returning its copy as a string, and starts a new one.
func (b *Buffer) Finish() string {
	segment := string(b.memory)
	b.Clear()

	return segment
}

// Clear discards current segment.
func (b *Buffer) Clear() {
	b.memory = b.memory[:0]
}
