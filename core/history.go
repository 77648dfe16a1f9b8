package core

// History is the linear undo stack.  Push stores an independent deep copy so
// snapshots survive later mutation of the live buffer; Pop is LIFO.
//
// A limit of 0 keeps every snapshot (unbounded, matching the classic
// behaviour); a positive limit evicts the oldest snapshot on overflow to
// bound memory on large images.
type History struct {
	stack []*PixelBuffer
	limit int
}

// NewHistory creates a history capped at limit snapshots (0 = unbounded).
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Push appends a deep copy of buf as the newest snapshot.
func (h *History) Push(buf *PixelBuffer) {
	h.stack = append(h.stack, buf.Clone())
	if h.limit > 0 && len(h.stack) > h.limit {
		// Drop the oldest; shift rather than re-slice so the backing array
		// does not pin evicted snapshots.
		copy(h.stack, h.stack[1:])
		h.stack[len(h.stack)-1] = nil
		h.stack = h.stack[:len(h.stack)-1]
	}
}

// Pop removes and returns the most recent snapshot.  ok is false when the
// history is empty; the stack is left unchanged in that case.
func (h *History) Pop() (buf *PixelBuffer, ok bool) {
	if len(h.stack) == 0 {
		return nil, false
	}
	last := len(h.stack) - 1
	buf = h.stack[last]
	h.stack[last] = nil
	h.stack = h.stack[:last]
	return buf, true
}

// Len returns the current snapshot count.
func (h *History) Len() int { return len(h.stack) }
