package gateway

import "sync"

type historyEntry struct {
	Seq  int64
	Data []byte // pre-built envelope JSON
}

// History is a fixed-size circular buffer of recent verdict envelopes, used
// to backfill clients that reconnect with the last seq they saw.
//
// Thread-safe for concurrent writes and reads.
type History struct {
	mu   sync.RWMutex
	buf  []historyEntry
	cap  int
	pos  int // next write position
	full bool
}

// NewHistory creates a buffer holding up to capacity envelopes.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 64
	}
	return &History{
		buf: make([]historyEntry, capacity),
		cap: capacity,
	}
}

// Push appends an envelope, overwriting the oldest when full.
func (h *History) Push(seq int64, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)

	h.buf[h.pos] = historyEntry{Seq: seq, Data: cp}
	h.pos = (h.pos + 1) % h.cap
	if h.pos == 0 && !h.full {
		h.full = true
	}
}

// Since returns the envelopes with seq > after, oldest first.
func (h *History) Since(after int64) [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out [][]byte
	for i := 0; i < h.len(); i++ {
		e := h.buf[h.index(i)]
		if e.Seq > after {
			out = append(out, e.Data)
		}
	}
	return out
}

// Latest returns the newest envelope, or nil when empty.
func (h *History) Latest() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.len() == 0 {
		return nil
	}
	return h.buf[h.index(h.len()-1)].Data
}

// Len returns the number of envelopes held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.len()
}

func (h *History) len() int {
	if h.full {
		return h.cap
	}
	return h.pos
}

// index converts a logical index (0 = oldest) to a physical buffer index.
func (h *History) index(logical int) int {
	if h.full {
		return (h.pos + logical) % h.cap
	}
	return logical
}
