package gateway

import (
	"log/slog"
	"strconv"
	"time"
)

// buildEnvelope wraps a verdict payload:
// {"type":"verdict","data":...,"ts":"...","seq":N}
func buildEnvelope(data []byte, now time.Time, seq int64) []byte {
	buf := make([]byte, 0, len(data)+96)
	buf = append(buf, `{"type":"verdict","data":`...)
	buf = append(buf, data...)
	buf = append(buf, `,"ts":"`...)
	buf = now.AppendFormat(buf, time.RFC3339Nano)
	buf = append(buf, `","seq":`...)
	buf = strconv.AppendInt(buf, seq, 10)
	buf = append(buf, '}')
	return buf
}

// broadcast stamps data with the next seq, records it and fans it out.
// Slow clients whose queue is full miss the message.
func (h *Hub) broadcast(data []byte) int64 {
	h.mu.Lock()
	h.seq++
	seq := h.seq
	buf := buildEnvelope(data, h.now().UTC(), seq)
	h.history.Push(seq, buf)
	for client := range h.clients {
		select {
		case client.send <- buf:
		default:
			h.log.Warn("[gateway] client queue full, dropping verdict", slog.Int64("seq", seq))
		}
	}
	h.mu.Unlock()
	return seq
}
