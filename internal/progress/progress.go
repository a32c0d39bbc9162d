// Package progress renders transfer progress for interactive CLI use.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Meter tracks bytes moved during a single transfer and periodically
// redraws a status line. It implements io.Writer so it can sit inside
// an io.MultiWriter or io.TeeReader chain. A zero or negative total
// means the size is unknown and only the byte count is shown.
type Meter struct {
	out   io.Writer
	label string
	total int64

	mu    sync.Mutex
	done  int64
	start time.Time
	last  time.Time
}

// redrawInterval throttles terminal updates
const redrawInterval = 100 * time.Millisecond

// NewMeter creates a meter writing its status line to out
func NewMeter(out io.Writer, label string, total int64) *Meter {
	now := time.Now()
	return &Meter{out: out, label: label, total: total, start: now, last: now}
}

// Write implements io.Writer. It never fails; rendering errors are
// swallowed so a broken status stream cannot abort a transfer.
func (m *Meter) Write(p []byte) (int, error) {
	m.mu.Lock()
	m.done += int64(len(p))
	if time.Since(m.last) >= redrawInterval {
		m.last = time.Now()
		m.render(false)
	}
	m.mu.Unlock()
	return len(p), nil
}

// Done returns the number of bytes counted so far
func (m *Meter) Done() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Finish draws the final status line and terminates it with a newline
func (m *Meter) Finish() {
	m.mu.Lock()
	m.render(true)
	m.mu.Unlock()
}

func (m *Meter) render(final bool) {
	elapsed := time.Since(m.start).Seconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(m.done) / elapsed
	}

	if m.total > 0 {
		pct := float64(m.done) / float64(m.total) * 100
		if pct > 100 {
			pct = 100
		}
		fmt.Fprintf(m.out, "\r%s: %s / %s (%5.1f%%) %s",
			m.label, FormatBytes(m.done), FormatBytes(m.total), pct, FormatSpeed(speed))
	} else {
		fmt.Fprintf(m.out, "\r%s: %s %s", m.label, FormatBytes(m.done), FormatSpeed(speed))
	}
	if final {
		fmt.Fprintln(m.out)
	}
}

// FormatBytes formats a byte count for humans
func FormatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case n >= gb:
		return fmt.Sprintf("%.1f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// FormatSpeed formats a transfer rate
func FormatSpeed(bytesPerSecond float64) string {
	return FormatBytes(int64(bytesPerSecond)) + "/s"
}
