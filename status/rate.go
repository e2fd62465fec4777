package status

import "time"

// DefaultRateWindow is the measurement window of a RateMeter
const DefaultRateWindow = time.Second

// RateMeter measures events per second over fixed windows and publishes the result
// Owned by a single loop; only the published value is shared
type RateMeter struct {
	out    *AtomicFloat
	window time.Duration
	start  time.Time
	count  int
}

// NewRateMeter publishes into out, window <= 0 uses DefaultRateWindow
func NewRateMeter(out *AtomicFloat, window time.Duration) *RateMeter {
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &RateMeter{out: out, window: window}
}

// Mark counts one event at now and publishes the rate once a window closed
// The first mark only opens the window
// Returns true when a new rate was published
func (m *RateMeter) Mark(now time.Time) bool {
	if m.start.IsZero() {
		m.start = now
		return false
	}
	m.count++

	elapsed := now.Sub(m.start)
	if elapsed < m.window {
		return false
	}
	m.out.Store(float64(m.count) / elapsed.Seconds())
	m.start = now
	m.count = 0
	return true
}

// Rate returns the last published value
func (m *RateMeter) Rate() float64 {
	return m.out.Load()
}
