package status

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricMap_GetReturnsSamePointer(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	a := m.Get("paint.frames")
	b := m.Get("paint.frames")
	require.Same(t, a, b)
	assert.True(t, m.Has("paint.frames"))
	assert.False(t, m.Has("paint.fps"))
	assert.Equal(t, 1, m.Count())
}

func TestMetricMap_ConcurrentGet(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				m.Get("ticks").Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1600), m.Get("ticks").Load())
}

func TestMetricMap_RangeSorted(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	for _, k := range []string{"c", "a", "b"} {
		m.Get(k)
	}
	var keys []string
	m.Range(func(k string, _ *atomic.Int64) { keys = append(keys, k) })
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestAtomicFloat(t *testing.T) {
	var f AtomicFloat
	assert.Zero(t, f.Load())
	f.Store(1.5)
	assert.Equal(t, 1.5, f.Load())
	f.Store(-0.25)
	assert.Equal(t, -0.25, f.Load())
}

func TestAtomicString(t *testing.T) {
	var s AtomicString
	assert.Empty(t, s.Load())
	s.Store("ctrl+c")
	assert.Equal(t, "ctrl+c", s.Load())
	s.Store(strings.Repeat("x", MaxStringLen+10))
	assert.Len(t, s.Load(), MaxStringLen)

	// 63 ASCII bytes leave one byte, a 3-byte rune must not be split
	s.Store(strings.Repeat("x", MaxStringLen-1) + "日本")
	got := s.Load()
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("x", MaxStringLen-1), got)

	s.Store(strings.Repeat("日", 30))
	got = s.Load()
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, 63)
}

func TestRateMeter(t *testing.T) {
	var out AtomicFloat
	m := NewRateMeter(&out, time.Second)

	start := time.Unix(1000, 0)
	assert.False(t, m.Mark(start))

	published := false
	for i := 1; i <= 30; i++ {
		if m.Mark(start.Add(time.Duration(i) * time.Second / 30)) {
			published = true
		}
	}
	require.True(t, published)
	assert.InDelta(t, 30.0, m.Rate(), 0.01)
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get("paint.frames").Store(42)
	r.Floats.Get("paint.fps").Store(59.94)
	r.Bools.Get("paint.overlay").Store(true)
	r.Strings.Get("interact.last_key").Store("q")

	assert.Equal(t, 4, r.TotalCount())
	assert.Equal(t, map[string]string{
		"paint.frames":      "42",
		"paint.fps":         "59.9",
		"paint.overlay":     "true",
		"interact.last_key": "q",
	}, r.Snapshot())
}
