package status

import (
	"math"
	"sync/atomic"
	"unicode/utf8"
)

// AtomicFloat is a float64 stored as its IEEE bits
// Zero value reads 0.0
type AtomicFloat struct {
	bits atomic.Uint64
}

func (f *AtomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func (f *AtomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// MaxStringLen caps values kept in an AtomicString
const MaxStringLen = 64

// AtomicString holds a short label, e.g. the last decoded key
// Zero value reads ""
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store replaces the value, cutting it to at most MaxStringLen bytes on a rune boundary
func (s *AtomicString) Store(v string) {
	if len(v) > MaxStringLen {
		cut := MaxStringLen
		for cut > 0 && !utf8.RuneStart(v[cut]) {
			cut--
		}
		v = v[:cut]
	}
	s.ptr.Store(&v)
}

func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
