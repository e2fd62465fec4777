package status

import (
	"strconv"
	"sync/atomic"
)

// Registry groups the metric maps shared by the render loops and the host page
// Loops resolve their pointers once at construction; readers may poll at any time
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns the number of registered metrics of every kind
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot formats every metric, used for shutdown logging and the status page
func (r *Registry) Snapshot() map[string]string {
	out := make(map[string]string, r.TotalCount())
	r.Bools.Range(func(k string, v *atomic.Bool) {
		out[k] = strconv.FormatBool(v.Load())
	})
	r.Ints.Range(func(k string, v *atomic.Int64) {
		out[k] = strconv.FormatInt(v.Load(), 10)
	})
	r.Floats.Range(func(k string, v *AtomicFloat) {
		out[k] = strconv.FormatFloat(v.Load(), 'f', 1, 64)
	})
	r.Strings.Range(func(k string, v *AtomicString) {
		out[k] = v.Load()
	})
	return out
}
