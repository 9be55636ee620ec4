package metrics

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultCapacity bounds how many metrics a Recorder keeps.
const DefaultCapacity = 10000

// Recorder keeps the most recent metrics in memory. It is safe for
// concurrent use; a nil Recorder drops everything.
type Recorder struct {
	mu       sync.RWMutex
	metrics  []Metric
	capacity int
}

// NewRecorder creates a recorder holding up to capacity metrics.
// Non-positive capacity uses DefaultCapacity.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{capacity: capacity}
}

// Record stores one metric, evicting the oldest when full.
func (r *Recorder) Record(m Metric) {
	if r == nil {
		return
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.metrics) >= r.capacity {
		n := copy(r.metrics, r.metrics[1:])
		r.metrics = r.metrics[:n]
	}
	r.metrics = append(r.metrics, m)
}

// RecordSince records an operation that started at start and ended with err.
func (r *Recorder) RecordSince(source, stage, item string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.Record(Metric{
		Source:    source,
		Stage:     stage,
		ItemKey:   item,
		Seconds:   time.Since(start).Seconds(),
		Success:   err == nil,
		ErrorType: errorType(err),
	})
}

func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// Filter specifies query filters.
type Filter struct {
	Source  string
	Stage   string
	After   time.Time
	Success *bool // nil = any, true = success only, false = errors only
}

func (f Filter) match(m Metric) bool {
	switch {
	case f.Source != "" && m.Source != f.Source:
		return false
	case f.Stage != "" && m.Stage != f.Stage:
		return false
	case !f.After.IsZero() && !m.CreatedAt.After(f.After):
		return false
	case f.Success != nil && m.Success != *f.Success:
		return false
	}
	return true
}

// List returns matching metrics, oldest first. A positive limit keeps
// only the most recent ones.
func (r *Recorder) List(f Filter, limit int) []Metric {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Metric
	for _, m := range r.metrics {
		if f.match(m) {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Len returns how many metrics are held.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metrics)
}
