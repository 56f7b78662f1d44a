// Package apistats keeps rolling latency and error figures for the remote
// APIs the service calls.
package apistats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at       time.Time
	duration time.Duration
	failed   bool
}

// Snapshot aggregates the samples currently inside the window.
type Snapshot struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Window holds the calls made to one remote within a rolling time window.
type Window struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewWindow(maxAge time.Duration) *Window {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Window{
		samples: make([]sample, 0, 64),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds one call. Negative durations count as zero.
func (w *Window) Record(d time.Duration, err error) {
	d = max(d, 0)
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.pruneLocked(now)
	w.samples = append(w.samples, sample{at: now, duration: d, failed: err != nil})
}

func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(w.now())
	if len(w.samples) == 0 {
		return Snapshot{}
	}

	ms := make([]int64, 0, len(w.samples))
	var sum int64
	errs := 0
	for _, s := range w.samples {
		v := s.duration.Milliseconds()
		ms = append(ms, v)
		sum += v
		if s.failed {
			errs++
		}
	}
	slices.Sort(ms)

	return Snapshot{
		Count:  len(ms),
		Errors: errs,
		MinMs:  ms[0],
		MaxMs:  ms[len(ms)-1],
		AvgMs:  float64(sum) / float64(len(ms)),
		P50Ms:  percentile(ms, 50),
		P95Ms:  percentile(ms, 95),
		P99Ms:  percentile(ms, 99),
	}
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	w.samples = slices.DeleteFunc(w.samples, func(s sample) bool { return s.at.Before(cutoff) })
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}

// Registry holds one Window per remote name.
type Registry struct {
	mu      sync.Mutex
	maxAge  time.Duration
	windows map[string]*Window
}

func NewRegistry(maxAge time.Duration) *Registry {
	return &Registry{maxAge: maxAge, windows: make(map[string]*Window)}
}

// Window returns the window for name, creating it on first use.
func (r *Registry) Window(name string) *Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[name]
	if !ok {
		w = NewWindow(r.maxAge)
		r.windows[name] = w
	}
	return w
}

// Observe records a call to name that started at start.
func (r *Registry) Observe(name string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.Window(name).Record(time.Since(start), err)
}

// Snapshot returns the current figures for every remote seen so far.
func (r *Registry) Snapshot() map[string]Snapshot {
	r.mu.Lock()
	names := make([]string, 0, len(r.windows))
	windows := make([]*Window, 0, len(r.windows))
	for name, w := range r.windows {
		names = append(names, name)
		windows = append(windows, w)
	}
	r.mu.Unlock()

	out := make(map[string]Snapshot, len(names))
	for i, name := range names {
		out[name] = windows[i].Snapshot()
	}
	return out
}
