package pipeline

import (
	"slices"
	"sync"
	"time"
)

// StatsSnapshot summarizes the resolve durations still inside the window.
// Durations are reported in fractional milliseconds; most documents resolve
// well under one.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	Window string  `json:"window"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

type latency struct {
	at time.Time
	d  time.Duration
}

// LatencyStats keeps per-document resolve durations over a rolling window.
// Samples arrive in time order, so expiry only trims the front.
type LatencyStats struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	samples []latency
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window, now: time.Now}
}

// Record adds one resolve duration. Negative durations count as zero.
func (s *LatencyStats) Record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)
	s.samples = append(s.samples, latency{at: now, d: max(d, 0)})
}

func (s *LatencyStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expire(s.now())
	ds := make([]time.Duration, len(s.samples))
	for i, l := range s.samples {
		ds[i] = l.d
	}
	s.mu.Unlock()

	snap := StatsSnapshot{Count: len(ds), Window: s.window.String()}
	if len(ds) == 0 {
		return snap
	}
	slices.Sort(ds)

	var total time.Duration
	for _, d := range ds {
		total += d
	}
	snap.MinMs = ms(ds[0])
	snap.MaxMs = ms(ds[len(ds)-1])
	snap.AvgMs = ms(total) / float64(len(ds))
	snap.P50Ms = ms(percentile(ds, 50))
	snap.P95Ms = ms(percentile(ds, 95))
	snap.P99Ms = ms(percentile(ds, 99))
	return snap
}

func (s *LatencyStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	i, _ := slices.BinarySearchFunc(s.samples, cutoff, func(l latency, t time.Time) int {
		return l.at.Compare(t)
	})
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

// percentile interpolates between the two nearest ranks of sorted.
func percentile(sorted []time.Duration, pct float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	pos := float64(len(sorted)-1) * min(max(pct, 0), 100) / 100
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + time.Duration(frac*float64(sorted[lo+1]-sorted[lo]))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
