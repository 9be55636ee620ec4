package metrics

import (
	"sort"
)

// DetailedStats summarizes a set of metrics with latency percentiles.
type DetailedStats struct {
	// Basic counts
	Count        int `json:"count"`
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`

	// Latency (seconds)
	TotalSeconds float64 `json:"total_seconds"`
	LatencyP50   float64 `json:"latency_p50"`
	LatencyP95   float64 `json:"latency_p95"`
	LatencyP99   float64 `json:"latency_p99"`
	LatencyAvg   float64 `json:"latency_avg"`
	LatencyMin   float64 `json:"latency_min"`
	LatencyMax   float64 `json:"latency_max"`
}

// Stats returns detailed statistics for metrics matching the filter.
func (r *Recorder) Stats(f Filter) *DetailedStats {
	return computeStats(r.List(f, 0))
}

// StageStats returns detailed stats grouped by stage.
func (r *Recorder) StageStats(f Filter) map[string]*DetailedStats {
	byStage := make(map[string][]Metric)
	for _, m := range r.List(f, 0) {
		byStage[m.Stage] = append(byStage[m.Stage], m)
	}

	result := make(map[string]*DetailedStats, len(byStage))
	for stage, ms := range byStage {
		result[stage] = computeStats(ms)
	}
	return result
}

func computeStats(metrics []Metric) *DetailedStats {
	stats := &DetailedStats{Count: len(metrics)}
	if len(metrics) == 0 {
		return stats
	}

	latencies := make([]float64, 0, len(metrics))
	for _, m := range metrics {
		if m.Success {
			stats.SuccessCount++
		} else {
			stats.ErrorCount++
		}
		stats.TotalSeconds += m.Seconds
		latencies = append(latencies, m.Seconds)
	}

	sort.Float64s(latencies)
	stats.LatencyMin = latencies[0]
	stats.LatencyMax = latencies[len(latencies)-1]
	stats.LatencyAvg = stats.TotalSeconds / float64(len(latencies))
	stats.LatencyP50 = percentile(latencies, 50)
	stats.LatencyP95 = percentile(latencies, 95)
	stats.LatencyP99 = percentile(latencies, 99)
	return stats
}

// percentile calculates the p-th percentile from a sorted slice of values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	n := float64(len(sorted))
	idx := (p / 100.0) * (n - 1)

	// Interpolate between floor and ceil indices
	lower := int(idx)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
