package metrics

import (
	"math"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// LatencySnapshot summarizes successful LLM calls for the status endpoint.
type LatencySnapshot struct {
	Total int64   `json:"total"`
	P50Ms float64 `json:"p50_ms"`
	P90Ms float64 `json:"p90_ms"`
	P95Ms float64 `json:"p95_ms"`
}

// SnapshotLLMLatency aggregates the latency histogram across providers,
// keeping only status="ok".
func SnapshotLLMLatency(gatherer prometheus.Gatherer) LatencySnapshot {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return LatencySnapshot{}
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == LLMLatencyMetric {
			family = mf
			break
		}
	}
	if family == nil {
		return LatencySnapshot{}
	}

	cumulativeByUpper := map[float64]uint64{}
	var total uint64
	for _, metric := range family.Metric {
		if metric == nil || !hasLabel(metric, "status", "ok") {
			continue
		}
		h := metric.GetHistogram()
		if h == nil {
			continue
		}
		total += h.GetSampleCount()
		for _, b := range h.Bucket {
			if b != nil {
				cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
			}
		}
	}
	if total == 0 {
		return LatencySnapshot{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	return LatencySnapshot{
		Total: int64(total),
		P50Ms: quantile(0.50, total, uppers, cumulativeByUpper) * 1000,
		P90Ms: quantile(0.90, total, uppers, cumulativeByUpper) * 1000,
		P95Ms: quantile(0.95, total, uppers, cumulativeByUpper) * 1000,
	}
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, lp := range metric.Label {
		if lp != nil && lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

// quantile linearly interpolates within the bucket holding the target rank.
// Samples past the last finite bucket report that bucket's bound.
func quantile(q float64, total uint64, uppers []float64, cumulative map[float64]uint64) float64 {
	if len(uppers) == 0 {
		return 0
	}
	target := q * float64(total)
	var prevUpper, prevCum float64
	for _, upper := range uppers {
		cum := float64(cumulative[upper])
		if cum < target {
			prevUpper, prevCum = upper, cum
			continue
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}
		inBucket := cum - prevCum
		if inBucket <= 0 {
			return upper
		}
		fraction := math.Min(1, math.Max(0, (target-prevCum)/inBucket))
		return prevUpper + fraction*(upper-prevUpper)
	}
	return prevUpper
}
