// Package scoring coerces untrusted model output into bounded, fully
// populated score objects.
package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	MinScore       = 0.0
	MaxScore       = 5.0
	DefaultScore   = 3.0
	MaxPercent     = 100.0
	maxStringsKept = 8
)

// ClampScore bounds a numeric value to [0,5]. Non-numeric input, including
// NaN, yields fallback.
func ClampScore(value any, fallback float64) float64 {
	f, ok := asNumber(value)
	if !ok {
		return fallback
	}
	return clamp(f, MinScore, MaxScore)
}

// Score is ClampScore with the standard fallback of 3.
func Score(value any) float64 {
	return ClampScore(value, DefaultScore)
}

func clampPercent(value any, fallback float64) float64 {
	f, ok := asNumber(value)
	if !ok {
		return fallback
	}
	return clamp(f, 0, MaxPercent)
}

func clamp(f, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, f))
}

func asNumber(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// asCount reads a non-negative integer count, truncating fractions.
func asCount(value any) int {
	f, ok := asNumber(value)
	if !ok || f <= 0 || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Trunc(f))
}

// asLabel renders a scalar as text. Objects, arrays and missing, empty,
// false or zero values yield fallback.
func asLabel(value any, fallback string) string {
	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		if v == "" {
			return fallback
		}
		return v
	case bool:
		if !v {
			return fallback
		}
		return "true"
	}
	if f, ok := asNumber(value); ok {
		if f == 0 {
			return fallback
		}
		return fmt.Sprint(f)
	}
	return fallback
}

// NormalizeStrings keeps non-blank strings, trimmed, up to eight. Non-array
// input returns a copy of fallback.
func NormalizeStrings(value any, fallback []string) []string {
	items, ok := value.([]any)
	if !ok {
		if typed, isStrings := value.([]string); isStrings {
			items = make([]any, len(typed))
			for i, s := range typed {
				items[i] = s
			}
		} else {
			return append([]string{}, fallback...)
		}
	}
	out := make([]string, 0, min(len(items), maxStringsKept))
	for _, item := range items {
		s, isString := item.(string)
		if !isString {
			continue
		}
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxStringsKept {
			break
		}
	}
	return out
}

// filterStrings keeps string entries of an array without trimming or capping.
func filterStrings(value any) []string {
	out := []string{}
	items, ok := value.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, isString := item.(string); isString {
			out = append(out, s)
		}
	}
	return out
}
