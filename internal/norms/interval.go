package norms

// FallbackInterval is the ±8 placeholder used when no table interval exists,
// clamped to the composite floor and ceiling.
func FallbackInterval(composite int) Interval {
	lo := composite - fallbackHalfSpan
	if lo < CompositeFloor {
		lo = CompositeFloor
	}
	hi := composite + fallbackHalfSpan
	if hi > CompositeCeiling {
		hi = CompositeCeiling
	}
	return Interval{Lo: float64(lo), Hi: float64(hi), Source: SourceFallback}
}

// Interval returns the confidence interval for a resolved composite: the
// merged table entry when there is one, the fallback otherwise. A nil
// composite has no interval.
func (m MergedTable) Interval(key IndexKey, composite *int) *Interval {
	if composite == nil {
		return nil
	}
	if iv, ok := m.intervals[key][*composite]; ok {
		return &iv
	}
	iv := FallbackInterval(*composite)
	return &iv
}
