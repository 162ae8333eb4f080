package domain

// backfill replaces each null with the next known value after it.
// Trailing nulls have nothing to propagate and stay null.
func backfill(vals []*float64) []*float64 {
	out := make([]*float64, len(vals))
	var next *float64
	for i := len(vals) - 1; i >= 0; i-- {
		if vals[i] != nil {
			next = vals[i]
		}
		if next != nil {
			out[i] = Float(*next)
		}
	}
	return out
}

// interpolateLinear fills nulls by linear interpolation between the nearest
// known neighbours, treating positions as equally spaced. Leading nulls stay
// null; trailing nulls take the last known value.
func interpolateLinear(vals []*float64) []*float64 {
	out := make([]*float64, len(vals))
	prev := -1
	for i, v := range vals {
		if v == nil {
			continue
		}
		out[i] = Float(*v)
		if prev >= 0 && i-prev > 1 {
			lo, hi := *vals[prev], *v
			for j := prev + 1; j < i; j++ {
				frac := float64(j-prev) / float64(i-prev)
				out[j] = Float(lo + (hi-lo)*frac)
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < len(vals); j++ {
			out[j] = Float(*vals[prev])
		}
	}
	return out
}

// fillGaps applies backward fill then linear interpolation. The order matters:
// when real data sits only at one end of the year, backward fill decides
// which values are copied before interpolation sees them.
func fillGaps(vals []*float64) []*float64 {
	return interpolateLinear(backfill(vals))
}
