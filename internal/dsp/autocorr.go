package dsp

// Autocorrelate returns count-normalized autocorrelation scores for
// lags in [minLag, maxLag]. Index i of the result holds the score for
// lag minLag+i. Lags that do not fit the input are clamped away; an
// empty band yields nil.
func Autocorrelate(values []float64, minLag, maxLag int) []float64 {
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(values) {
		maxLag = len(values) - 1
	}
	if maxLag < minLag {
		return nil
	}

	out := make([]float64, maxLag-minLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		sum := 0.0
		count := 0
		for i := 0; i+lag < len(values); i++ {
			sum += values[i] * values[i+lag]
			count++
		}
		if count > 0 {
			out[lag-minLag] = sum / float64(count)
		}
	}
	return out
}

// Mean returns the arithmetic mean, or zero for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Max returns the largest value and its index, or (0, -1) for empty
// input.
func Max(values []float64) (float64, int) {
	if len(values) == 0 {
		return 0, -1
	}
	best := values[0]
	idx := 0
	for i, v := range values {
		if v > best {
			best = v
			idx = i
		}
	}
	return best, idx
}
