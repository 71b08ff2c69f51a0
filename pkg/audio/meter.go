package audio

import "math"

// RMS returns the root mean square of a frame, the raw instantaneous
// volume used for input metering. No smoothing is applied; callers see
// one value per capture tick.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
