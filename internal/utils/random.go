package utils

import (
	"math"
	"math/rand"
	"time"
)

// RandomDurationMs returns a uniformly random duration in [min, max)
// milliseconds. Used to jitter polling cadences so the tick loop does not
// produce a constant-frequency signal visible in memory-access timing.
func RandomDurationMs(min, max int) time.Duration {
	if max <= min {
		return time.Duration(min) * time.Millisecond
	}
	return time.Duration(min+rand.Intn(max-min)) * time.Millisecond
}

// sampleGamma returns a sample from the Gamma(shape, scale) distribution
// using the Marsaglia-Tsang squeeze method. shape must be >= 1.
func sampleGamma(r *rand.Rand, shape, scale float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := r.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		x2 := x * x
		u := r.Float64()
		if u < 1.0-0.0331*(x2*x2) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x2+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// HumanizedMs scales the requested millisecond value by a multiplier drawn
// from a Gamma(4, 0.25) distribution (mean 1.0), clamped to [0.4, 2.5].
// The right skew resembles empirical human reaction-time data better than
// flat uniform jitter.
func HumanizedMs(r *rand.Rand, milliseconds int) time.Duration {
	const shape = 4.0
	const scale = 0.25
	m := sampleGamma(r, shape, scale)
	if m < 0.4 {
		m = 0.4
	}
	if m > 2.5 {
		m = 2.5
	}
	return time.Duration(float64(milliseconds)*m) * time.Millisecond
}
