package augment

import (
	"math/rand/v2"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/RMahshie/pingprep/internal/dataset"
	"github.com/RMahshie/pingprep/internal/pingtime"
)

// lerpInto writes a + lambda*(b-a) into dst.
func lerpInto(dst, a, b []float64, lambda float64) {
	vecmath.ScaleBlock(dst, a, -1)
	vecmath.AddBlockInPlace(dst, b)
	vecmath.ScaleBlock(dst, dst, lambda)
	vecmath.AddBlockInPlace(dst, a)
}

// meanInto writes (a+b)/2 into dst.
func meanInto(dst, a, b []float64) {
	copy(dst, a)
	vecmath.AddBlockInPlace(dst, b)
	vecmath.ScaleBlock(dst, dst, 0.5)
}

func addNoise(values []float64, noise distuv.Normal) {
	if noise.Sigma == 0 {
		return
	}
	for i := range values {
		values[i] += noise.Rand()
	}
}

// drawPair picks two distinct indexes in [0,n) uniformly. n must be >= 2.
func drawPair(rng *rand.Rand, n int) (int, int) {
	i := rng.IntN(n)
	j := rng.IntN(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

// interpolated builds the sample at blend factor lambda between first and
// second. Identity and categorical cells come from first.
func interpolated(first, second dataset.Measurement, lambda float64) (dataset.Measurement, error) {
	t, err := pingtime.Interpolate(first.PingTime, second.PingTime, lambda)
	if err != nil {
		return dataset.Measurement{}, err
	}
	out := first.Clone()
	out.PingTime = t
	lerpInto(out.Numeric, first.Numeric, second.Numeric, lambda)
	return out, nil
}

// averaged builds the sample halfway between first and second.
func averaged(first, second dataset.Measurement) (dataset.Measurement, error) {
	t, err := pingtime.Midpoint(first.PingTime, second.PingTime)
	if err != nil {
		return dataset.Measurement{}, err
	}
	out := first.Clone()
	out.PingTime = t
	meanInto(out.Numeric, first.Numeric, second.Numeric)
	return out, nil
}
