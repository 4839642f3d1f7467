package ensemble

import (
	"math"
	"math/rand"
	"testing"
)

func TestGaussianSampleMoments(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g := gaussian{loc: []float64{2, -1}, scale: 0.3}

	const draws = 20000
	var sum, sumSq [2]float64
	for i := 0; i < draws; i++ {
		sample := g.sample(rng.NormFloat64)
		for c := range sample {
			d := sample[c] - g.loc[c]
			sum[c] += d
			sumSq[c] += d * d
		}
	}

	for c := 0; c < 2; c++ {
		mean := sum[c] / draws
		if math.Abs(mean) > 0.02 {
			t.Fatalf("output %d: sample mean off by %f", c, mean)
		}
		std := math.Sqrt(sumSq[c] / draws)
		if math.Abs(std-g.scale) > 0.02 {
			t.Fatalf("output %d: sample std %f, want %f", c, std, g.scale)
		}
	}
}

func TestGaussianSampleDoesNotAliasLoc(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	loc := []float64{1, 1}
	g := gaussian{loc: loc, scale: 0.5}

	sample := g.sample(rng.NormFloat64)
	sample[0] = 999

	if loc[0] != 1 {
		t.Fatal("sampling must not mutate the distribution's location")
	}
}
