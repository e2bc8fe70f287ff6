package augment

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/RMahshie/pingprep/internal/dataset"
)

// Pairwise interpolates between two pings of one fish with a random blend
// factor drawn uniformly from [0,1).
type Pairwise struct {
	settings
}

// NewPairwise creates a pairwise interpolation augmenter.
func NewPairwise(opts ...Option) *Pairwise {
	return &Pairwise{settings: newSettings(opts)}
}

// Generate returns count synthetic samples for class. Individuals are drawn
// uniformly from those with at least two measurements; a class without any
// fails immediately with an InsufficientDataError.
func (p *Pairwise) Generate(ctx context.Context, ds *dataset.Dataset, class string, count int) ([]dataset.Measurement, error) {
	if err := validateRequest(ds, class, count); err != nil {
		return nil, err
	}

	groups := ds.EligibleGroups(class, 2)
	if len(groups) == 0 {
		return nil, &InsufficientDataError{Class: class, Reason: "no individual has at least 2 measurements"}
	}

	src := rand.NewPCG(p.seed, pairwiseStream)
	rng := rand.New(src)
	noise := distuv.Normal{Mu: 0, Sigma: p.noiseStd, Src: src}

	out := make([]dataset.Measurement, 0, p.capacity(count))
	for iteration := 0; len(out) < count; iteration++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if p.maxIterations > 0 && iteration >= p.maxIterations {
			return out, ErrBudgetExhausted
		}

		group := groups[rng.IntN(len(groups))]
		i, j := drawPair(rng, len(group.Members))
		lambda := rng.Float64()

		sample, err := interpolated(group.Members[i], group.Members[j], lambda)
		if err != nil {
			return out, fmt.Errorf("failed to interpolate individual %s: %w", group.IndividualID, err)
		}
		addNoise(sample.Numeric, noise)
		out = append(out, sample)
	}

	log.Debug().
		Str("class", class).
		Int("eligible_individuals", len(groups)).
		Int("produced", len(out)).
		Msg("Pairwise augmentation finished")

	return out, nil
}
