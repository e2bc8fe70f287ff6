package augment

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/RMahshie/pingprep/internal/dataset"
)

// GroupAverage averages two pings of one fish and adds noise. Every sample
// draws from its own generator keyed by a cursor that starts at the seed and
// advances by one per sample, so sample k of a run can be reproduced from
// seed+k alone.
type GroupAverage struct {
	settings
}

// NewGroupAverage creates a group-average augmenter.
func NewGroupAverage(opts ...Option) *GroupAverage {
	return &GroupAverage{settings: newSettings(opts)}
}

// Generate returns count synthetic samples for class. When no individual of
// the class has two or more measurements it returns an empty slice together
// with an InsufficientDataError.
func (g *GroupAverage) Generate(ctx context.Context, ds *dataset.Dataset, class string, count int) ([]dataset.Measurement, error) {
	if err := validateRequest(ds, class, count); err != nil {
		return nil, err
	}

	groups := ds.EligibleGroups(class, 2)
	if len(groups) == 0 {
		log.Warn().Str("class", class).Msg("No groups with at least 2 records")
		return []dataset.Measurement{}, &InsufficientDataError{Class: class, Reason: "no individual has at least 2 measurements"}
	}

	out := make([]dataset.Measurement, 0, g.capacity(count))
	cursor := g.seed
	for k := 0; k < count; k++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if g.maxIterations > 0 && k >= g.maxIterations {
			return out, ErrBudgetExhausted
		}

		sample, err := g.sample(groups, cursor)
		if err != nil {
			return out, err
		}
		out = append(out, sample)
		cursor++
	}

	log.Debug().
		Str("class", class).
		Int("eligible_individuals", len(groups)).
		Uint64("next_cursor", cursor).
		Msg("Group-average augmentation finished")

	return out, nil
}

func (g *GroupAverage) sample(groups []dataset.Group, cursor uint64) (dataset.Measurement, error) {
	src := rand.NewPCG(cursor, groupAverageStream)
	rng := rand.New(src)

	group := groups[rng.IntN(len(groups))]
	i, j := drawPair(rng, len(group.Members))

	sample, err := averaged(group.Members[i], group.Members[j])
	if err != nil {
		return dataset.Measurement{}, fmt.Errorf("failed to average individual %s: %w", group.IndividualID, err)
	}
	addNoise(sample.Numeric, distuv.Normal{Mu: 0, Sigma: g.noiseStd, Src: src})
	return sample, nil
}
