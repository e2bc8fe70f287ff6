// Package augment manufactures synthetic ping measurements for under-
// represented species so that every class reaches a requested size.
//
// Two strategies are available. Pairwise interpolates between two pings of
// one fish with a random blend factor; GroupAverage averages two pings of one
// fish. Both add zero-mean Gaussian noise to every numeric column and copy the
// fish id, species and other non-numeric cells from the first drawn ping.
// Neither strategy touches global random state: all draws come from PCG
// generators built from an explicit seed.
package augment

import (
	"context"
	"errors"
	"fmt"

	"github.com/RMahshie/pingprep/internal/dataset"
)

// Strategy selects how synthetic samples are built.
type Strategy string

const (
	StrategyPairwise     Strategy = "pairwise"
	StrategyGroupAverage Strategy = "group-average"
)

// PCG stream identifiers, so the two strategies never share a sequence for
// the same seed.
const (
	pairwiseStream     = 0x7061697277697365
	groupAverageStream = 0x67726f7570617667
)

// ErrBudgetExhausted is returned when the iteration budget ran out before the
// requested number of samples was produced.
var ErrBudgetExhausted = errors.New("augmentation budget exhausted")

// InsufficientDataError is returned when a class has no individual with at
// least two measurements.
type InsufficientDataError = dataset.InsufficientDataError

// Augmenter produces synthetic measurements for one class.
type Augmenter interface {
	// Generate returns count samples, or the samples produced so far together
	// with an error.
	Generate(ctx context.Context, ds *dataset.Dataset, class string, count int) ([]dataset.Measurement, error)
}

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyPairwise, StrategyGroupAverage:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown augmentation strategy %q", s)
	}
}

// New builds the augmenter for strategy.
func New(strategy Strategy, opts ...Option) (Augmenter, error) {
	switch strategy {
	case StrategyPairwise:
		return NewPairwise(opts...), nil
	case StrategyGroupAverage:
		return NewGroupAverage(opts...), nil
	default:
		return nil, fmt.Errorf("unknown augmentation strategy %q", strategy)
	}
}

type settings struct {
	noiseStd      float64
	seed          uint64
	maxIterations int
	parallelism   int
}

func newSettings(opts []Option) settings {
	s := settings{noiseStd: 1, parallelism: 1}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// maxPrealloc bounds the up-front allocation for a single Generate call;
// larger outputs grow by append.
const maxPrealloc = 4096

// capacity is the initial size of a Generate result. It never exceeds the
// iteration budget, so a huge count with a small budget allocates little.
func (s settings) capacity(count int) int {
	n := min(count, maxPrealloc)
	if s.maxIterations > 0 {
		n = min(n, s.maxIterations)
	}
	return max(n, 0)
}

// Option configures augmenters and the orchestrator.
type Option func(*settings)

// WithNoise sets the standard deviation of the Gaussian noise added to every
// numeric value. Zero disables noise.
func WithNoise(std float64) Option {
	return func(s *settings) {
		s.noiseStd = std
	}
}

// WithSeed sets the seed. GroupAverage treats it as a cursor that advances by
// one per generated sample.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// WithMaxIterations caps the number of generation attempts per call. Zero
// means no cap.
func WithMaxIterations(n int) Option {
	return func(s *settings) {
		s.maxIterations = n
	}
}

// WithParallelism sets how many classes the orchestrator augments at once.
func WithParallelism(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

func validateRequest(ds *dataset.Dataset, class string, count int) error {
	if ds == nil || ds.Schema == nil {
		return errors.New("dataset is required")
	}
	if class == "" {
		return errors.New("class is required")
	}
	if count < 0 {
		return fmt.Errorf("sample count must not be negative, got %d", count)
	}
	return nil
}
