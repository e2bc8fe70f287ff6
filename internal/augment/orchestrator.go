package augment

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/RMahshie/pingprep/internal/dataset"
)

// Target is the number of synthetic samples requested for one class.
type Target struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

// FixedTargets requests n samples for each class.
func FixedTargets(classes []string, n int) []Target {
	out := make([]Target, len(classes))
	for i, c := range classes {
		out[i] = Target{Class: c, Count: n}
	}
	return out
}

// BalanceTargets requests enough samples to bring every class of ds up to
// total rows. Classes already at or above total get zero.
func BalanceTargets(ds *dataset.Dataset, total int) []Target {
	counts := ds.ClassCounts()
	var out []Target
	for _, class := range ds.Classes() {
		out = append(out, Target{Class: class, Count: max(total-counts[class], 0)})
	}
	return out
}

// Result is an augmented dataset and the per-class production report.
type Result struct {
	Dataset *dataset.Dataset
	Report  Report
}

// Orchestrator augments several classes and merges the synthetic samples
// with the source dataset.
type Orchestrator struct {
	strategy Strategy
	settings settings
}

// NewOrchestrator creates an orchestrator for strategy.
func NewOrchestrator(strategy Strategy, opts ...Option) (*Orchestrator, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}
	return &Orchestrator{strategy: strategy, settings: newSettings(opts)}, nil
}

// Run produces the synthetic samples for every target and returns the source
// rows followed by the synthetic rows in target order.
//
// Each class owns the seed range [cursor, cursor+count), assigned in target
// order from the orchestrator seed, so the output does not depend on how
// many classes run in parallel. A class without eligible individuals or one
// that exhausts its budget is reported, not failed. Context cancellation and
// malformed ping times fail the run.
func (o *Orchestrator) Run(ctx context.Context, ds *dataset.Dataset, targets []Target) (*Result, error) {
	if ds == nil || ds.Schema == nil {
		return nil, errors.New("dataset is required")
	}
	if err := validateTargets(targets); err != nil {
		return nil, err
	}

	cursors := make([]uint64, len(targets))
	next := o.settings.seed
	for i, t := range targets {
		cursors[i] = next
		next += uint64(t.Count)
	}

	produced := make([][]dataset.Measurement, len(targets))
	reasons := make([]error, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.settings.parallelism)
	for i, t := range targets {
		g.Go(func() error {
			aug, err := New(o.strategy,
				WithNoise(o.settings.noiseStd),
				WithSeed(cursors[i]),
				WithMaxIterations(o.settings.maxIterations),
			)
			if err != nil {
				return err
			}

			samples, err := aug.Generate(gctx, ds, t.Class, t.Count)
			var insufficient *InsufficientDataError
			switch {
			case err == nil:
			case errors.As(err, &insufficient), errors.Is(err, ErrBudgetExhausted):
				reasons[i] = err
			default:
				return fmt.Errorf("failed to augment class %s: %w", t.Class, err)
			}
			produced[i] = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := Report{SourceRows: ds.Len()}
	var synthetic []dataset.Measurement
	for i, t := range targets {
		entry := ClassReport{Class: t.Class, Requested: t.Count, Produced: len(produced[i])}
		if entry.Produced < entry.Requested {
			reason := "unknown"
			if reasons[i] != nil {
				reason = reasons[i].Error()
			}
			entry.Warning = &PartialProductionWarning{
				Class:     t.Class,
				Requested: t.Count,
				Produced:  entry.Produced,
				Reason:    reason,
			}
			log.Warn().
				Str("class", t.Class).
				Int("requested", t.Count).
				Int("produced", entry.Produced).
				Str("reason", reason).
				Msg("Class produced fewer synthetic samples than requested")
		} else {
			log.Info().
				Str("class", t.Class).
				Int("produced", entry.Produced).
				Msg("Class augmented")
		}
		report.Classes = append(report.Classes, entry)
		synthetic = append(synthetic, produced[i]...)
	}
	report.SyntheticRows = len(synthetic)
	report.TotalRows = report.SourceRows + report.SyntheticRows

	return &Result{Dataset: ds.Append(synthetic...), Report: report}, nil
}

func validateTargets(targets []Target) error {
	seen := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if t.Class == "" {
			return errors.New("target class is required")
		}
		if t.Count < 0 {
			return fmt.Errorf("target count for class %s must not be negative", t.Class)
		}
		if _, ok := seen[t.Class]; ok {
			return fmt.Errorf("duplicate target for class %s", t.Class)
		}
		seen[t.Class] = struct{}{}
	}
	return nil
}
