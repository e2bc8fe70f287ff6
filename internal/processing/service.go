package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/pingprep/internal/augment"
	"github.com/RMahshie/pingprep/internal/dataset"
	"github.com/RMahshie/pingprep/internal/repository"
	"github.com/RMahshie/pingprep/internal/spectrogram"
	"github.com/RMahshie/pingprep/internal/storage"
	"github.com/RMahshie/pingprep/pkg/models"
)

var (
	// ErrDatasetUnavailable means the ping table could not be fetched
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	// ErrInvalidDataset means the ping table could not be parsed
	ErrInvalidDataset = errors.New("invalid dataset")
)

// Options carries the server-wide defaults used when a request leaves a
// setting out
type Options struct {
	Schema            dataset.SchemaOptions
	SamplesPerClass   int
	MaxIterations     int
	Parallelism       int
	SpectrogramLength int
}

// SpectrogramRequest asks for count spectrograms of one class
type SpectrogramRequest struct {
	InputKey string
	Class    string
	Length   int
	Count    int
	Seed     uint64
}

type ProcessingService interface {
	ProcessRun(ctx context.Context, runID uuid.UUID) error
	Spectrograms(ctx context.Context, req SpectrogramRequest) ([]*spectrogram.Spectrogram, error)
}

type processingService struct {
	store      storage.ObjectStore
	repository repository.RunRepository
	opts       Options
}

func NewProcessingService(store storage.ObjectStore, repo repository.RunRepository, opts Options) ProcessingService {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &processingService{
		store:      store,
		repository: repo,
		opts:       opts,
	}
}

// OutputKey is where the augmented table of a run is stored
func OutputKey(runID uuid.UUID) string {
	return fmt.Sprintf("augmented/%s.csv", runID)
}

// ProcessRun augments the run's dataset and uploads the result. Failures
// after the run is loaded are recorded on the run before being returned.
func (s *processingService) ProcessRun(ctx context.Context, runID uuid.UUID) error {
	// Step 1: Update to processing status
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusProcessing, 10); err != nil {
		return err
	}

	// Step 2: Get run details
	run, err := s.repository.GetByID(ctx, runID)
	if err != nil {
		return err
	}

	// Step 3: Download and parse the ping table
	ds, err := s.load(ctx, run.InputKey)
	if err != nil {
		return s.fail(ctx, runID, err)
	}
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusProcessing, 30); err != nil {
		return s.fail(ctx, runID, err)
	}

	// Step 4: Augment
	strategy, err := augment.ParseStrategy(run.Strategy)
	if err != nil {
		return s.fail(ctx, runID, err)
	}
	orchestrator, err := augment.NewOrchestrator(strategy,
		augment.WithNoise(run.NoiseStd),
		augment.WithSeed(run.Seed),
		augment.WithMaxIterations(s.opts.MaxIterations),
		augment.WithParallelism(s.opts.Parallelism),
	)
	if err != nil {
		return s.fail(ctx, runID, err)
	}

	result, err := orchestrator.Run(ctx, ds, s.targets(run, ds))
	if err != nil {
		return s.fail(ctx, runID, fmt.Errorf("augmentation failed: %w", err))
	}
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusProcessing, 70); err != nil {
		return s.fail(ctx, runID, err)
	}

	// Step 5: Upload the augmented table
	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, result.Dataset); err != nil {
		return s.fail(ctx, runID, fmt.Errorf("failed to encode augmented dataset: %w", err))
	}
	key := OutputKey(runID)
	if err := s.store.UploadFile(ctx, key, buf.Bytes(), storage.ContentTypeCSV); err != nil {
		return s.fail(ctx, runID, err)
	}

	// Step 6: Store the report
	if err := s.repository.StoreReport(ctx, runID, key, &result.Report); err != nil {
		return s.fail(ctx, runID, fmt.Errorf("failed to store report: %w", err))
	}
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusCompleted, 100); err != nil {
		return s.fail(ctx, runID, err)
	}

	log.Info().
		Str("runID", runID.String()).
		Int("sourceRows", result.Report.SourceRows).
		Int("syntheticRows", result.Report.SyntheticRows).
		Int("warnings", len(result.Report.Warnings())).
		Msg("Augmentation run completed")

	return nil
}

// Spectrograms resamples count matrices of one class from a stored table
func (s *processingService) Spectrograms(ctx context.Context, req SpectrogramRequest) ([]*spectrogram.Spectrogram, error) {
	length := req.Length
	if length == 0 {
		length = s.opts.SpectrogramLength
	}
	count := req.Count
	if count == 0 {
		count = 1
	}

	ds, err := s.load(ctx, req.InputKey)
	if err != nil {
		return nil, err
	}

	resampler, err := spectrogram.NewResampler(ds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}

	out, err := resampler.GenerateClass(req.Class, length, count, req.Seed)
	if err != nil {
		return nil, err
	}
	for _, sg := range out {
		if sg.HasNaN() {
			return nil, fmt.Errorf("%w: individual %s has empty frequency cells", ErrInvalidDataset, sg.IndividualID)
		}
	}

	log.Info().
		Str("inputKey", req.InputKey).
		Str("class", req.Class).
		Int("length", length).
		Int("count", count).
		Msg("Spectrograms generated")

	return out, nil
}

func (s *processingService) load(ctx context.Context, key string) (*dataset.Dataset, error) {
	data, err := s.store.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}
	ds, err := dataset.ReadCSV(bytes.NewReader(data), s.opts.Schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	return ds, nil
}

// targets resolves the run's request: explicit targets first, then a
// balance total, then the default count for every class.
func (s *processingService) targets(run *models.Run, ds *dataset.Dataset) []augment.Target {
	switch {
	case len(run.Targets) > 0:
		return run.Targets
	case run.Balance > 0:
		return augment.BalanceTargets(ds, run.Balance)
	default:
		return augment.FixedTargets(ds.Classes(), s.opts.SamplesPerClass)
	}
}

func (s *processingService) fail(ctx context.Context, runID uuid.UUID, cause error) error {
	log.Error().Err(cause).Str("runID", runID.String()).Msg("Augmentation run failed")
	if err := s.repository.UpdateError(ctx, runID, cause.Error()); err != nil {
		log.Error().Err(err).Str("runID", runID.String()).Msg("Failed to record run error")
	}
	return cause
}
