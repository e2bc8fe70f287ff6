package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/pingprep/internal/augment"
	"github.com/RMahshie/pingprep/internal/processing"
	"github.com/RMahshie/pingprep/internal/repository"
	"github.com/RMahshie/pingprep/internal/storage"
	"github.com/RMahshie/pingprep/pkg/models"
)

// Defaults fill in run settings a request leaves out
type Defaults struct {
	Strategy augment.Strategy
	NoiseStd float64
	Seed     uint64
}

// AugmentationHandler handles augmentation-related HTTP requests
type AugmentationHandler struct {
	repo          repository.RunRepository
	store         storage.ObjectStore
	processingSvc processing.ProcessingService
	defaults      Defaults

	inflight sync.WaitGroup
}

// NewAugmentationHandler creates a new augmentation handler
func NewAugmentationHandler(repo repository.RunRepository, store storage.ObjectStore, processingSvc processing.ProcessingService, defaults Defaults) *AugmentationHandler {
	return &AugmentationHandler{
		repo:          repo,
		store:         store,
		processingSvc: processingSvc,
		defaults:      defaults,
	}
}

// Wait blocks until every background run started by this handler returns
func (h *AugmentationHandler) Wait() {
	h.inflight.Wait()
}

// CreateUpload returns a pre-signed URL for uploading a ping table
func (h *AugmentationHandler) CreateUpload(ctx context.Context, req *models.CreateUploadRequest) (*models.CreateUploadResponse, error) {
	key := fmt.Sprintf("datasets/%s.csv", uuid.New())

	uploadURL, err := h.store.GenerateUploadURL(ctx, key, storage.ContentTypeCSV)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to prepare upload. Please try again.", err)
	}

	log.Info().Str("key", key).Int64("fileSize", req.Body.FileSize).Msg("Upload URL generated")
	return &models.CreateUploadResponse{
		Body: models.CreateUploadResponseBody{
			Key:       key,
			UploadURL: uploadURL,
			ExpiresIn: int(storage.UploadURLExpiry.Seconds()),
		},
	}, nil
}

// CreateAugmentation records a run and starts processing it in the background
func (h *AugmentationHandler) CreateAugmentation(ctx context.Context, req *models.CreateAugmentationRequest) (*models.CreateAugmentationResponse, error) {
	strategy := h.defaults.Strategy
	if req.Body.Strategy != "" {
		s, err := augment.ParseStrategy(req.Body.Strategy)
		if err != nil {
			return nil, huma.Error400BadRequest("Unknown augmentation strategy", err)
		}
		strategy = s
	}

	noise := h.defaults.NoiseStd
	if req.Body.NoiseStd != nil {
		noise = *req.Body.NoiseStd
	}
	if noise < 0 {
		return nil, huma.Error400BadRequest("Noise standard deviation must not be negative", nil)
	}

	seed := h.defaults.Seed
	if req.Body.Seed != nil {
		seed = *req.Body.Seed
	}

	if len(req.Body.Targets) > 0 && req.Body.Balance > 0 {
		return nil, huma.Error400BadRequest("Use either targets or balance, not both", nil)
	}
	targets, err := toTargets(req.Body.Targets)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid targets", err)
	}

	runID := uuid.New()
	now := time.Now()
	run := &models.Run{
		ID:        runID.String(),
		Status:    models.StatusPending,
		InputKey:  req.Body.InputKey,
		Strategy:  string(strategy),
		NoiseStd:  noise,
		Seed:      seed,
		Targets:   targets,
		Balance:   req.Body.Balance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.Create(ctx, run); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create augmentation run", err)
	}
	log.Info().Str("runID", run.ID).Str("strategy", run.Strategy).Str("inputKey", run.InputKey).Msg("Augmentation run created")

	// Start processing in background (don't wait for completion)
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		if err := h.processingSvc.ProcessRun(context.Background(), runID); err != nil {
			log.Error().Err(err).Str("runID", runID.String()).Msg("Background augmentation failed")
		}
	}()

	resp := &models.CreateAugmentationResponse{Status: http.StatusAccepted}
	resp.Body.ID = run.ID
	resp.Body.Status = run.Status
	return resp, nil
}

// GetAugmentation returns the status and report of a run
func (h *AugmentationHandler) GetAugmentation(ctx context.Context, req *models.GetAugmentationRequest) (*models.GetAugmentationResponse, error) {
	run, err := h.lookup(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &models.GetAugmentationResponse{Body: toBody(run)}, nil
}

// ListAugmentations returns recent runs, newest first
func (h *AugmentationHandler) ListAugmentations(ctx context.Context, req *models.ListAugmentationsRequest) (*models.ListAugmentationsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	runs, err := h.repo.List(ctx, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list augmentation runs", err)
	}

	resp := &models.ListAugmentationsResponse{}
	resp.Body.Runs = make([]models.AugmentationBody, 0, len(runs))
	for _, run := range runs {
		resp.Body.Runs = append(resp.Body.Runs, toBody(run))
	}
	return resp, nil
}

// DownloadAugmentation returns a pre-signed URL for the augmented table
func (h *AugmentationHandler) DownloadAugmentation(ctx context.Context, req *models.DownloadAugmentationRequest) (*models.DownloadAugmentationResponse, error) {
	run, err := h.lookup(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if run.Status != models.StatusCompleted || run.OutputKey == nil {
		return nil, huma.Error409Conflict("Augmentation not yet completed",
			fmt.Errorf("run status is %s", run.Status))
	}

	url, err := h.store.GenerateDownloadURL(ctx, *run.OutputKey)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate download URL", err)
	}

	resp := &models.DownloadAugmentationResponse{}
	resp.Body.DownloadURL = url
	resp.Body.ExpiresIn = int(storage.DownloadURLExpiry.Seconds())
	return resp, nil
}

func (h *AugmentationHandler) lookup(ctx context.Context, rawID string) (*models.Run, error) {
	runID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid run ID", err)
	}
	run, err := h.repo.GetByID(ctx, runID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, huma.Error404NotFound("Augmentation run not found", err)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load augmentation run", err)
	}
	return run, nil
}

func toTargets(in []models.TargetInput) ([]augment.Target, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]augment.Target, len(in))
	seen := make(map[string]bool, len(in))
	for i, t := range in {
		if t.Class == "" {
			return nil, errors.New("target class is required")
		}
		if t.Count < 0 {
			return nil, fmt.Errorf("count for class %s must not be negative", t.Class)
		}
		if seen[t.Class] {
			return nil, fmt.Errorf("duplicate target for class %s", t.Class)
		}
		seen[t.Class] = true
		out[i] = augment.Target{Class: t.Class, Count: t.Count}
	}
	return out, nil
}

func toBody(run *models.Run) models.AugmentationBody {
	return models.AugmentationBody{
		ID:          run.ID,
		Status:      run.Status,
		Progress:    run.Progress,
		Message:     statusMessage(run.Status, run.Progress),
		Strategy:    run.Strategy,
		Targets:     run.Targets,
		Report:      run.Report,
		Error:       run.ErrorMsg,
		CreatedAt:   run.CreatedAt,
		CompletedAt: run.CompletedAt,
	}
}

// statusMessage creates a human-readable status message
func statusMessage(status string, progress int) string {
	switch status {
	case models.StatusPending:
		return "Augmentation queued for processing..."
	case models.StatusProcessing:
		if progress < 30 {
			return "Loading ping table..."
		} else if progress < 70 {
			return "Generating synthetic pings..."
		}
		return "Uploading augmented table..."
	case models.StatusCompleted:
		return "Augmentation complete!"
	case models.StatusFailed:
		return "Augmentation failed."
	default:
		return "Unknown status"
	}
}
