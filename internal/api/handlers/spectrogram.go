package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/pingprep/internal/dataset"
	"github.com/RMahshie/pingprep/internal/processing"
	"github.com/RMahshie/pingprep/pkg/models"
)

// SpectrogramHandler serves resampled spectrograms
type SpectrogramHandler struct {
	processingSvc processing.ProcessingService
	defaultSeed   uint64
}

// NewSpectrogramHandler creates a new spectrogram handler
func NewSpectrogramHandler(processingSvc processing.ProcessingService, defaultSeed uint64) *SpectrogramHandler {
	return &SpectrogramHandler{processingSvc: processingSvc, defaultSeed: defaultSeed}
}

// CreateSpectrograms resamples spectrograms for one class of a stored table
func (h *SpectrogramHandler) CreateSpectrograms(ctx context.Context, req *models.CreateSpectrogramsRequest) (*models.CreateSpectrogramsResponse, error) {
	seed := h.defaultSeed
	if req.Body.Seed != nil {
		seed = *req.Body.Seed
	}

	out, err := h.processingSvc.Spectrograms(ctx, processing.SpectrogramRequest{
		InputKey: req.Body.InputKey,
		Class:    req.Body.Class,
		Length:   req.Body.Length,
		Count:    req.Body.Count,
		Seed:     seed,
	})
	if err != nil {
		var insufficient *dataset.InsufficientDataError
		switch {
		case errors.Is(err, processing.ErrDatasetUnavailable):
			return nil, huma.Error404NotFound("Ping table not found", err)
		case errors.Is(err, processing.ErrInvalidDataset):
			return nil, huma.Error422UnprocessableEntity("Ping table could not be used", err)
		case errors.As(err, &insufficient):
			return nil, huma.Error422UnprocessableEntity("Class has no pings", err)
		default:
			return nil, huma.Error400BadRequest("Failed to generate spectrograms", err)
		}
	}

	body := models.CreateSpectrogramsResponseBody{
		Class:        req.Body.Class,
		Spectrograms: make([]models.SpectrogramBody, 0, len(out)),
	}
	for _, s := range out {
		body.Frequencies = s.Frequencies
		body.Spectrograms = append(body.Spectrograms, models.SpectrogramBody{
			IndividualID: s.IndividualID,
			Seed:         s.Seed,
			Rows:         s.Rows(),
		})
	}
	return &models.CreateSpectrogramsResponse{Body: body}, nil
}
