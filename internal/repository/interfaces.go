package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/RMahshie/pingprep/internal/augment"
	"github.com/RMahshie/pingprep/pkg/models"
)

// ErrNotFound is returned when a run does not exist
var ErrNotFound = errors.New("run not found")

// RunRepository defines the interface for augmentation run operations
type RunRepository interface {
	Create(ctx context.Context, run *models.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Run, error)
	List(ctx context.Context, limit int) ([]*models.Run, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreReport(ctx context.Context, id uuid.UUID, outputKey string, report *augment.Report) error
}
