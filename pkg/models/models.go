package models

import (
	"time"

	"github.com/RMahshie/pingprep/internal/augment"
)

// Run statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// Run represents one augmentation job (for internal use)
type Run struct {
	ID          string           `json:"id"`
	Status      string           `json:"status"`
	Progress    int              `json:"progress"`
	InputKey    string           `json:"input_key"`
	OutputKey   *string          `json:"output_key,omitempty"`
	Strategy    string           `json:"strategy"`
	NoiseStd    float64          `json:"noise_std"`
	Seed        uint64           `json:"seed"`
	Targets     []augment.Target `json:"targets"`
	Balance     int              `json:"balance,omitempty"`
	Report      *augment.Report  `json:"report,omitempty"`
	ErrorMsg    *string          `json:"error_message,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// Done reports whether the run has reached a final status
func (r *Run) Done() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}
