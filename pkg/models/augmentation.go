package models

import (
	"time"

	"github.com/RMahshie/pingprep/internal/augment"
)

// CreateUploadRequest asks for a pre-signed URL to upload a ping table
type CreateUploadRequest struct {
	Body struct {
		FileSize int64 `json:"file_size" minimum:"1" maximum:"524288000" required:"true" doc:"CSV file size in bytes"`
	}
}

// CreateUploadResponseBody is the body of the create upload response
type CreateUploadResponseBody struct {
	Key       string `json:"key" doc:"Object key to reference in later requests"`
	UploadURL string `json:"upload_url" doc:"Pre-signed URL for file upload"`
	ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateUploadResponse returns where to upload the ping table
type CreateUploadResponse struct {
	Body CreateUploadResponseBody
}

// TargetInput is the requested synthetic sample count for one class
type TargetInput struct {
	Class string `json:"class" minLength:"1" doc:"Species class label"`
	Count int    `json:"count" minimum:"0" maximum:"1000000" doc:"Synthetic samples to generate"`
}

// CreateAugmentationRequest represents a request to start an augmentation run
type CreateAugmentationRequest struct {
	Body struct {
		InputKey string        `json:"input_key" minLength:"1" required:"true" doc:"Object key of the uploaded ping table"`
		Strategy string        `json:"strategy,omitempty" enum:"pairwise,group-average" doc:"Augmentation strategy, defaults to the server setting"`
		NoiseStd *float64      `json:"noise_std,omitempty" minimum:"0" doc:"Gaussian noise standard deviation"`
		Seed     *uint64       `json:"seed,omitempty" doc:"Random seed"`
		Targets  []TargetInput `json:"targets,omitempty" doc:"Per-class synthetic counts"`
		Balance  int           `json:"balance,omitempty" minimum:"0" maximum:"1000000" doc:"Top every class up to this many rows instead of using targets"`
	}
}

// CreateAugmentationResponseBody is the body of the create augmentation response
type CreateAugmentationResponseBody struct {
	ID     string `json:"id" doc:"Run unique identifier"`
	Status string `json:"status" doc:"Initial run status"`
}

// CreateAugmentationResponse represents the response from creating a run
type CreateAugmentationResponse struct {
	Status int
	Body   CreateAugmentationResponseBody
}

// GetAugmentationRequest represents a request to get a run
type GetAugmentationRequest struct {
	ID string `path:"id" doc:"Run ID"`
}

// AugmentationBody describes a run
type AugmentationBody struct {
	ID          string           `json:"id" doc:"Run ID"`
	Status      string           `json:"status" enum:"pending,processing,completed,failed" doc:"Run status"`
	Progress    int              `json:"progress" minimum:"0" maximum:"100" doc:"Run progress percentage"`
	Message     string           `json:"message,omitempty" doc:"Human-readable status message"`
	Strategy    string           `json:"strategy" doc:"Augmentation strategy"`
	Targets     []augment.Target `json:"targets" doc:"Requested synthetic counts"`
	Report      *augment.Report  `json:"report,omitempty" doc:"Per-class produced counts once completed"`
	Error       *string          `json:"error,omitempty" doc:"Failure reason"`
	CreatedAt   time.Time        `json:"created_at" doc:"Run creation timestamp"`
	CompletedAt *time.Time       `json:"completed_at,omitempty" doc:"Run completion timestamp"`
}

// GetAugmentationResponse represents the current state of a run
type GetAugmentationResponse struct {
	Body AugmentationBody
}

// ListAugmentationsRequest pages through runs, newest first
type ListAugmentationsRequest struct {
	Limit int `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Maximum runs to return"`
}

// ListAugmentationsResponse lists runs
type ListAugmentationsResponse struct {
	Body struct {
		Runs []AugmentationBody `json:"runs" doc:"Runs, newest first"`
	}
}

// DownloadAugmentationRequest represents a request for the augmented table
type DownloadAugmentationRequest struct {
	ID string `path:"id" doc:"Run ID"`
}

// DownloadAugmentationResponse holds a pre-signed download URL
type DownloadAugmentationResponse struct {
	Body struct {
		DownloadURL string `json:"download_url" doc:"Pre-signed URL of the augmented CSV"`
		ExpiresIn   int    `json:"expires_in" doc:"URL expiration time in seconds"`
	}
}
