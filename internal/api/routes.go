package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/pingprep/internal/api/handlers"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, augmentations *handlers.AugmentationHandler, spectrograms *handlers.SpectrogramHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "createUpload",
		Method:      http.MethodPost,
		Path:        "/api/uploads",
		Summary:     "Create an upload URL",
		Description: "Returns a pre-signed URL for uploading a ping table as CSV",
		Tags:        []string{"Datasets"},
	}, augmentations.CreateUpload)

	huma.Register(api, huma.Operation{
		OperationID:   "createAugmentation",
		Method:        http.MethodPost,
		Path:          "/api/augmentations",
		Summary:       "Start an augmentation run",
		Description:   "Records a run and generates synthetic pings for the requested classes in the background",
		Tags:          []string{"Augmentation"},
		DefaultStatus: http.StatusAccepted,
	}, augmentations.CreateAugmentation)

	huma.Register(api, huma.Operation{
		OperationID: "listAugmentations",
		Method:      http.MethodGet,
		Path:        "/api/augmentations",
		Summary:     "List augmentation runs",
		Description: "Returns recent runs, newest first",
		Tags:        []string{"Augmentation"},
	}, augmentations.ListAugmentations)

	huma.Register(api, huma.Operation{
		OperationID: "getAugmentation",
		Method:      http.MethodGet,
		Path:        "/api/augmentations/{id}",
		Summary:     "Get augmentation run",
		Description: "Returns the status, progress and per-class report of a run",
		Tags:        []string{"Augmentation"},
	}, augmentations.GetAugmentation)

	huma.Register(api, huma.Operation{
		OperationID: "downloadAugmentation",
		Method:      http.MethodGet,
		Path:        "/api/augmentations/{id}/download",
		Summary:     "Download augmented table",
		Description: "Returns a pre-signed URL for the augmented CSV of a completed run",
		Tags:        []string{"Augmentation"},
	}, augmentations.DownloadAugmentation)

	huma.Register(api, huma.Operation{
		OperationID: "createSpectrograms",
		Method:      http.MethodPost,
		Path:        "/api/spectrograms",
		Summary:     "Generate spectrograms",
		Description: "Resamples fixed-length time by frequency matrices for one class of a stored ping table",
		Tags:        []string{"Spectrograms"},
	}, spectrograms.CreateSpectrograms)
}
