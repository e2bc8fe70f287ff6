package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/pingprep/internal/api/handlers"
	"github.com/RMahshie/pingprep/internal/augment"
	"github.com/RMahshie/pingprep/internal/dataset"
	"github.com/RMahshie/pingprep/internal/processing"
	"github.com/RMahshie/pingprep/internal/repository"
	"github.com/RMahshie/pingprep/pkg/models"
)

// memoryRepo is an in-memory RunRepository
type memoryRepo struct {
	mu   sync.Mutex
	runs map[string]*models.Run
}

func (r *memoryRepo) Create(_ context.Context, run *models.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id.String()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *run
	return &copied, nil
}

func (r *memoryRepo) List(context.Context, int) ([]*models.Run, error) { return nil, nil }

func (r *memoryRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[id.String()].Status = status
	r.runs[id.String()].Progress = progress
	return nil
}

func (r *memoryRepo) UpdateError(_ context.Context, id uuid.UUID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[id.String()].Status = models.StatusFailed
	r.runs[id.String()].ErrorMsg = &msg
	return nil
}

func (r *memoryRepo) StoreReport(_ context.Context, id uuid.UUID, key string, report *augment.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[id.String()].OutputKey = &key
	r.runs[id.String()].Report = report
	return nil
}

// memoryStore is an in-memory ObjectStore
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memoryStore) GenerateUploadURL(_ context.Context, key, _ string) (string, error) {
	return "https://bucket.example/" + key + "?upload", nil
}

func (s *memoryStore) GenerateDownloadURL(_ context.Context, key string) (string, error) {
	return "https://bucket.example/" + key, nil
}

func (s *memoryStore) DownloadFile(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, assert.AnError
	}
	return data, nil
}

func (s *memoryStore) UploadFile(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memoryStore) DeleteFile(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

const pingsCSV = `fishNum,Spe,Ping_time,F100,F110
LT001,LT, 10:00:00.000000,-40,-41
LT001,LT, 10:00:02.000000,-38,-45
SMB001,SMB, 09:00:00.000000,-30,-31
SMB001,SMB, 09:00:01.000000,-20,-21
`

func setup(t *testing.T) (humatest.TestAPI, *handlers.AugmentationHandler, *memoryStore) {
	t.Helper()

	repo := &memoryRepo{runs: map[string]*models.Run{}}
	store := &memoryStore{objects: map[string][]byte{"datasets/pings.csv": []byte(pingsCSV)}}
	svc := processing.NewProcessingService(store, repo, processing.Options{
		Schema:            dataset.DefaultSchemaOptions(),
		SamplesPerClass:   2,
		SpectrogramLength: 3,
	})

	augmentations := handlers.NewAugmentationHandler(repo, store, svc, handlers.Defaults{Strategy: augment.StrategyPairwise})
	spectrograms := handlers.NewSpectrogramHandler(svc, 0)

	_, humaAPI := humatest.New(t)
	RegisterRoutes(humaAPI, augmentations, spectrograms)
	return humaAPI, augmentations, store
}

func TestAugmentationFlow(t *testing.T) {
	humaAPI, augmentations, store := setup(t)

	resp := humaAPI.Post("/api/augmentations", map[string]any{
		"input_key": "datasets/pings.csv",
		"targets":   []map[string]any{{"class": "LT", "count": 3}},
	})
	require.Equal(t, http.StatusAccepted, resp.Code, resp.Body.String())

	var created models.CreateAugmentationResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	augmentations.Wait()

	resp = humaAPI.Get("/api/augmentations/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	var run models.AugmentationBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &run))
	assert.Equal(t, models.StatusCompleted, run.Status)
	require.NotNil(t, run.Report)
	assert.Equal(t, 7, run.Report.TotalRows)

	resp = humaAPI.Get("/api/augmentations/" + created.ID + "/download")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "augmented/"+created.ID+".csv")
	assert.Contains(t, store.objects, "augmented/"+created.ID+".csv")

	resp = humaAPI.Get("/api/augmentations/" + uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateAugmentation_Validation(t *testing.T) {
	humaAPI, _, _ := setup(t)

	resp := humaAPI.Post("/api/augmentations", map[string]any{
		"input_key": "datasets/pings.csv",
		"strategy":  "smote",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = humaAPI.Post("/api/augmentations", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestSpectrogramsRoute(t *testing.T) {
	humaAPI, _, _ := setup(t)

	resp := humaAPI.Post("/api/spectrograms", map[string]any{
		"input_key": "datasets/pings.csv",
		"class":     "SMB",
		"count":     2,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body models.CreateSpectrogramsResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []string{"F100", "F110"}, body.Frequencies)
	require.Len(t, body.Spectrograms, 2)
	assert.Len(t, body.Spectrograms[0].Rows, 3)

	resp = humaAPI.Post("/api/spectrograms", map[string]any{
		"input_key": "datasets/missing.csv",
		"class":     "SMB",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUploadRoute(t *testing.T) {
	humaAPI, _, _ := setup(t)

	resp := humaAPI.Post("/api/uploads", map[string]any{"file_size": 1024})
	require.Equal(t, http.StatusOK, resp.Code)

	var body models.CreateUploadResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Contains(t, body.UploadURL, body.Key)
}
