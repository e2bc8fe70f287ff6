package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
)

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantErr     bool
	}{
		{ContentTypeCSV, false},
		{ContentTypeJSON, false},
		{"audio/wav", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			err := validateContentType(tt.contentType)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, "gcs", Config{Bucket: "b"})
	assert.Error(t, err)

	_, err = New(ctx, "s3", Config{})
	assert.ErrorContains(t, err, "S3_BUCKET")

	_, err = New(ctx, "minio", Config{Bucket: "b"})
	assert.ErrorContains(t, err, "S3_ENDPOINT")
}

func TestObjectStores_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcminio.Run(ctx,
		"minio/minio:RELEASE.2024-10-29T16-01-48Z",
		tcminio.WithUsername("minioadmin"),
		tcminio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, container.Terminate(ctx))
	}()

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := Config{
		Bucket:    "pingprep-test-" + uuid.New().String()[:8],
		Endpoint:  endpoint,
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}

	minioStore, err := NewMinioStore(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, minioStore.EnsureBucket(ctx))
	require.NoError(t, minioStore.EnsureBucket(ctx), "second call finds the existing bucket")

	s3Store, err := NewS3Store(ctx, cfg)
	require.NoError(t, err)

	backends := map[string]ObjectStore{
		"minio": minioStore,
		"s3":    s3Store,
	}

	for name, store := range backends {
		t.Run(name, func(t *testing.T) {
			key := "datasets/" + name + ".csv"
			body := []byte("fishNum,Spe,Ping_time,F100\nA1,X, 00:00:00.0,1\n")

			require.NoError(t, store.UploadFile(ctx, key, body, ContentTypeCSV))

			got, err := store.DownloadFile(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, body, got)

			link, err := store.GenerateDownloadURL(ctx, key)
			require.NoError(t, err)
			assert.Contains(t, link, fmt.Sprintf("X-Amz-Expires=%d", int(DownloadURLExpiry.Seconds())))
			resp, err := http.Get(link)
			require.NoError(t, err)
			fetched, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, body, fetched)

			uploadLink, err := store.GenerateUploadURL(ctx, key, ContentTypeCSV)
			require.NoError(t, err)
			assert.Contains(t, uploadLink, fmt.Sprintf("X-Amz-Expires=%d", int(UploadURLExpiry.Seconds())))
			_, err = store.GenerateUploadURL(ctx, key, "audio/wav")
			assert.Error(t, err)

			assert.Error(t, store.UploadFile(ctx, key, body, "image/png"))

			require.NoError(t, store.DeleteFile(ctx, key))
			_, err = store.DownloadFile(ctx, key)
			assert.Error(t, err)
		})
	}
}
