package uploader

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/portfolio-etl/internal/generator"
	"github.com/dvloznov/portfolio-etl/internal/storage"
)

type fakeStore struct {
	objects     map[string][]byte
	metadata    map[string]map[string]string
	contentType map[string]string
	failKeys    map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:     make(map[string][]byte),
		metadata:    make(map[string]map[string]string),
		contentType: make(map[string]string),
		failKeys:    make(map[string]error),
	}
}

func (s *fakeStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error {
	if err, ok := s.failKeys[key]; ok {
		return err
	}
	s.objects[key] = body
	s.metadata[key] = metadata
	s.contentType[key] = contentType
	return nil
}

func (s *fakeStore) EnsureBucket(ctx context.Context, bucket string) error { return nil }

func (s *fakeStore) List(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func newTestUploader(store storage.ObjectStore) *Uploader {
	return New(store, rand.New(rand.NewPCG(1, 0)), "test-bucket", "raw-data")
}

func TestUploadBatch(t *testing.T) {
	store := newFakeStore()
	up := newTestUploader(store)

	date := time.Date(2024, 7, 26, 0, 0, 0, 0, time.UTC)
	key, err := up.UploadBatch(context.Background(), date, 25, generator.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "raw-data/year=2024/month=07/day=26/transactions-20240726.csv", key)
	assert.Equal(t, "text/csv", store.contentType[key])

	body := string(store.objects[key])
	assert.True(t, strings.HasPrefix(body, generator.Header+"\n"))
	assert.Equal(t, 26, strings.Count(body, "\n")) // header + 25 rows

	meta := store.metadata[key]
	assert.Equal(t, "25", meta["record_count"])
	assert.Equal(t, "2024-07-26", meta["data_date"])
	assert.NotEmpty(t, meta["upload_timestamp"])
}

func TestUploadBatch_PutFailure(t *testing.T) {
	store := newFakeStore()
	date := time.Date(2024, 7, 26, 0, 0, 0, 0, time.UTC)
	key := storage.PartitionKey("raw-data", date, "csv")
	store.failKeys[key] = errors.New("access denied")

	up := newTestUploader(store)

	_, err := up.UploadBatch(context.Background(), date, 10, generator.FormatCSV)
	require.Error(t, err)

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "test-bucket", uploadErr.Bucket)
	assert.Equal(t, key, uploadErr.Key)
}

func TestUploadHistorical(t *testing.T) {
	store := newFakeStore()
	up := newTestUploader(store)

	require.NoError(t, up.UploadHistorical(context.Background(), 7))

	assert.Len(t, store.objects, 7)
	for key, meta := range store.metadata {
		assert.True(t, strings.HasPrefix(key, "raw-data/"), "unexpected key %s", key)
		assert.NotEmpty(t, meta["record_count"])
	}
}

func TestUploadHistorical_AbortsOnFailingDay(t *testing.T) {
	store := newFakeStore()

	// Fail the third day back; the first two stay persisted.
	failDate := time.Now().AddDate(0, 0, -2)
	failKey := storage.PartitionKey("raw-data", failDate, "csv")
	store.failKeys[failKey] = fmt.Errorf("transient outage")

	up := newTestUploader(store)

	err := up.UploadHistorical(context.Background(), 7)
	require.Error(t, err)

	var uploadErr *UploadError
	assert.ErrorAs(t, err, &uploadErr)
	assert.Len(t, store.objects, 2)
}
