// Package uploader writes generated transaction batches to the object
// store in the date-partitioned layout the pipeline watches.
package uploader

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/dvloznov/portfolio-etl/internal/generator"
	"github.com/dvloznov/portfolio-etl/internal/logger"
	"github.com/dvloznov/portfolio-etl/internal/storage"
)

// UploadError reports a failed object write. The caller decides whether
// to retry; the uploader never does.
type UploadError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload to %s/%s failed: %v", e.Bucket, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Uploader generates transaction batches and persists them.
type Uploader struct {
	store  storage.ObjectStore
	gen    *generator.Generator
	rnd    *rand.Rand
	bucket string
	folder string
}

// New creates an uploader writing to the given bucket and folder. The
// random source drives both record generation and backfill batch sizes.
func New(store storage.ObjectStore, rnd *rand.Rand, bucket, folder string) *Uploader {
	return &Uploader{
		store:  store,
		gen:    generator.New(rnd),
		rnd:    rnd,
		bucket: bucket,
		folder: folder,
	}
}

// EnsureBucket creates the target bucket if it does not exist.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	return u.store.EnsureBucket(ctx, u.bucket)
}

// UploadBatch generates count records for date, serializes them in the
// given format and writes one object to the partitioned key. Returns the
// object key written.
func (u *Uploader) UploadBatch(ctx context.Context, date time.Time, count int, format generator.Format) (string, error) {
	log := logger.FromContext(ctx)

	records := u.gen.Generate(date, count)

	body, err := generator.Encode(records, format)
	if err != nil {
		return "", fmt.Errorf("UploadBatch: encode batch: %w", err)
	}

	key := storage.PartitionKey(u.folder, date, string(format))
	metadata := map[string]string{
		"upload_timestamp": time.Now().Format(time.RFC3339),
		"record_count":     strconv.Itoa(len(records)),
		"data_date":        date.Format("2006-01-02"),
	}

	if err := u.store.Put(ctx, u.bucket, key, body, format.ContentType(), metadata); err != nil {
		return "", &UploadError{Bucket: u.bucket, Key: key, Err: err}
	}

	log.Info().
		Str("bucket", u.bucket).
		Str("key", key).
		Int("records", len(records)).
		Msg("Uploaded batch")

	return key, nil
}

// UploadHistorical writes one CSV batch per day for the last daysBack
// days, with per-day record counts drawn from [20,100]. Days are
// independent writes: a failure aborts the remaining days but leaves
// prior days persisted.
func (u *Uploader) UploadHistorical(ctx context.Context, daysBack int) error {
	log := logger.FromContext(ctx)
	log.Info().Int("days", daysBack).Msg("Generating historical data")

	now := time.Now()
	for i := 0; i < daysBack; i++ {
		date := now.AddDate(0, 0, -i)
		count := 20 + u.rnd.IntN(81)

		if _, err := u.UploadBatch(ctx, date, count, generator.FormatCSV); err != nil {
			return fmt.Errorf("UploadHistorical: day %s: %w", date.Format("2006-01-02"), err)
		}

		if i%10 == 0 {
			log.Info().Int("done", i+1).Int("total", daysBack).Msg("Backfill progress")
		}
	}

	log.Info().Msg("Historical data upload complete")
	return nil
}
