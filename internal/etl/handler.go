// Package etl implements the event-triggered transform-and-load
// pipeline: read a raw CSV object, clean and enrich it, optionally load
// it into the warehouse, and write a transformed JSON copy back.
package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/portfolio-etl/internal/config"
	"github.com/dvloznov/portfolio-etl/internal/domain"
	"github.com/dvloznov/portfolio-etl/internal/logger"
	"github.com/dvloznov/portfolio-etl/internal/storage"
	"github.com/dvloznov/portfolio-etl/internal/warehouse"
)

// Event is the minimal shape the pipeline needs from an object-creation
// notification.
type Event struct {
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"objectKey"`
}

// Status reports how an invocation ended.
type Status string

const (
	// StatusProcessed means the object was transformed and written back.
	StatusProcessed Status = "processed"
	// StatusSkipped means the key was outside the watched prefix; the
	// invocation was a terminal no-op, not an error.
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one invocation.
type Result struct {
	Status           Status `json:"status"`
	RecordsProcessed int    `json:"records_processed"`
	RowsDropped      int    `json:"rows_dropped"`
	RowsLoaded       int    `json:"rows_loaded"`
	SourceKey        string `json:"source_file"`
	OutputKey        string `json:"output_key,omitempty"`
}

// loadFunc runs one scoped warehouse load; injectable for tests.
type loadFunc func(ctx context.Context, cfg *config.WarehouseConfig, rows []domain.ProcessedTransaction, sourceFile string) (warehouse.LoadResult, error)

// Handler processes object-creation events. Invocations are independent
// and safe to re-deliver: both write stages overwrite deterministic
// keys and the warehouse upsert is idempotent by primary key.
type Handler struct {
	store storage.ObjectStore
	cfg   *config.Config
	now   func() time.Time
	load  loadFunc
}

// NewHandler creates a pipeline handler.
func NewHandler(store storage.ObjectStore, cfg *config.Config) *Handler {
	return &Handler{
		store: store,
		cfg:   cfg,
		now:   time.Now,
		load:  warehouse.Load,
	}
}

// Handle processes a single notification end to end. Stage-level
// failures abort the invocation and are returned alongside a Result
// carrying the source key.
func (h *Handler) Handle(ctx context.Context, ev Event) (Result, error) {
	log := logger.FromContext(ctx).With().
		Str("run_id", uuid.NewString()).
		Str("bucket", ev.Bucket).
		Str("key", ev.ObjectKey).
		Logger()
	ctx = logger.WithContext(ctx, log)

	res := Result{SourceKey: ev.ObjectKey}
	log.Info().Msg("ETL pipeline started")

	// 1. Routing guard: only objects under the raw-data folder are
	// processed.
	if !strings.HasPrefix(ev.ObjectKey, h.cfg.RawFolder+"/") {
		log.Info().Msg("Skipping object - not in raw-data folder")
		res.Status = StatusSkipped
		return res, nil
	}

	// 2. Read the raw object and parse it as CSV.
	rows, err := h.read(ctx, ev)
	if err != nil {
		log.Error().Err(err).Msg("Read stage failed")
		return res, err
	}

	// 3. Transform.
	processed, dropped := Transform(rows, h.now())
	res.RowsDropped = dropped
	log.Info().
		Int("rows_in", len(rows)).
		Int("rows_out", len(processed)).
		Int("rows_dropped", dropped).
		Msg("Transformations completed")

	// 4. Load to the warehouse, if configured.
	if wcfg := h.cfg.Warehouse(); wcfg != nil {
		lr, err := h.load(ctx, wcfg, processed, ev.ObjectKey)
		if err != nil {
			log.Error().Err(err).Msg("Warehouse load failed")
			return res, fmt.Errorf("Handle: warehouse load: %w", err)
		}
		res.RowsLoaded = lr.Upserted
	} else {
		log.Info().Msg("Warehouse not configured - skipping database load")
	}

	// 5. Write the transformed copy back.
	outKey, err := h.writeBack(ctx, ev, processed)
	if err != nil {
		log.Error().Err(err).Msg("Write-back stage failed")
		return res, err
	}

	res.Status = StatusProcessed
	res.RecordsProcessed = len(processed)
	res.OutputKey = outKey
	log.Info().Int("records", len(processed)).Str("output_key", outKey).Msg("ETL pipeline completed")
	return res, nil
}

func (h *Handler) read(ctx context.Context, ev Event) ([]Row, error) {
	data, err := h.store.Get(ctx, ev.Bucket, ev.ObjectKey)
	if err != nil {
		return nil, &ReadError{Key: ev.ObjectKey, Err: err}
	}

	rows, err := parseCSV(data)
	if err != nil {
		return nil, &ReadError{Key: ev.ObjectKey, Err: err}
	}
	return rows, nil
}

func (h *Handler) writeBack(ctx context.Context, ev Event, processed []domain.ProcessedTransaction) (string, error) {
	outKey := storage.ProcessedKey(ev.ObjectKey, h.cfg.RawFolder, h.cfg.ProcessedFolder)

	body, err := json.Marshal(processed)
	if err != nil {
		return "", &WriteBackError{Key: outKey, Err: err}
	}

	metadata := map[string]string{
		"original_file":       ev.ObjectKey,
		"processed_timestamp": h.now().Format(time.RFC3339),
		"record_count":        strconv.Itoa(len(processed)),
		"processing_stage":    "transformed",
	}

	if err := h.store.Put(ctx, ev.Bucket, outKey, body, "application/json", metadata); err != nil {
		return "", &WriteBackError{Key: outKey, Err: err}
	}
	return outKey, nil
}
