// Command handler runs one transform-and-load invocation for an
// object-creation event, supplied either as flags or as a JSON payload
// file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/portfolio-etl/internal/config"
	"github.com/dvloznov/portfolio-etl/internal/etl"
	"github.com/dvloznov/portfolio-etl/internal/logger"
	"github.com/dvloznov/portfolio-etl/internal/storage"
)

func main() {
	var (
		bucket    string
		key       string
		eventPath string
	)

	flag.StringVar(&bucket, "bucket", "", "bucket of the created object")
	flag.StringVar(&key, "key", "", "key of the created object")
	flag.StringVar(&eventPath, "event", "", "path to a JSON event payload (alternative to -bucket/-key)")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(zerolog.Level(cfg.LogLevel))

	ev := etl.Event{Bucket: bucket, ObjectKey: key}
	if eventPath != "" {
		data, err := os.ReadFile(eventPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read event payload")
		}
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Fatal().Err(err).Msg("Failed to decode event payload")
		}
	}
	if ev.Bucket == "" || ev.ObjectKey == "" {
		log.Fatal().Msg("Usage: handler -bucket BUCKET -key KEY (or -event payload.json)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store, err := storage.NewGCSStore(ctx, cfg.Project)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create object store client")
	}
	defer store.Close()

	result, err := etl.NewHandler(store, cfg).Handle(ctx, ev)
	if err != nil {
		body, _ := json.Marshal(map[string]string{
			"error":       err.Error(),
			"source_file": result.SourceKey,
		})
		fmt.Println(string(body))
		os.Exit(1)
	}

	body, _ := json.Marshal(result)
	fmt.Println(string(body))
}
