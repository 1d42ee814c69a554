// Command uploader generates synthetic transaction batches and uploads
// them to the object store in the layout the pipeline watches.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/portfolio-etl/internal/config"
	"github.com/dvloznov/portfolio-etl/internal/generator"
	"github.com/dvloznov/portfolio-etl/internal/logger"
	"github.com/dvloznov/portfolio-etl/internal/storage"
	"github.com/dvloznov/portfolio-etl/internal/uploader"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "uploader",
		Short: "Generate and upload synthetic transaction data",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newUploadCommand())
	rootCmd.AddCommand(newBackfillCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newInitBucketCommand())

	return rootCmd
}

// setup builds the shared context, config, store and uploader for a
// subcommand run.
func setup(cmd *cobra.Command) (context.Context, *config.Config, *storage.GCSStore, *uploader.Uploader, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	log := logger.New(zerolog.Level(cfg.LogLevel))
	ctx := logger.WithContext(cmd.Context(), log)

	store, err := storage.NewGCSStore(ctx, cfg.Project)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	rnd := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	up := uploader.New(store, rnd, cfg.Bucket, cfg.RawFolder)

	return ctx, cfg, store, up, nil
}

func newUploadCommand() *cobra.Command {
	var (
		count   int
		dateStr string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Generate and upload one day's batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, store, up, err := setup(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			date := time.Now()
			if dateStr != "" {
				date, err = time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", dateStr, err)
				}
			}

			key, err := up.UploadBatch(ctx, date, count, generator.Format(format))
			if err != nil {
				return err
			}

			fmt.Printf("Uploaded %d records to %s\n", count, key)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 75, "number of records to generate")
	cmd.Flags().StringVar(&dateStr, "date", "", "data date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&format, "format", "csv", "serialization format (csv|json)")

	return cmd
}

func newBackfillCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Upload historical batches, one per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, store, up, err := setup(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			return up.UploadHistorical(ctx, days)
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "number of days of history to generate")

	return cmd
}

func newListCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded objects under a prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, store, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if prefix == "" {
				prefix = cfg.RawFolder
			}

			objects, err := store.List(ctx, cfg.Bucket, prefix)
			if err != nil {
				return err
			}
			if len(objects) == 0 {
				fmt.Printf("No objects found under %s/%s\n", cfg.Bucket, prefix)
				return nil
			}

			for _, obj := range objects {
				fmt.Printf("%s\t%d bytes\t%s\n", obj.Key, obj.Size, obj.LastModified.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix to list (default: raw folder)")

	return cmd
}

func newInitBucketCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-bucket",
		Short: "Create the target bucket if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, store, up, err := setup(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := up.EnsureBucket(ctx); err != nil {
				return err
			}
			fmt.Printf("Bucket %q is ready\n", cfg.Bucket)
			return nil
		},
	}
}
