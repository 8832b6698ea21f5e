package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"htsflow/internal/engine"
)

func autoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Continuously classify new products",
		Long: `Poll the catalog for unclassified products on an interval and feed
them through the classification pipeline. Runs until interrupted.
Requires classification.auto to be enabled in configuration.`,
		RunE: runAuto,
	}

	cmd.Flags().Duration("interval", time.Minute, "poll interval")
	cmd.Flags().Int("batch", 10, "maximum products per poll")
	return cmd
}

func runAuto(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	interval, _ := cmd.Flags().GetDuration("interval")
	batch, _ := cmd.Flags().GetInt("batch")

	if !viper.GetBool("classification.auto") {
		return fmt.Errorf("auto-classification is disabled; set classification.auto: true to enable")
	}

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	eng, err := buildEngine(db)
	if err != nil {
		return err
	}

	slog.Info("auto-classification started", "interval", interval, "batch", batch)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ids, listErr := db.ListUnclassifiedIDs(ctx, batch)
		if listErr != nil {
			slog.Error("failed to scan for unclassified products", "error", listErr)
		} else if len(ids) > 0 {
			outcomes := eng.ClassifyBatch(ctx, ids, 1)
			summary := engine.Summarize(outcomes)
			slog.Info("auto-classification pass complete",
				"processed", summary.Processed,
				"succeeded", summary.Succeeded,
				"failed", summary.Failed,
				"denied", summary.Denied)

			// Once the quota denies, waiting for more products won't help.
			if summary.Denied > 0 {
				return fmt.Errorf("classification limit reached; auto-classification stopped")
			}
		}

		select {
		case <-ctx.Done():
			slog.Info("auto-classification stopped")
			return nil
		case <-ticker.C:
		}
	}
}
