package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	retry "github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"htsflow/internal/engine"
)

// freeBulkLimit caps one bulk run on a metered plan.
const freeBulkLimit = 5

func bulkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Classify all unclassified products",
		Long: `Run the classification pipeline over every product without an HTS code.
Each product is an independent attempt: one failure neither aborts nor
rolls back the others. On a metered plan a single run is capped at 5
products.`,
		RunE: runBulk,
	}

	cmd.Flags().Int("limit", 0, "maximum products to classify (0 = all)")
	cmd.Flags().Int("workers", 1, "concurrent classification workers")
	cmd.Flags().Int("retries", 2, "re-attempts per product on transient failures")
	return cmd
}

func runBulk(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	workers, _ := cmd.Flags().GetInt("workers")
	retries, _ := cmd.Flags().GetInt("retries")

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

	if planFromConfig().Metered && (limit <= 0 || limit > freeBulkLimit) {
		slog.Info("bulk run capped on metered plan", "limit", freeBulkLimit)
		limit = freeBulkLimit
	}

	ids, err := db.ListUnclassifiedIDs(ctx, limit)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("All products already classified.")
		return nil
	}

	var outcomes []engine.Outcome
	if workers > 1 {
		outcomes = eng.ClassifyBatch(ctx, ids, workers)
	} else {
		outcomes = classifySerially(ctx, eng, ids, retries)
	}

	summary := engine.Summarize(outcomes)
	fmt.Printf("\nProcessed %d products: %d succeeded, %d failed, %d denied\n",
		summary.Processed, summary.Succeeded, summary.Failed, summary.Denied)

	for _, o := range outcomes {
		if o.Status == engine.StatusFailed {
			fmt.Printf("  product %d: %s\n", o.ProductID, o.Failure.Message)
		}
	}

	if summary.Denied > 0 {
		fmt.Println("Some products were denied by the usage limit; upgrade your plan or reset usage.")
	}
	return nil
}

// classifySerially runs one product at a time with a progress bar, backing
// off between re-attempts when the provider signals a transient condition.
// Each re-attempt is a fresh pass through the full pipeline.
func classifySerially(ctx context.Context, eng *engine.Engine, ids []int64, retries int) []engine.Outcome {
	bar := progressbar.Default(int64(len(ids)), "classifying")
	outcomes := make([]engine.Outcome, 0, len(ids))

	for _, id := range ids {
		var outcome engine.Outcome

		backoff := retry.WithMaxRetries(uint64(retries), retry.NewFibonacci(time.Second))
		_ = retry.Do(ctx, backoff, func(ctx context.Context) error {
			outcome = eng.ClassifyProduct(ctx, id)
			if outcome.Status == engine.StatusFailed && outcome.Failure.Kind.Retryable() {
				return retry.RetryableError(errors.New(outcome.Failure.Context))
			}
			return nil
		})

		outcomes = append(outcomes, outcome)
		_ = bar.Add(1)

		if ctx.Err() != nil {
			break
		}
	}
	return outcomes
}
