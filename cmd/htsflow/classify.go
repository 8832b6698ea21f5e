package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"htsflow/internal/engine"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <product-id>",
		Short: "Classify a single product with AI",
		Long: `Classify one product: builds a prompt from the product's attributes,
calls the AI provider, validates the returned HTS code, and stores the
result. Products that already carry a code are skipped unless
--regenerate is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().Bool("regenerate", false, "re-classify even if the product already has a code")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product ID %q", args[0])
	}
	regenerate, _ := cmd.Flags().GetBool("regenerate")

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

	if !regenerate {
		needs, needsErr := eng.NeedsClassification(ctx, productID)
		if needsErr != nil {
			return needsErr
		}
		if !needs {
			record, readErr := db.ReadClassification(ctx, productID)
			if readErr != nil {
				return readErr
			}
			fmt.Printf("Product %d already classified as %s (use --regenerate to override)\n", productID, record.HTSCode)
			return nil
		}
	}

	return reportOutcome(eng.ClassifyProduct(ctx, productID))
}

// reportOutcome prints one classification outcome and returns an error for
// non-success so the process exits non-zero.
func reportOutcome(outcome engine.Outcome) error {
	switch outcome.Status {
	case engine.StatusSuccess:
		fmt.Printf("✓ Product %d classified: %s (%.0f%% confidence)\n",
			outcome.ProductID, outcome.Result.HTSCode, outcome.Result.Confidence*100)
		if outcome.Result.Rationale != "" {
			fmt.Printf("  %s\n", outcome.Result.Rationale)
		}
		return nil
	case engine.StatusDenied:
		return fmt.Errorf("classification limit reached (%d/%d used): upgrade your plan or reset usage",
			outcome.Denied.Used, outcome.Denied.Limit)
	default:
		message, action := outcome.Failure.Kind.UserMessage()
		return fmt.Errorf("%s %s", message, action)
	}
}
