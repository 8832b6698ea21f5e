package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"htsflow/internal/model"
)

func setCodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-code <product-id> <code>",
		Short: "Manually assign an HTS code to a product",
		Long: `Manually assign an HTS code, bypassing the AI classifier. Manual entry
accepts shorter schedule-B style codes (####.##.## or ####.##.##.##)
in addition to full 10-digit codes; AI classification only ever stores
the full 4-2-4 form.`,
		Args: cobra.ExactArgs(2),
		RunE: runSetCode,
	}

	cmd.Flags().String("country", "", "country of origin (default from configuration)")
	return cmd
}

func runSetCode(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product ID %q", args[0])
	}

	code := args[1]
	if !model.ValidManualCode(code) && !model.ValidAICode(code) {
		return fmt.Errorf("invalid HTS code %q: expected ####.##.##, ####.##.##.## or ####.##.####", code)
	}

	country, _ := cmd.Flags().GetString("country")
	if country == "" {
		country = viper.GetString("classification.country")
	}
	if country == "" {
		country = model.DefaultCountryOfOrigin
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

	// Fails for unknown products before any write.
	if _, err := db.GetProductSnapshot(ctx, productID); err != nil {
		return err
	}

	record := model.ClassificationRecord{
		HTSCode:   code,
		Country:   country,
		Source:    model.SourceManual,
		UpdatedAt: time.Now(),
	}
	if err := db.WriteClassification(ctx, productID, record); err != nil {
		return err
	}
	if err := db.ClearErrorRecord(ctx, productID); err != nil {
		return err
	}

	fmt.Printf("Product %d code set to %s (manual)\n", productID, code)
	return nil
}
