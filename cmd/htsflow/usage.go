package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"htsflow/internal/quota"
)

func usageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show classification usage against the plan limit",
		RunE:  runUsage,
	}

	cmd.AddCommand(usageResetCmd())
	return cmd
}

func runUsage(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	tracker := quota.NewTracker(db, planFromConfig())
	stats, err := tracker.Stats(ctx)
	if err != nil {
		return err
	}

	limit := "unlimited"
	remaining := "unlimited"
	percent := "-"
	if stats.Metered {
		limit = fmt.Sprintf("%d", stats.Limit)
		remaining = fmt.Sprintf("%d", stats.Remaining)
		percent = fmt.Sprintf("%.1f%%", stats.PercentUsed)
	}

	lastUsed := "never"
	if !stats.LastUsedAt.IsZero() {
		lastUsed = stats.LastUsedAt.Format("2006-01-02 15:04:05")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Used", "Limit", "Remaining", "% Used", "Last Classification"})
	table.Append([]string{fmt.Sprintf("%d", stats.Used), limit, remaining, percent, lastUsed})
	table.Render()
	return nil
}

func usageResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the usage counter (administrative)",
		RunE:  runUsageReset,
	}

	cmd.Flags().Bool("confirm", false, "confirm the reset")
	return cmd
}

func runUsageReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	confirm, _ := cmd.Flags().GetBool("confirm")
	if !confirm {
		return fmt.Errorf("usage reset is irreversible; re-run with --confirm")
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

	tracker := quota.NewTracker(db, planFromConfig())
	if err := tracker.Reset(ctx); err != nil {
		return err
	}

	fmt.Println("Usage counter reset.")
	return nil
}
