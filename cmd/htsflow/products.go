package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"htsflow/internal/common"
	"htsflow/internal/model"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalog",
	}

	cmd.AddCommand(productsAddCmd())
	cmd.AddCommand(productsListCmd())
	cmd.AddCommand(productsShowCmd())
	return cmd
}

func productsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the catalog",
		RunE:  runProductsAdd,
	}

	cmd.Flags().String("name", "", "product name (required)")
	cmd.Flags().String("description", "", "product description")
	cmd.Flags().String("short-description", "", "short description")
	cmd.Flags().String("sku", "", "SKU")
	cmd.Flags().StringSlice("category", nil, "category name (repeatable)")
	cmd.Flags().StringSlice("tag", nil, "tag (repeatable)")
	cmd.Flags().Float64("price", 0, "price")
	cmd.Flags().Float64("weight", 0, "weight")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runProductsAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	snapshot := model.ProductSnapshot{}
	snapshot.Name, _ = cmd.Flags().GetString("name")
	snapshot.Description, _ = cmd.Flags().GetString("description")
	snapshot.ShortDescription, _ = cmd.Flags().GetString("short-description")
	snapshot.SKU, _ = cmd.Flags().GetString("sku")
	snapshot.Categories, _ = cmd.Flags().GetStringSlice("category")
	snapshot.Tags, _ = cmd.Flags().GetStringSlice("tag")
	snapshot.Price, _ = cmd.Flags().GetFloat64("price")
	snapshot.Weight, _ = cmd.Flags().GetFloat64("weight")

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	id, err := db.AddProduct(ctx, snapshot)
	if err != nil {
		return err
	}

	fmt.Printf("Added product %d: %s\n", id, snapshot.Name)
	return nil
}

func productsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products and their HTS codes",
		RunE:  runProductsList,
	}
}

func runProductsList(cmd *cobra.Command, _ []string) error {
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

	products, err := db.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Println("No products in the catalog.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "SKU", "HTS Code", "Confidence", "Source"})

	for _, p := range products {
		code, confidence, source := "-", "-", "-"
		record, readErr := db.ReadClassification(ctx, p.ID)
		switch {
		case readErr == nil:
			code = record.HTSCode
			source = string(record.Source)
			if record.Source == model.SourceAI {
				confidence = fmt.Sprintf("%.0f%%", record.Confidence*100)
			}
		case !errors.Is(readErr, common.ErrNotFound):
			return readErr
		}

		table.Append([]string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.SKU,
			code,
			confidence,
			source,
		})
	}

	table.Render()
	return nil
}

func productsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show a product's details and classification",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductsShow,
	}
}

func runProductsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product ID %q", args[0])
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

	snapshot, err := db.GetProductSnapshot(ctx, productID)
	if err != nil {
		return err
	}

	fmt.Printf("Product %d: %s\n", snapshot.ID, snapshot.Name)
	if snapshot.SKU != "" {
		fmt.Printf("  SKU: %s\n", snapshot.SKU)
	}
	if len(snapshot.Categories) > 0 {
		fmt.Printf("  Categories: %s\n", strings.Join(snapshot.Categories, ", "))
	}
	if snapshot.Description != "" {
		fmt.Printf("  Description: %s\n", snapshot.Description)
	}

	record, err := db.ReadClassification(ctx, productID)
	switch {
	case err == nil:
		fmt.Printf("  HTS Code: %s (%s", record.HTSCode, record.Source)
		if record.Source == model.SourceAI {
			fmt.Printf(", %.0f%% confidence", record.Confidence*100)
		}
		fmt.Printf(")\n")
		fmt.Printf("  Country of Origin: %s\n", record.Country)
		fmt.Printf("  Updated: %s\n", record.UpdatedAt.Format("2006-01-02 15:04:05"))
		if record.Rationale != "" {
			fmt.Printf("  Rationale: %s\n", record.Rationale)
		}
	case errors.Is(err, common.ErrNotFound):
		fmt.Println("  Not yet classified.")
	default:
		return err
	}

	errRecord, err := db.GetErrorRecord(ctx, productID)
	switch {
	case err == nil:
		fmt.Printf("  Last failure: [%s] %s (%s)\n",
			errRecord.Kind, errRecord.Message, errRecord.OccurredAt.Format("2006-01-02 15:04:05"))
	case !errors.Is(err, common.ErrNotFound):
		return err
	}

	return nil
}
