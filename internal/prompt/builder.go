// Package prompt turns a product snapshot into a deterministic
// classification request for the AI provider.
package prompt

import (
	"fmt"
	"strings"

	"htsflow/internal/common"
	"htsflow/internal/model"
)

const promptTemplate = `You are an expert in Harmonized Tariff Schedule (HTS) classification for US imports.
Analyze this product and provide the most accurate 10-digit HTS code.

PRODUCT INFORMATION:
Name: %s
SKU: %s
Description: %s
Categories: %s

IMPORTANT RULES:
1. Provide the full 10-digit HTS code (format: ####.##.####)
2. Consider the product's primary function and material composition
3. Use the most specific classification available
4. If uncertain between codes, choose the one with higher duty rate (conservative approach)

Respond in this exact JSON format:
{
    "hts_code": "####.##.####",
    "confidence": 0.0 to 1.0,
    "reasoning": "Brief explanation"
}`

// Build renders the classification prompt for a snapshot. The same snapshot
// always yields the same prompt. Snapshots without a usable name are refused
// rather than producing a degenerate prompt.
func Build(snapshot model.ProductSnapshot) (string, error) {
	name := strings.TrimSpace(snapshot.Name)
	if len([]rune(name)) < model.MinNameLength {
		return "", fmt.Errorf("%w: product name must be at least %d characters", common.ErrProductDataInvalid, model.MinNameLength)
	}

	return fmt.Sprintf(promptTemplate,
		name,
		snapshot.SKU,
		truncate(snapshot.Description, model.MaxDescriptionLength),
		strings.Join(snapshot.Categories, ", "),
	), nil
}

// truncate limits s to max characters.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
