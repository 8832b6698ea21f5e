// Package model defines the core domain models used throughout the application.
package model

// ProductSnapshot is a read-only view of a product's attributes taken at
// classification time. It is assembled from the catalog and never persisted
// by the classification pipeline itself.
type ProductSnapshot struct {
	Name             string
	Description      string
	ShortDescription string
	SKU              string
	Categories       []string
	Tags             []string
	ID               int64
	Price            float64
	Weight           float64
}

// MinNameLength is the shortest product name the prompt builder accepts.
const MinNameLength = 3

// MaxDescriptionLength is the longest description embedded into a prompt.
const MaxDescriptionLength = 1000
