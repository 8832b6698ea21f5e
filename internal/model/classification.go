package model

import "time"

// ClassificationResult is the validated output of one AI classification call.
type ClassificationResult struct {
	HTSCode    string
	Rationale  string
	Confidence float64
}

// ClassificationSource indicates how a product's HTS code was assigned.
type ClassificationSource string

// Classification source constants.
const (
	SourceAI     ClassificationSource = "AI"
	SourceManual ClassificationSource = "MANUAL"
)

// ClassificationRecord is the persisted form of a classification: the code
// plus the metadata written alongside it on the product record.
type ClassificationRecord struct {
	UpdatedAt  time.Time
	HTSCode    string
	Rationale  string
	Country    string
	Source     ClassificationSource
	Confidence float64
}

// DefaultCountryOfOrigin is written with every classification unless the
// caller overrides it.
const DefaultCountryOfOrigin = "CA"

// ErrorRecord is attached to a product when auto-classification fails. It is
// surfaced to operators and superseded on the next successful classification.
type ErrorRecord struct {
	OccurredAt time.Time
	Kind       string
	Message    string
	Context    string
	AttemptID  string
}
