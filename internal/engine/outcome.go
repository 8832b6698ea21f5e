package engine

import (
	"htsflow/internal/common"
	"htsflow/internal/model"
	"htsflow/internal/quota"
)

// OutcomeStatus tags the branch of a classification outcome.
type OutcomeStatus string

// Outcome status constants.
const (
	StatusSuccess OutcomeStatus = "SUCCESS"
	StatusDenied  OutcomeStatus = "DENIED"
	StatusFailed  OutcomeStatus = "FAILED"
)

// Failure describes one failed classification attempt.
type Failure struct {
	Kind    common.ErrorKind
	Message string
	Context string
}

// Outcome is the single return shape of ClassifyProduct: exactly one of
// Result, Denied, or Failure is meaningful, selected by Status.
type Outcome struct {
	Status    OutcomeStatus
	AttemptID string
	ProductID int64
	Result    model.ClassificationResult
	Denied    quota.Decision
	Failure   Failure
}

// Success reports whether the attempt produced a persisted classification.
func (o Outcome) Success() bool {
	return o.Status == StatusSuccess
}

// BatchSummary aggregates repeated single-item outcomes.
type BatchSummary struct {
	Processed int
	Succeeded int
	Failed    int
	Denied    int
}

// Summarize folds outcomes into a batch summary.
func Summarize(outcomes []Outcome) BatchSummary {
	var s BatchSummary
	for _, o := range outcomes {
		s.Processed++
		switch o.Status {
		case StatusSuccess:
			s.Succeeded++
		case StatusDenied:
			s.Denied++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
