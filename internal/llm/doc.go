// Package llm provides the classification client for the AI provider and
// the validator that turns raw replies into classification results.
package llm
