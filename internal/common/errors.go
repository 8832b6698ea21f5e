// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Classification pipeline errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Catalog errors.
	ErrProductNotFound    = errors.New("product not found")
	ErrProductDataInvalid = errors.New("insufficient product data")

	// Credential errors.
	ErrAPIKeyMissing = errors.New("anthropic API key not configured")
	ErrAPIKeyInvalid = errors.New("anthropic API key rejected")

	// Provider errors.
	ErrNetwork        = errors.New("network failure")
	ErrRateLimited    = errors.New("provider rate limit exceeded")
	ErrProviderServer = errors.New("provider server error")
	ErrProviderQuota  = errors.New("provider usage quota exceeded")

	// Content errors.
	ErrClassificationFailed = errors.New("classification failed")
)

// ErrorKind names one branch of the failure taxonomy. Every failure the
// orchestrator returns carries exactly one kind.
type ErrorKind string

// Error kind constants.
const (
	KindProductNotFound      ErrorKind = "PRODUCT_NOT_FOUND"
	KindProductDataInvalid   ErrorKind = "PRODUCT_DATA_INVALID"
	KindAPIKeyMissing        ErrorKind = "API_KEY_MISSING"
	KindAPIKeyInvalid        ErrorKind = "API_KEY_INVALID"
	KindNetworkError         ErrorKind = "NETWORK_ERROR"
	KindRateLimited          ErrorKind = "RATE_LIMITED"
	KindServerError          ErrorKind = "SERVER_ERROR"
	KindQuotaExceeded        ErrorKind = "QUOTA_EXCEEDED"
	KindClassificationFailed ErrorKind = "CLASSIFICATION_FAILED"
)

// KindOf maps an error from anywhere in the pipeline to its taxonomy kind.
// Unrecognized errors normalize to KindClassificationFailed.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return KindProductNotFound
	case errors.Is(err, ErrProductDataInvalid):
		return KindProductDataInvalid
	case errors.Is(err, ErrAPIKeyMissing):
		return KindAPIKeyMissing
	case errors.Is(err, ErrAPIKeyInvalid):
		return KindAPIKeyInvalid
	case errors.Is(err, ErrNetwork):
		return KindNetworkError
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrProviderServer):
		return KindServerError
	case errors.Is(err, ErrProviderQuota):
		return KindQuotaExceeded
	default:
		return KindClassificationFailed
	}
}

// Retryable reports whether a failure of this kind is safe to re-attempt
// later without operator intervention.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindNetworkError, KindRateLimited, KindServerError:
		return true
	default:
		return false
	}
}

// UserMessage returns a short human-readable message and a suggested action
// for the given kind. Rendering is the caller's concern; this only supplies
// the text.
func (k ErrorKind) UserMessage() (message, action string) {
	switch k {
	case KindProductNotFound:
		return "Product not found.", "Verify the product ID and try again."
	case KindProductDataInvalid:
		return "Not enough product data to classify.", "Add a product name of at least 3 characters."
	case KindAPIKeyMissing:
		return "API key not configured.", "Set anthropic.api_key in your configuration."
	case KindAPIKeyInvalid:
		return "API key was rejected by the provider.", "Check your API key."
	case KindNetworkError:
		return "Could not reach the classification service.", "Check connectivity and retry later."
	case KindRateLimited:
		return "The classification service is rate limiting requests.", "Wait a moment before retrying."
	case KindServerError:
		return "The classification service reported an internal error.", "Retry later."
	case KindQuotaExceeded:
		return "Your provider usage quota is exhausted.", "Review your provider billing plan."
	default:
		return "Failed to generate an HTS code.", "Please try again."
	}
}
