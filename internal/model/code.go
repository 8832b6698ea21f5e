package model

import "regexp"

// AICodePattern is the only shape accepted from the AI classifier: a full
// 10-digit HTS code in 4-2-4 form. Anything else is rejected outright, never
// coerced.
var AICodePattern = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{4}$`)

// ManualCodePattern is the looser shape accepted from manual entry: 4-2-2
// with an optional trailing pair, matching shorter schedule-B style codes.
// It is deliberately a separate format from AICodePattern.
var ManualCodePattern = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}(\.\d{2})?$`)

// ValidAICode reports whether code is a valid AI-sourced HTS code.
func ValidAICode(code string) bool {
	return AICodePattern.MatchString(code)
}

// ValidManualCode reports whether code is acceptable for manual entry.
func ValidManualCode(code string) bool {
	return ManualCodePattern.MatchString(code)
}
