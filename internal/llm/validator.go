package llm

import (
	"encoding/json"
	"fmt"
	"regexp"

	"htsflow/internal/common"
	"htsflow/internal/model"
)

// envelope is the provider's response structure. Only the text content
// matters to the validator.
type envelope struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// payload is the JSON object the model is instructed to embed in its reply.
type payload struct {
	HTSCode    string  `json:"hts_code"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// jsonObjectPattern greedily matches the first-to-last brace span so a JSON
// object wrapped in prose is still recovered.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseReply extracts and validates a classification result from a raw
// provider reply. Every defect maps to ErrClassificationFailed; a code that
// is not exactly 4-2-4 digits is rejected, never coerced.
func ParseReply(raw []byte) (model.ClassificationResult, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: malformed provider envelope: %v", common.ErrClassificationFailed, err)
	}

	if len(env.Content) == 0 || env.Content[0].Text == "" {
		return model.ClassificationResult{}, fmt.Errorf("%w: no content in provider reply", common.ErrClassificationFailed)
	}

	text := env.Content[0].Text
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return model.ClassificationResult{}, fmt.Errorf("%w: no JSON object in reply text", common.ErrClassificationFailed)
	}

	var p payload
	if err := json.Unmarshal([]byte(match), &p); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: malformed result object: %v", common.ErrClassificationFailed, err)
	}

	if !model.ValidAICode(p.HTSCode) {
		return model.ClassificationResult{}, fmt.Errorf("%w: code %q does not match ####.##.####", common.ErrClassificationFailed, p.HTSCode)
	}

	return model.ClassificationResult{
		HTSCode:    p.HTSCode,
		Confidence: clamp(p.Confidence),
		Rationale:  p.Reasoning,
	}, nil
}

// clamp bounds a model-reported confidence to [0, 1]. The value is otherwise
// passed through as provided.
func clamp(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
