package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htsflow/internal/common"
)

// reply wraps text in the provider's envelope for test inputs.
func reply(t *testing.T, text string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	require.NoError(t, err)
	return raw
}

func TestParseReply(t *testing.T) {
	result, err := ParseReply(reply(t, `{"hts_code":"6117.10.2000","confidence":0.92,"reasoning":"Knit wool accessory"}`))
	require.NoError(t, err)

	assert.Equal(t, "6117.10.2000", result.HTSCode)
	assert.InDelta(t, 0.92, result.Confidence, 0.001)
	assert.Equal(t, "Knit wool accessory", result.Rationale)
}

func TestParseReplyJSONWrappedInProse(t *testing.T) {
	text := `Based on the product details, here is my classification:

{"hts_code":"8471.30.0100","confidence":0.85,"reasoning":"Portable computer"}

Let me know if you need anything else.`

	result, err := ParseReply(reply(t, text))
	require.NoError(t, err)
	assert.Equal(t, "8471.30.0100", result.HTSCode)
}

func TestParseReplyRejections(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no JSON at all", text: "Sorry, I cannot classify this."},
		{name: "malformed inner JSON", text: `{"hts_code": "6117.10.2000", "confidence":`},
		{name: "missing hts_code", text: `{"confidence":0.9,"reasoning":"no code"}`},
		{name: "4-2-2 code rejected", text: `{"hts_code":"1234.56.78","confidence":0.9}`},
		{name: "4-2-2-2 code rejected", text: `{"hts_code":"1234.56.78.90","confidence":0.9}`},
		{name: "non-digit code rejected", text: `{"hts_code":"abcd.12.3456","confidence":0.9}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReply(reply(t, tt.text))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrClassificationFailed)
		})
	}
}

func TestParseReplyEnvelopeDefects(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "malformed envelope", raw: []byte(`not json`)},
		{name: "empty content", raw: []byte(`{"content":[]}`)},
		{name: "empty text", raw: []byte(`{"content":[{"type":"text","text":""}]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReply(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrClassificationFailed)
		})
	}
}

func TestParseReplyClampsConfidence(t *testing.T) {
	result, err := ParseReply(reply(t, `{"hts_code":"6117.10.2000","confidence":1.7}`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Confidence)

	result, err = ParseReply(reply(t, `{"hts_code":"6117.10.2000","confidence":-0.3}`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Confidence)
}
