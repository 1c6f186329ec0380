// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// responseShape identifies which of the known body layouts a response used.
// Providers behind OpenAI-compatible gateways do not all answer alike.
type responseShape string

const (
	shapeChoices responseShape = "choices" // {"choices":[{"message":{"content":"..."}}]}
	shapeError   responseShape = "error"   // {"error":{"message":"..."}} or {"error":"..."}
	shapeData    responseShape = "data"    // {"data":["..."]}
	shapeText    responseShape = "text"    // {"text":"..."}
	shapeContent responseShape = "content" // {"content":"..."}
	shapeUnknown responseShape = "unknown"
)

// decoded is the single result of decodeResponse. For shapeError, text holds
// the provider's error message rather than generated text.
type decoded struct {
	shape responseShape
	text  string
}

// decodeResponse classifies body and extracts its text. The order is fixed:
// choices, then error, then data, text and content. An error is returned
// only when body is not valid JSON.
func decodeResponse(body []byte) (decoded, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		var v json.RawMessage
		if json.Unmarshal(body, &v) == nil {
			// Valid JSON that is not an object.
			return decoded{shape: shapeUnknown}, nil
		}
		return decoded{}, fmt.Errorf("decoding response body: %w", err)
	}

	if raw, ok := top["choices"]; ok {
		var choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		}
		if json.Unmarshal(raw, &choices) == nil && len(choices) > 0 && choices[0].Message.Content != nil {
			return decoded{shape: shapeChoices, text: strings.TrimSpace(*choices[0].Message.Content)}, nil
		}
	}

	if raw, ok := top["error"]; ok && !isNull(raw) {
		var obj struct {
			Message string `json:"message"`
		}
		msg := rawText(raw)
		if json.Unmarshal(raw, &obj) == nil && obj.Message != "" {
			msg = obj.Message
		}
		return decoded{shape: shapeError, text: msg}, nil
	}

	if raw, ok := top["data"]; ok {
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) == nil && len(items) > 0 {
			return decoded{shape: shapeData, text: strings.TrimSpace(rawText(items[0]))}, nil
		}
	}

	for _, key := range []responseShape{shapeText, shapeContent} {
		if raw, ok := top[string(key)]; ok && !isNull(raw) {
			return decoded{shape: key, text: strings.TrimSpace(rawText(raw))}, nil
		}
	}

	return decoded{shape: shapeUnknown}, nil
}

// rawText returns a JSON string's value, or the compact JSON of anything else.
func rawText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if json.Compact(&buf, raw) == nil {
		return buf.String()
	}
	return string(raw)
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
