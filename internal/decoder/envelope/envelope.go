// Package envelope unwraps the JSON envelope that carries IWXXM and MET
// report content: {"id": ..., "properties": {"content": {"value": ...}}}.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// Envelope is the decoded outer JSON document.
type Envelope struct {
	ID      string
	Content string
}

type wire struct {
	ID         json.RawMessage `json:"id"`
	Properties *struct {
		Content *struct {
			Value *string `json:"value"`
		} `json:"content"`
	} `json:"properties"`
}

// Looks reports whether payload appears to be a JSON object rather than bare content.
func Looks(payload []byte) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Decode parses the envelope. The id is required; a non-string id is kept
// as its JSON text. A missing content value is reported as ErrMissingField.
func Decode(payload []byte) (Envelope, error) {
	var w wire
	if err := json.Unmarshal(payload, &w); err != nil {
		return Envelope{}, fmt.Errorf("%w: envelope json: %v", domain.ErrParse, err)
	}

	id, ok := scalarText(w.ID)
	if !ok {
		return Envelope{}, fmt.Errorf("%w: envelope id", domain.ErrMissingField)
	}
	if w.Properties == nil || w.Properties.Content == nil || w.Properties.Content.Value == nil {
		return Envelope{}, fmt.Errorf("%w: envelope properties.content.value", domain.ErrMissingField)
	}

	return Envelope{ID: id, Content: *w.Properties.Content.Value}, nil
}

func scalarText(raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return trimmed, true
}
