package card

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseDocument reads a card document written as JSON or YAML and overlays it
// onto Default(). Only a document that is not a mapping is an error.
func ParseDocument(data []byte) (Card, error) {
	record, err := parseRecord(data)
	if err != nil {
		return Card{}, err
	}
	return FromRecord(record, DocumentKeys), nil
}

// parseRecord decodes JSON objects with encoding/json and everything else as YAML.
func parseRecord(data []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("card document is empty")
	}

	var raw any
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("card document is not valid JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("card document is not valid YAML: %w", err)
		}
	}

	record, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("card document must be a mapping, got %T", raw)
	}
	return record, nil
}
