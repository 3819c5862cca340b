package store

import (
	"encoding/json"
	"fmt"

	"github.com/fieldline/fieldline/internal/form"
)

// marshalSchema serializes a schema to canonical JSON. The same bytes
// are used for the forms.body column and for audit snapshots, so a
// snapshot's payload hash is reproducible from the stored row.
func marshalSchema(s *form.Schema) ([]byte, error) {
	data, err := form.MarshalCanonical(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", s.ID, err)
	}
	return data, nil
}

func unmarshalSchema(data []byte) (*form.Schema, error) {
	var s form.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return &s, nil
}

func marshalSubmissionData(data map[string]any) ([]byte, error) {
	out, err := form.MarshalCanonical(data)
	if err != nil {
		return nil, fmt.Errorf("marshal submission data: %w", err)
	}
	return out, nil
}
