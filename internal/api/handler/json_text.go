package handler

import (
	"bytes"
	"encoding/json"
)

// jsonText decodes a text field without failing the whole body when the
// client sends another JSON type. Such values are flagged instead, so they
// can be reported next to the other field errors.
type jsonText struct {
	value   string
	notText bool
}

func (t *jsonText) UnmarshalJSON(data []byte) error {
	*t = jsonText{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &t.value); err != nil {
		t.notText = true
	}
	return nil
}

// wrongTypes collects the wire names of flagged jsonText fields.
type wrongTypes []string

func (w *wrongTypes) text(field string, t jsonText) string {
	if t.notText {
		*w = append(*w, field)
	}
	return t.value
}
