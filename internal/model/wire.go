package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var knownTaskKeys = map[string]bool{
	"id":          true,
	"text":        true,
	"description": true,
	"created":     true,
	"dueDate":     true,
	"completed":   true,
	"skipped":     true,
}

type taskWire struct {
	ID          ID         `json:"id"`
	Text        string     `json:"text"`
	Created     Timestamp  `json:"created"`
	DueDate     *DueDate   `json:"dueDate"`
	Description *string    `json:"description,omitempty"`
	Completed   *Timestamp `json:"completed,omitempty"`
	Skipped     *Timestamp `json:"skipped,omitempty"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	w := taskWire{
		ID:        t.ID,
		Text:      t.Text,
		Created:   t.Created,
		DueDate:   t.DueDate,
		Completed: t.Completed,
		Skipped:   t.Skipped,
	}
	if t.HasDescription() {
		desc := t.Description
		w.Description = &desc
	}
	if len(t.extra) == 0 {
		return json.Marshal(w)
	}

	// Keys written by other editors ride along untouched.
	base, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage, len(t.extra)+len(knownTaskKeys))
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for k, v := range t.extra {
		fields[k] = v
	}
	return json.Marshal(fields)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("model: task must be an object: %w", err)
	}
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := Task{
		ID:        w.ID,
		Text:      w.Text,
		Created:   w.Created,
		DueDate:   w.DueDate,
		Completed: w.Completed,
		Skipped:   w.Skipped,
	}
	if w.Description != nil {
		out.Description = *w.Description
		out.hasDescription = true
	}
	for k, v := range fields {
		if knownTaskKeys[k] {
			continue
		}
		if out.extra == nil {
			out.extra = make(map[string]json.RawMessage)
		}
		out.extra[k] = v
	}
	*t = out
	return nil
}

type documentWire Document

func (d Document) MarshalJSON() ([]byte, error) {
	out := d
	out.normalize()
	return json.Marshal(documentWire(out))
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var w documentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = Document(w)
	d.normalize()
	return nil
}

// Encode renders the document the way it is stored: pretty-printed with a
// two-space indent.
func Encode(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Decode parses a stored document. A JSON null or empty input is an error.
func Decode(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Document{}, fmt.Errorf("model: document is empty")
	}
	var d Document
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return Document{}, fmt.Errorf("model: decode document: %w", err)
	}
	return d, nil
}
