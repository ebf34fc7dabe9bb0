package records

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// BatchID identifies an upstream batch. It is carried end to end
// exactly as received and never interpreted.
type BatchID struct {
	raw json.RawMessage
}

// NewBatchID returns a BatchID holding the given text as a JSON string.
func NewBatchID(s string) BatchID {
	b, _ := json.Marshal(s)
	return BatchID{raw: b}
}

// ParseBatchID builds a BatchID from user input. Bare integers keep
// their numeric form; anything else becomes a string.
func ParseBatchID(s string) BatchID {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return BatchID{raw: json.RawMessage(s)}
	}
	return NewBatchID(s)
}

// String returns the textual form: strings unquoted, numbers as written.
func (b BatchID) String() string {
	if len(b.raw) == 0 || bytes.Equal(b.raw, []byte("null")) {
		return ""
	}
	var s string
	if b.raw[0] == '"' && json.Unmarshal(b.raw, &s) == nil {
		return s
	}
	return string(b.raw)
}

// IsZero reports whether the id is absent, null, false, an empty string
// or the number 0. The string "0" is a real id.
func (b BatchID) IsZero() bool {
	if len(b.raw) == 0 || bytes.Equal(b.raw, []byte("null")) || bytes.Equal(b.raw, []byte("false")) {
		return true
	}
	if b.raw[0] == '"' {
		return b.String() == ""
	}
	f, err := strconv.ParseFloat(string(b.raw), 64)
	return err == nil && f == 0
}

// MarshalJSON implements json.Marshaler.
func (b BatchID) MarshalJSON() ([]byte, error) {
	if len(b.raw) == 0 {
		return []byte("null"), nil
	}
	return b.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BatchID) UnmarshalJSON(data []byte) error {
	b.raw = append(b.raw[:0], bytes.TrimSpace(data)...)
	return nil
}

// MarshalYAML renders the id as its textual form.
func (b BatchID) MarshalYAML() (any, error) {
	if b.String() == "" {
		return nil, nil
	}
	return b.String(), nil
}

// Batch is one upstream batch of raw records.
type Batch struct {
	BatchID BatchID     `json:"batch_id" yaml:"batch_id"`
	Records []RawRecord `json:"records" yaml:"records"`
}
