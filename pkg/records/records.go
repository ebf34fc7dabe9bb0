// Package records defines the data model shared by every stage of the
// document pipeline: raw upstream records, canonical records, cleaned
// items and the opaque batch identifier.
package records

import (
	"encoding/json"
	"strconv"

	"github.com/agentstation/docsync/internal/utils/ptr"
	"github.com/agentstation/docsync/pkg/casing"
)

// RawRecord is one document record exactly as the upstream sent it.
// Keys and value shapes vary from record to record.
type RawRecord map[string]any

// Field names one of the six canonical fields.
type Field string

// Canonical fields.
const (
	FieldDocID        Field = "doc_id"
	FieldType         Field = "type"
	FieldCounterparty Field = "counterparty"
	FieldProject      Field = "project"
	FieldExpiryDate   Field = "expiry_date"
	FieldAmount       Field = "amount"
)

// Fields lists the canonical fields in canonical order.
var Fields = []Field{
	FieldDocID,
	FieldType,
	FieldCounterparty,
	FieldProject,
	FieldExpiryDate,
	FieldAmount,
}

// String implements fmt.Stringer.
func (f Field) String() string {
	return string(f)
}

// Valid reports whether f is one of the canonical fields.
func (f Field) Valid() bool {
	for _, c := range Fields {
		if c == f {
			return true
		}
	}
	return false
}

// CanonicalRecord is a record reduced to the six canonical fields.
// A nil field could not be resolved or coerced and encodes as null.
type CanonicalRecord struct {
	DocID        *string  `json:"doc_id" yaml:"doc_id"`
	Type         *string  `json:"type" yaml:"type"`
	Counterparty *string  `json:"counterparty" yaml:"counterparty"`
	Project      *string  `json:"project" yaml:"project"`
	ExpiryDate   *string  `json:"expiry_date" yaml:"expiry_date"`
	Amount       *float64 `json:"amount" yaml:"amount"`
}

// Value returns the field's value, or nil when it is unset.
func (r CanonicalRecord) Value(f Field) any {
	switch f {
	case FieldDocID:
		return deref(r.DocID)
	case FieldType:
		return deref(r.Type)
	case FieldCounterparty:
		return deref(r.Counterparty)
	case FieldProject:
		return deref(r.Project)
	case FieldExpiryDate:
		return deref(r.ExpiryDate)
	case FieldAmount:
		if r.Amount == nil {
			return nil
		}
		return *r.Amount
	}
	return nil
}

// Map renders the record as a snake_case keyed map holding the six fields.
func (r CanonicalRecord) Map() map[string]any {
	m := make(map[string]any, len(Fields))
	for _, f := range Fields {
		m[string(f)] = r.Value(f)
	}
	return m
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// CleanedItem is a retained, deduplicated record as handed back to callers.
type CleanedItem struct {
	DocID        string   `json:"docId" yaml:"docId"`
	Type         *string  `json:"type" yaml:"type"`
	Counterparty *string  `json:"counterparty" yaml:"counterparty"`
	Project      *string  `json:"project" yaml:"project"`
	ExpiryDate   *string  `json:"expiryDate" yaml:"expiryDate"`
	Amount       *float64 `json:"amount" yaml:"amount"`
}

// NewCleanedItem builds a CleanedItem from a record whose doc_id is set.
func NewCleanedItem(r CanonicalRecord) CleanedItem {
	item := CleanedItem{
		Type:         r.Type,
		Counterparty: r.Counterparty,
		Project:      r.Project,
		ExpiryDate:   r.ExpiryDate,
		Amount:       r.Amount,
	}
	if r.DocID != nil {
		item.DocID = *r.DocID
	}
	return item
}

// Canonical projects the item back into a CanonicalRecord.
func (c CleanedItem) Canonical() CanonicalRecord {
	id := c.DocID
	return CanonicalRecord{
		DocID:        &id,
		Type:         c.Type,
		Counterparty: c.Counterparty,
		Project:      c.Project,
		ExpiryDate:   c.ExpiryDate,
		Amount:       c.Amount,
	}
}

// Map renders the item as a camelCase keyed map holding the six fields.
func (c CleanedItem) Map() map[string]any {
	return casing.MapToCamel(c.Canonical().Map())
}

// CanonicalFromMap projects a snake_case keyed map into a CanonicalRecord.
// Keys outside the six fields are dropped. String fields accept any
// scalar; amount accepts a number or a numeric string.
func CanonicalFromMap(m map[string]any) CanonicalRecord {
	var r CanonicalRecord
	r.DocID = stringField(m[string(FieldDocID)])
	r.Type = stringField(m[string(FieldType)])
	r.Counterparty = stringField(m[string(FieldCounterparty)])
	r.Project = stringField(m[string(FieldProject)])
	r.ExpiryDate = stringField(m[string(FieldExpiryDate)])
	r.Amount = floatField(m[string(FieldAmount)])
	return r
}

func stringField(v any) *string {
	return ptr.If(Stringify(v))
}

func floatField(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return ptr.To(f)
}

// Stringify renders a scalar as text. Numbers use the shortest
// representation without an exponent. Composite values and nil are
// reported as not ok.
func Stringify(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case bool:
		return strconv.FormatBool(s), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), true
	case int:
		return strconv.Itoa(s), true
	case int8:
		return strconv.FormatInt(int64(s), 10), true
	case int16:
		return strconv.FormatInt(int64(s), 10), true
	case int32:
		return strconv.FormatInt(int64(s), 10), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case uint:
		return strconv.FormatUint(uint64(s), 10), true
	case uint8:
		return strconv.FormatUint(uint64(s), 10), true
	case uint16:
		return strconv.FormatUint(uint64(s), 10), true
	case uint32:
		return strconv.FormatUint(uint64(s), 10), true
	case uint64:
		return strconv.FormatUint(s, 10), true
	default:
		return "", false
	}
}

// IsEmpty reports whether v is one of the sentinel empty values:
// nil, the empty string, or "N/A".
func IsEmpty(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == "" || s == "N/A"
	}
	return false
}
