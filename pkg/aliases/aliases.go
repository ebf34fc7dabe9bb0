// Package aliases holds the field alias table: for each canonical field,
// the ordered list of upstream keys that may carry its value. Earlier
// aliases win. A table is immutable once built.
package aliases

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/records"
)

// Table maps every canonical field to its ordered alias candidates.
type Table struct {
	entries map[records.Field][]string
}

// Default returns a fresh copy of the built-in alias table.
func Default() *Table {
	return &Table{entries: map[records.Field][]string{
		records.FieldDocID:        {"id", "documentId", "ref", "document_ref", "doc_number", "doc_id"},
		records.FieldType:         {"docType", "category", "document_type", "doc_category", "type"},
		records.FieldCounterparty: {"vendorName", "supplier", "partyA", "vendor", "party_name"},
		records.FieldProject:      {"projectName", "project_name", "proj", "meta.project", "project"},
		records.FieldExpiryDate:   {"expiry", "expiryDate", "end_date", "valid_till", "expires_on", "expiration"},
		records.FieldAmount:       {"value", "contractValue", "amount_aed", "total", "contract_amount", "amount"},
	}}
}

// New builds a table from a field-name to aliases mapping. The mapping
// is copied; it must cover all six canonical fields, each with at least
// one non-blank alias, and name no other field.
func New(m map[string][]string) (*Table, error) {
	t := &Table{entries: make(map[records.Field][]string, len(m))}
	for name, list := range m {
		f := records.Field(name)
		if !f.Valid() {
			return nil, errors.NewValidationError(name, list, "unknown canonical field")
		}
		t.entries[f] = slices.Clone(list)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that every canonical field has at least one alias.
func (t *Table) Validate() error {
	if t == nil {
		return errors.NewValidationError("", nil, "alias table is nil")
	}
	for _, f := range records.Fields {
		list, ok := t.entries[f]
		if !ok || len(list) == 0 {
			return errors.NewValidationError(string(f), nil, "at least one alias is required")
		}
		for i, alias := range list {
			if strings.TrimSpace(alias) == "" {
				return errors.NewValidationError(string(f), alias, fmt.Sprintf("alias %d is blank", i))
			}
			if strings.HasPrefix(alias, ".") || strings.HasSuffix(alias, ".") || strings.Contains(alias, "..") {
				return errors.NewValidationError(string(f), alias, fmt.Sprintf("alias %q has an empty path segment", alias))
			}
		}
	}
	return nil
}

// Aliases returns a copy of the candidates for f, in priority order.
func (t *Table) Aliases(f records.Field) []string {
	return slices.Clone(t.entries[f])
}

// Fields returns the canonical fields in canonical order.
func (t *Table) Fields() []records.Field {
	return slices.Clone(records.Fields)
}

// Map returns the table as a plain field-name keyed map.
func (t *Table) Map() map[string][]string {
	m := make(map[string][]string, len(t.entries))
	for f, list := range t.entries {
		m[string(f)] = slices.Clone(list)
	}
	return m
}

// MarshalYAML emits the table in canonical field order.
func (t *Table) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(records.Fields))
	for _, f := range records.Fields {
		out = append(out, yaml.MapItem{Key: string(f), Value: t.entries[f]})
	}
	return out, nil
}

// MarshalJSON emits the table as an object in canonical field order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range records.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(string(f))
		list, err := json.Marshal(t.entries[f])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(list)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Parse decodes a YAML alias document. The document is either a bare
// field mapping or one nested under an "aliases" key.
func Parse(data []byte) (*Table, error) {
	var doc struct {
		Aliases map[string][]string `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Aliases) > 0 {
		return New(doc.Aliases)
	}

	var bare map[string][]string
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	return New(bare)
}

// LoadFile reads and validates an alias table from a YAML file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("aliases", "failed to read alias file", errors.WrapIO("read", path, err))
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.NewConfigError("aliases", fmt.Sprintf("invalid alias file %s", path), err)
	}
	return t, nil
}
