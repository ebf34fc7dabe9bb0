// Package resolver extracts canonical field values from raw records by
// trying alias candidates in priority order.
package resolver

import (
	"strings"

	"github.com/agentstation/docsync/pkg/aliases"
	"github.com/agentstation/docsync/pkg/records"
)

// Resolve returns the value of the first candidate present in record
// with a non-empty value, or nil. Dotted candidates such as
// "meta.project" descend through nested mappings.
func Resolve(record records.RawRecord, candidates []string) any {
	for _, key := range candidates {
		v, ok := lookup(record, key)
		if ok && !records.IsEmpty(v) {
			return v
		}
	}
	return nil
}

func lookup(record records.RawRecord, key string) (any, bool) {
	if !strings.Contains(key, ".") {
		v, ok := record[key]
		return v, ok
	}

	var cur any = map[string]any(record)
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case records.RawRecord:
		return m, true
	}
	return nil, false
}

// Resolver resolves canonical fields through an alias table.
type Resolver struct {
	table *aliases.Table
}

// New returns a Resolver over table, or over the default table when nil.
func New(table *aliases.Table) *Resolver {
	if table == nil {
		table = aliases.Default()
	}
	return &Resolver{table: table}
}

// Field resolves one canonical field of record.
func (r *Resolver) Field(record records.RawRecord, field records.Field) any {
	return Resolve(record, r.table.Aliases(field))
}

// Table returns the alias table in use.
func (r *Resolver) Table() *aliases.Table {
	return r.table
}
