// Package table converts docsync values into rows for table output.
package table

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/docsync/internal/utils/ptr"
	"github.com/agentstation/docsync/pkg/aliases"
	"github.com/agentstation/docsync/pkg/records"
	"github.com/agentstation/docsync/pkg/validation"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Empty is printed for absent values.
const Empty = "-"

// Data represents table formatting data.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

var titleCaser = cases.Title(language.English)

// Title turns a snake_case or camelCase key into a column header.
func Title(key string) string {
	var b strings.Builder
	for i, r := range key {
		if r >= 'A' && r <= 'Z' && i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(b.String()))
	for i, w := range words {
		if strings.EqualFold(w, "id") {
			words[i] = "ID"
			continue
		}
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

// CleanedItemsToTableData renders cleaned items with one column per
// canonical field.
func CleanedItemsToTableData(items []records.CleanedItem) Data {
	headers := make([]string, len(records.Fields))
	for i, f := range records.Fields {
		headers[i] = Title(f.String())
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.DocID,
			str(item.Type),
			str(item.Counterparty),
			str(item.Project),
			str(item.ExpiryDate),
			amount(item.Amount),
		})
	}

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
}

// RawRecordsToTableData renders raw records with one column per key seen
// in any record, sorted by name. Nested values are shown as JSON.
func RawRecordsToTableData(recs []records.RawRecord) Data {
	seen := map[string]bool{}
	var keys []string
	for _, rec := range recs {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := make([]string, len(keys))
		for i, k := range keys {
			v, ok := rec[k]
			if !ok {
				row[i] = Empty
				continue
			}
			row[i] = cell(v)
		}
		rows = append(rows, row)
	}

	return Data{Headers: keys, Rows: rows}
}

// InvalidRecordsToTableData renders one row per failing field.
func InvalidRecordsToTableData(invalid []validation.InvalidRecord) Data {
	var rows [][]string
	for _, inv := range invalid {
		fields := make([]string, 0, len(inv.Errors))
		for f := range inv.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		for _, f := range fields {
			rows = append(rows, []string{
				strconv.Itoa(inv.Index),
				cell(inv.DocID),
				f,
				strings.Join(inv.Errors[f], "; "),
			})
		}
	}

	return Data{
		Headers:         []string{"#", "Doc ID", "Field", "Errors"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft},
	}
}

// AliasesToTableData renders the alias table in canonical field order.
func AliasesToTableData(t *aliases.Table) Data {
	rows := make([][]string, 0, len(records.Fields))
	for _, f := range t.Fields() {
		rows = append(rows, []string{f.String(), strings.Join(t.Aliases(f), ", ")})
	}
	return Data{
		Headers: []string{"Field", "Aliases (priority order)"},
		Rows:    rows,
	}
}

// KeyValueToTableData renders ordered pairs as a two column table.
func KeyValueToTableData(pairs [][2]string) Data {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{p[0], p[1]}
	}
	return Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

// MapToTableData renders a map as key/value rows sorted by key.
func MapToTableData(m map[string]any) Data {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, len(keys))
	for i, k := range keys {
		pairs[i] = [2]string{k, cell(m[k])}
	}
	return KeyValueToTableData(pairs)
}

func str(s *string) string {
	return ptr.Value(s, Empty)
}

func amount(f *float64) string {
	if f == nil {
		return Empty
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func cell(v any) string {
	if v == nil {
		return Empty
	}
	if s, ok := records.Stringify(v); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Empty
	}
	return string(b)
}
