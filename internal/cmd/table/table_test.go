package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync/internal/utils/ptr"
	"github.com/agentstation/docsync/pkg/aliases"
	"github.com/agentstation/docsync/pkg/records"
	"github.com/agentstation/docsync/pkg/validation"
)


func TestTitle(t *testing.T) {
	tests := map[string]string{
		"doc_id":       "Doc ID",
		"expiry_date":  "Expiry Date",
		"expiryDate":   "Expiry Date",
		"counterparty": "Counterparty",
		"batch-id":     "Batch ID",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Title(in))
		})
	}
}

func TestCleanedItemsToTableData(t *testing.T) {
	items := []records.CleanedItem{
		{DocID: "D1", Type: ptr.To("NDA"), ExpiryDate: ptr.To("2024-01-15"), Amount: ptr.To(5200.5)},
		{DocID: "D2"},
	}

	data := CleanedItemsToTableData(items)

	assert.Equal(t, []string{"Doc ID", "Type", "Counterparty", "Project", "Expiry Date", "Amount"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"D1", "NDA", "-", "-", "2024-01-15", "5200.5"}, data.Rows[0])
	assert.Equal(t, []string{"D2", "-", "-", "-", "-", "-"}, data.Rows[1])
	assert.Len(t, data.ColumnAlignment, 6)
}

func TestRawRecordsToTableData(t *testing.T) {
	recs := []records.RawRecord{
		{"id": "D1", "value": 100.0},
		{"id": "D2", "meta": map[string]any{"project": "X"}},
	}

	data := RawRecordsToTableData(recs)

	assert.Equal(t, []string{"id", "meta", "value"}, data.Headers)
	assert.Equal(t, []string{"D1", "-", "100"}, data.Rows[0])
	assert.Equal(t, []string{"D2", `{"project":"X"}`, "-"}, data.Rows[1])
}

func TestInvalidRecordsToTableData(t *testing.T) {
	invalid := []validation.InvalidRecord{
		{
			Index: 2,
			DocID: "D2",
			Errors: map[string][]string{
				"type":   {"Type cannot be blank."},
				"amount": {"Amount is required."},
			},
		},
	}

	data := InvalidRecordsToTableData(invalid)

	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"2", "D2", "amount", "Amount is required."}, data.Rows[0])
	assert.Equal(t, []string{"2", "D2", "type", "Type cannot be blank."}, data.Rows[1])
}

func TestAliasesToTableData(t *testing.T) {
	data := AliasesToTableData(aliases.Default())

	require.Len(t, data.Rows, len(records.Fields))
	assert.Equal(t, "doc_id", data.Rows[0][0])
	assert.Contains(t, data.Rows[0][1], "documentId")
	assert.Contains(t, data.Rows[3][1], "meta.project")
}

func TestKeyValueToTableData(t *testing.T) {
	data := KeyValueToTableData([][2]string{{"Batch", "7"}, {"Fetched", "4"}})

	assert.Equal(t, []string{"Property", "Value"}, data.Headers)
	assert.Equal(t, [][]string{{"Batch", "7"}, {"Fetched", "4"}}, data.Rows)
}

func TestMapToTableData(t *testing.T) {
	data := MapToTableData(map[string]any{
		"status":  "accepted",
		"score":   6.0,
		"details": map[string]any{"ok": true},
		"note":    nil,
	})

	assert.Equal(t, [][]string{
		{"details", `{"ok":true}`},
		{"note", Empty},
		{"score", "6"},
		{"status", "accepted"},
	}, data.Rows)
}
