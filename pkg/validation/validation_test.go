package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/records"
	"github.com/agentstation/docsync/pkg/validation"
)

func validMap() map[string]any {
	return map[string]any{
		"doc_id":       "D1",
		"type":         "NDA",
		"counterparty": "Acme",
		"project":      "X",
		"expiry_date":  "2024-01-15",
		"amount":       100.0,
	}
}

func TestRecord(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name   string
		mutate func(m map[string]any)
		want   map[string][]string
	}{
		{
			name:   "valid",
			mutate: func(map[string]any) {},
			want:   nil,
		},
		{
			name:   "numeric doc id",
			mutate: func(m map[string]any) { m["doc_id"] = 1001 },
			want:   nil,
		},
		{
			name:   "amount as numeric string",
			mutate: func(m map[string]any) { m["amount"] = "250.5" },
			want:   nil,
		},
		{
			name:   "missing doc id",
			mutate: func(m map[string]any) { delete(m, "doc_id") },
			want:   map[string][]string{"doc_id": {"Document ID is required."}},
		},
		{
			name:   "null type",
			mutate: func(m map[string]any) { m["type"] = nil },
			want:   map[string][]string{"type": {"Type is required."}},
		},
		{
			name:   "blank counterparty",
			mutate: func(m map[string]any) { m["counterparty"] = "   " },
			want:   map[string][]string{"counterparty": {"Counterparty cannot be blank."}},
		},
		{
			name:   "empty project",
			mutate: func(m map[string]any) { m["project"] = "" },
			want:   map[string][]string{"project": {"Project cannot be blank."}},
		},
		{
			name:   "bad date",
			mutate: func(m map[string]any) { m["expiry_date"] = "15/01/2024" },
			want:   map[string][]string{"expiry_date": {"Expiry Date is invalid."}},
		},
		{
			name:   "missing date",
			mutate: func(m map[string]any) { delete(m, "expiry_date") },
			want:   map[string][]string{"expiry_date": {"Expiry Date is required."}},
		},
		{
			name:   "amount not a number",
			mutate: func(m map[string]any) { m["amount"] = "lots" },
			want:   map[string][]string{"amount": {"Amount must be a number."}},
		},
		{
			name:   "amount bool",
			mutate: func(m map[string]any) { m["amount"] = true },
			want:   map[string][]string{"amount": {"Amount must be a number."}},
		},
		{
			name:   "missing amount",
			mutate: func(m map[string]any) { m["amount"] = nil },
			want:   map[string][]string{"amount": {"Amount is required."}},
		},
		{
			name:   "composite type",
			mutate: func(m map[string]any) { m["type"] = map[string]any{"a": 1} },
			want:   map[string][]string{"type": {"Type is invalid."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMap()
			tt.mutate(m)
			assert.Equal(t, tt.want, v.Record(m))
		})
	}
}

func TestRecordEverythingMissing(t *testing.T) {
	errs := validation.New().Record(map[string]any{})
	require.Len(t, errs, 6)
	assert.Equal(t, []string{"Document ID is required."}, errs["doc_id"])
	assert.Equal(t, []string{"Amount is required."}, errs["amount"])
}

func TestMaps(t *testing.T) {
	bad := validMap()
	bad["doc_id"] = "D2"
	bad["amount"] = "n/a"

	invalid := validation.New().Maps([]map[string]any{validMap(), bad})
	require.Len(t, invalid, 1)
	assert.Equal(t, 2, invalid[0].Index)
	assert.Equal(t, "D2", invalid[0].DocID)
	assert.Equal(t, map[string][]string{"amount": {"Amount must be a number."}}, invalid[0].Errors)
}

func TestCheck(t *testing.T) {
	id := "D1"
	err := validation.New().Check([]records.CanonicalRecord{{DocID: &id}})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	var vErr *validation.Error
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Invalid, 1)
	assert.Equal(t, "D1", vErr.Invalid[0].DocID)
	assert.Len(t, vErr.Invalid[0].Errors, 5)

	assert.NoError(t, validation.New().Check(nil))
}
