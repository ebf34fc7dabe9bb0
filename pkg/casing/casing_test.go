package casing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/docsync/pkg/casing"
)

func TestToCamel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"doc_id", "docId"},
		{"expiry date", "expiryDate"},
		{"expiry_date", "expiryDate"},
		{"cleaned_items", "cleanedItems"},
		{"batch__id", "batchId"},
		{"DOC_ID", "docId"},
		{"type", "type"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, casing.ToCamel(tt.in))
		})
	}
}

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"expiryDate", "expiry_date"},
		{"docId", "doc_id"},
		{"batchId", "batch_id"},
		{"cleanedItems", "cleaned_items"},
		{"Amount", "amount"},
		{"doc_id", "doc_id"},
		{"docID", "doc_i_d"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, casing.ToSnake(tt.in))
		})
	}
}

func TestMapConversion(t *testing.T) {
	nested := map[string]any{"expiryDate": "kept"}
	in := map[string]any{"batchId": 7, "cleanedItems": []any{nested}}

	out := casing.MapToSnake(in)
	assert.Equal(t, map[string]any{"batch_id": 7, "cleaned_items": []any{nested}}, out)
	assert.Contains(t, in, "batchId", "input is not modified")

	assert.Equal(t, map[string]any{"docId": "D1", "expiryDate": nil},
		casing.MapToCamel(map[string]any{"doc_id": "D1", "expiry_date": nil}))
	assert.Nil(t, casing.MapToCamel(nil))
}
