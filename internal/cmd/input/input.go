// Package input reads batch and cleaned-item documents given to CLI
// commands as a file or on standard input.
package input

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/agentstation/docsync/pkg/casing"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/records"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// Read returns the contents of path, or of stdin when path is "" or "-".
func Read(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == Stdin {
		data, err := io.ReadAll(io.LimitReader(stdin, constants.MaxRequestBytes))
		if err != nil {
			return nil, errors.WrapIO("read", "stdin", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}

// document accepts both the upstream snake_case shape and the API's
// camelCase shape.
type document struct {
	BatchID      records.BatchID     `json:"batch_id"`
	BatchIDCamel records.BatchID     `json:"batchId"`
	Records      []records.RawRecord `json:"records"`
	Cleaned      []map[string]any    `json:"cleaned_items"`
	CleanedCamel []map[string]any    `json:"cleanedItems"`
}

func (d document) batchID() records.BatchID {
	if d.BatchID.String() != "" {
		return d.BatchID
	}
	return d.BatchIDCamel
}

// ParseBatch decodes a raw batch. The document is either an object with
// a batch id and a records array, or a bare array of records.
func ParseBatch(data []byte) (*records.Batch, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.NewValidationError("input", "", "input is empty")
	}

	if data[0] == '[' {
		var recs []records.RawRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return &records.Batch{Records: recs}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return &records.Batch{BatchID: doc.batchID(), Records: doc.Records}, nil
}

// ParseCleaned decodes cleaned items, converting their keys to
// snake_case. The document is either an object with a batch id and a
// cleaned_items (or cleanedItems) array, or a bare array of items.
func ParseCleaned(data []byte) (records.BatchID, []map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return records.BatchID{}, nil, errors.NewValidationError("input", "", "input is empty")
	}

	var id records.BatchID
	var items []map[string]any
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return id, nil, errors.WrapParse("json", "", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return id, nil, errors.WrapParse("json", "", err)
		}
		id = doc.batchID()
		items = doc.Cleaned
		if len(items) == 0 {
			items = doc.CleanedCamel
		}
	}

	out := make([]map[string]any, len(items))
	for i, item := range items {
		out[i] = casing.MapToSnake(item)
	}
	return id, out, nil
}
