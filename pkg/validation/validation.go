// Package validation enforces the required-field rules applied to
// cleaned records before they are submitted upstream. Every field must
// be present and non-blank, expiry_date must be a YYYY-MM-DD date and
// amount must be a number.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/records"
)

// Labels are the human readable field names used in messages.
var Labels = map[records.Field]string{
	records.FieldDocID:        "Document ID",
	records.FieldType:         "Type",
	records.FieldCounterparty: "Counterparty",
	records.FieldProject:      "Project",
	records.FieldExpiryDate:   "Expiry Date",
	records.FieldAmount:       "Amount",
}

// InvalidRecord describes one record that failed validation.
// Index is one based.
type InvalidRecord struct {
	Index  int                 `json:"index" yaml:"index"`
	DocID  any                 `json:"doc_id" yaml:"doc_id"`
	Errors map[string][]string `json:"errors" yaml:"errors"`
}

// Error reports a batch containing invalid records.
type Error struct {
	Invalid []InvalidRecord
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%d records are invalid", len(e.Invalid))
}

// Is implements errors.Is support.
func (e *Error) Is(target error) bool {
	return target == errors.ErrInvalidInput
}

// document is the validated shape of one cleaned record.
type document struct {
	DocID        *string  `json:"doc_id" validate:"required,notblank"`
	Type         *string  `json:"type" validate:"required,notblank"`
	Counterparty *string  `json:"counterparty" validate:"required,notblank"`
	Project      *string  `json:"project" validate:"required,notblank"`
	ExpiryDate   *string  `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Amount       *float64 `json:"amount" validate:"required"`
}

// Validator checks cleaned records. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// RegisterValidation only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return &Validator{v: v}
}

// Records validates canonical records, returning the invalid ones.
func (val *Validator) Records(recs []records.CanonicalRecord) []InvalidRecord {
	maps := make([]map[string]any, len(recs))
	for i, r := range recs {
		maps[i] = r.Map()
	}
	return val.Maps(maps)
}

// Maps validates snake_case keyed records, returning the invalid ones.
func (val *Validator) Maps(items []map[string]any) []InvalidRecord {
	var invalid []InvalidRecord
	for i, item := range items {
		if errs := val.Record(item); len(errs) > 0 {
			invalid = append(invalid, InvalidRecord{
				Index:  i + 1,
				DocID:  item[string(records.FieldDocID)],
				Errors: errs,
			})
		}
	}
	return invalid
}

// Check validates recs and returns a *Error when any is invalid.
func (val *Validator) Check(recs []records.CanonicalRecord) error {
	if invalid := val.Records(recs); len(invalid) > 0 {
		return &Error{Invalid: invalid}
	}
	return nil
}

// Record validates a single snake_case keyed record and returns the
// messages per field, or nil when it is valid.
func (val *Validator) Record(m map[string]any) map[string][]string {
	errs := make(map[string][]string)
	doc := val.decode(m, errs)

	if err := val.v.Struct(doc); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				name := fe.Field()
				if _, seen := errs[name]; seen {
					continue
				}
				errs[name] = append(errs[name], message(records.Field(name), fe.Tag()))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// decode converts loosely typed input into a document, recording type
// errors that the struct rules cannot express.
func (val *Validator) decode(m map[string]any, errs map[string][]string) *document {
	doc := &document{}
	for _, f := range []struct {
		field records.Field
		dst   **string
	}{
		{records.FieldDocID, &doc.DocID},
		{records.FieldType, &doc.Type},
		{records.FieldCounterparty, &doc.Counterparty},
		{records.FieldProject, &doc.Project},
		{records.FieldExpiryDate, &doc.ExpiryDate},
	} {
		v := m[string(f.field)]
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			if _, isBool := v.(bool); isBool {
				errs[string(f.field)] = []string{message(f.field, "invalid")}
				continue
			}
			if s, ok = records.Stringify(v); !ok {
				errs[string(f.field)] = []string{message(f.field, "invalid")}
				continue
			}
		}
		*f.dst = &s
	}

	if v := m[string(records.FieldAmount)]; v != nil {
		if f, ok := number(v); ok {
			doc.Amount = &f
		} else {
			errs[string(records.FieldAmount)] = []string{message(records.FieldAmount, "number")}
		}
	}
	return doc
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case bool:
		return 0, false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	s, ok := records.Stringify(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func message(f records.Field, tag string) string {
	label := Labels[f]
	switch tag {
	case "required":
		return label + " is required."
	case "notblank":
		return label + " cannot be blank."
	case "number":
		return label + " must be a number."
	default:
		return label + " is invalid."
	}
}
