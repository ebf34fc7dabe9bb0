// Package coerce converts resolved raw values into canonical dates and
// amounts. Coercion never fails loudly: a value that cannot be
// converted is reported as absent and logged at warn level.
package coerce

import (
	"encoding/json"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/records"
)

// ISODate is the output layout for coerced dates.
const ISODate = "2006-01-02"

// DefaultDateLayouts is the ordered list of accepted input layouts.
// Order is the tie-break for ambiguous input: "01/02/2024" matches the
// day-first layout before the month-first one.
var DefaultDateLayouts = []string{
	"2006-1-2",   // YYYY-MM-DD
	"2/1/2006",   // DD/MM/YYYY
	"1/2/2006",   // MM/DD/YYYY
	"Jan 2 2006", // Mon DD YYYY
	"2 Jan 2006", // DD Mon YYYY
	"20060102",   // YYYYMMDD
	"2-1-2006",   // DD-MM-YYYY
}

var (
	compactDate = regexp.MustCompile(`^\d{8}$`)
	nonNumeric  = regexp.MustCompile(`[^\d.]`)
)

// Coercer holds the date layouts and logger used for coercion.
// It is immutable and safe for concurrent use.
type Coercer struct {
	layouts []string
	logger  *zerolog.Logger
}

// Option configures a Coercer.
type Option func(*Coercer)

// WithDateLayouts replaces the date layout list. An empty list is ignored.
func WithDateLayouts(layouts ...string) Option {
	return func(c *Coercer) {
		if len(layouts) > 0 {
			c.layouts = slices.Clone(layouts)
		}
	}
}

// WithLogger sets the logger used for coercion warnings.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Coercer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Coercer using DefaultDateLayouts unless overridden.
func New(opts ...Option) *Coercer {
	c := &Coercer{
		layouts: slices.Clone(DefaultDateLayouts),
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Date parses v against the layout list and returns it as YYYY-MM-DD.
// Empty or falsy input returns false without logging.
func (c *Coercer) Date(v any) (string, bool) {
	if falsy(v) {
		return "", false
	}

	s, ok := records.Stringify(v)
	if !ok {
		c.warn("date", v, nil)
		return "", false
	}
	s = strings.TrimSpace(s)

	for _, layout := range c.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ISODate), true
		}
	}

	var lastErr error
	if compactDate.MatchString(s) {
		t, err := time.Parse("20060102", s)
		if err == nil {
			return t.Format(ISODate), true
		}
		lastErr = err
	}

	c.warn("date", s, lastErr)
	return "", false
}

// Amount converts v to a float. Strings are stripped of everything but
// digits and dots first, so "AED 5,200.50" becomes 5200.5. A comma used
// as the decimal separator is lost: "5.200,50" becomes 5.2005.
func (c *Coercer) Amount(v any) (float64, bool) {
	if records.IsEmpty(v) {
		return 0, false
	}

	switch n := v.(type) {
	case string:
		cleaned := nonNumeric.ReplaceAllString(n, "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			c.warn("amount", n, err)
			return 0, false
		}
		return f, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			c.warn("amount", n, err)
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}

	c.warn("amount", v, nil)
	return 0, false
}

func (c *Coercer) warn(kind string, v any, err error) {
	c.logger.Warn().
		Err(&errors.CoercionError{Kind: kind, Value: v, Err: err}).
		Msgf("Unable to parse %s, dropping value", kind)
}

// falsy reports the values treated as "no date": sentinel empties,
// false and numeric zero.
func falsy(v any) bool {
	if records.IsEmpty(v) {
		return true
	}
	switch n := v.(type) {
	case bool:
		return !n
	case json.Number:
		f, err := n.Float64()
		return err == nil && f == 0
	case float64:
		return n == 0
	case float32:
		return n == 0
	case int:
		return n == 0
	case int64:
		return n == 0
	case int32:
		return n == 0
	case uint:
		return n == 0
	case uint64:
		return n == 0
	}
	return false
}
