package output

import (
	"io"

	"github.com/agentstation/docsync/internal/cmd/table"
)

// Printer writes command results in the selected format.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a Printer for format, detecting it when empty.
func NewPrinter(w io.Writer, format string) *Printer {
	return &Printer{w: w, format: DetectFormat(format)}
}

// Format returns the resolved output format.
func (p *Printer) Format() Format {
	return p.format
}

// Print writes data. In table format the toTable conversion is used
// when given; structured formats always print data itself.
func (p *Printer) Print(data any, toTable func() table.Data) error {
	if p.format == FormatTable && toTable != nil {
		return NewFormatter(FormatTable).Format(p.w, toTable())
	}
	return NewFormatter(p.format).Format(p.w, data)
}
