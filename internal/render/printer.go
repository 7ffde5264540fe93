package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/authkit/authctl/internal/client"
)

// Printer writes colorized status lines. It is the only place console
// narration goes; structured logs go to slog.
type Printer struct {
	out io.Writer

	info    *color.Color
	success *color.Color
	failure *color.Color
	section *color.Color
	faint   *color.Color
}

// NewPrinter returns a Printer on out. Colors are off when noColor is set
// or out is not a terminal.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	p := &Printer{
		out:     out,
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		section: color.New(color.FgYellow, color.Bold),
		faint:   color.New(color.Faint),
	}
	if noColor || !isTerminal(out) {
		for _, c := range []*color.Color{p.info, p.success, p.failure, p.section, p.faint} {
			c.DisableColor()
		}
	}
	return p
}

// Writer returns the underlying writer for plain output.
func (p *Printer) Writer() io.Writer { return p.out }

// Info prints a neutral status line.
func (p *Printer) Info(format string, args ...any) {
	p.info.Fprintf(p.out, "[..] "+format+"\n", args...)
}

// Success prints a positive status line.
func (p *Printer) Success(format string, args ...any) {
	p.success.Fprintf(p.out, "[ok] "+format+"\n", args...)
}

// Error prints a failure status line.
func (p *Printer) Error(format string, args ...any) {
	p.failure.Fprintf(p.out, "[!!] "+format+"\n", args...)
}

// Section prints a heading.
func (p *Printer) Section(title string) {
	p.section.Fprintf(p.out, "\n=== %s ===\n", title)
}

// Failure reports a failed operation with its type tag, message and any
// validation detail.
func (p *Printer) Failure(op string, err error) {
	var (
		appErr   *client.ApplicationError
		tErr     *client.TransportError
		inputErr *client.InputError
	)
	switch {
	case errors.As(err, &appErr):
		p.failure.Fprintf(p.out, "[!!] %s failed (HTTP %d, %s): %s\n", op, appErr.Status, appErr.Type, appErr.Message)
		if appErr.Detail != nil {
			p.faint.Fprintf(p.out, "     details:\n%s\n", indent(appErr.Detail.Pretty(), "     "))
		}
	case errors.As(err, &tErr):
		p.failure.Fprintf(p.out, "[!!] %s failed (TRANSPORT): %s\n", op, tErr.Error())
	case errors.As(err, &inputErr):
		p.failure.Fprintf(p.out, "[!!] %s failed (INPUT): %s\n", op, inputErr.Error())
	default:
		p.failure.Fprintf(p.out, "[!!] %s failed: %v\n", op, err)
	}
}

// JSON pretty-prints v.
func (p *Printer) JSON(v any) error {
	if raw, ok := v.(json.RawMessage); ok {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err == nil {
			buf.WriteByte('\n')
			_, err = p.out.Write(buf.Bytes())
			return err
		}
	}
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Plain prints an uncolored line.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
