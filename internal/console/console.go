// Package console prints ghostline's user-facing status lines and logs.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Console writes one colored status line per call. It is safe for
// concurrent use.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	green   *color.Color
	red     *color.Color
	yellow  *color.Color
	cyan    *color.Color
	magenta *color.Color
	gray    *color.Color
	bold    *color.Color

	// Timestamps prefixes every status line with the local time.
	Timestamps bool
	now        func() time.Time
}

// New returns a Console writing to out. With noColor set, no escape codes
// are emitted regardless of the terminal.
func New(out io.Writer, noColor bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	c := &Console{
		out:     out,
		green:   color.New(color.FgGreen),
		red:     color.New(color.FgRed),
		yellow:  color.New(color.FgYellow),
		cyan:    color.New(color.FgCyan),
		magenta: color.New(color.FgMagenta),
		gray:    color.New(color.FgHiBlack),
		bold:    color.New(color.FgYellow, color.Bold),
		now:     time.Now,
	}
	if noColor {
		for _, col := range []*color.Color{c.green, c.red, c.yellow, c.cyan, c.magenta, c.gray, c.bold} {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) line(col *color.Color, tag, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Timestamps {
		c.gray.Fprint(c.out, c.now().Format("15:04:05")+" ")
	}
	col.Fprint(c.out, tag)
	fmt.Fprintf(c.out, " %s\n", fmt.Sprintf(format, args...))
}

// Success prints a green [✓] line.
func (c *Console) Success(format string, args ...any) { c.line(c.green, "[✓]", format, args...) }

// Error prints a red [✗] line.
func (c *Console) Error(format string, args ...any) { c.line(c.red, "[✗]", format, args...) }

// Warning prints a yellow [!] line.
func (c *Console) Warning(format string, args ...any) { c.line(c.yellow, "[!]", format, args...) }

// Info prints a cyan [i] line.
func (c *Console) Info(format string, args ...any) { c.line(c.cyan, "[i]", format, args...) }

// System prints a magenta [»] line.
func (c *Console) System(format string, args ...any) { c.line(c.magenta, "[»]", format, args...) }

// Heading prints a bold section title followed by a blank line.
func (c *Console) Heading(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bold.Fprintf(c.out, "--- %s ---\n\n", title)
}

// Print writes text as-is.
func (c *Console) Print(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, text)
}

// Accent writes text in cyan, for prompts and menu items.
func (c *Console) Accent(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cyan.Fprint(c.out, text)
}

// Muted writes text in gray.
func (c *Console) Muted(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gray.Fprint(c.out, text)
}

// Writer returns the underlying writer.
func (c *Console) Writer() io.Writer {
	return c.out
}
