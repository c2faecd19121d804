package format

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/ktcst/kotlin/parser"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"github.com/rivo/uniseg"
)

const tabWidth = 4

// DiagnosticRenderer prints parse errors for humans.
type DiagnosticRenderer struct {
	// Compact prints one "file:line:col: message" line per error.
	Compact bool

	// Colorize adds ANSI color escapes.
	Colorize bool

	// MaxWidth truncates source lines wider than this many columns.
	// Zero means no limit.
	MaxWidth int
}

// Render writes every error of one file. src is the file content the
// errors refer to.
func (r DiagnosticRenderer) Render(w io.Writer, src []byte, errs []*parser.Error) error {
	for i, e := range errs {
		if i > 0 && !r.Compact {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, r.Diagnostic(src, e)); err != nil {
			return err
		}
	}
	return nil
}

// Summary reports the number of errors, or nothing when there are none.
func (r DiagnosticRenderer) Summary(errorCount, fileCount int) string {
	if errorCount == 0 {
		return ""
	}
	return r.style("encountered "+pluralize(errorCount, "error")+" in "+pluralize(fileCount, "file"), "9", true) + "\n"
}

// Diagnostic renders a single error, newline terminated.
func (r DiagnosticRenderer) Diagnostic(src []byte, e *parser.Error) string {
	if r.Compact {
		return fmt.Sprintf("%s: %s\n", r.style(e.Span.Start.String(), "", true), e.Message)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", r.style("error", "9", true), r.style(e.Message, "", true))

	line := strconv.Itoa(e.Span.Start.Line)
	gutter := strings.Repeat(" ", len(line))
	bar := r.style("|", "12", false)
	fmt.Fprintf(&sb, "%s%s %s\n", gutter, r.style("-->", "12", false), e.Span.Start)

	start, end := lineBounds(src, e.Span.Start.Offset)
	text := string(src[start:end])
	prefix := expandTabs(string(src[start:min(e.Span.Start.Offset, end)]))

	covered := ""
	if e.Span.End.Offset > e.Span.Start.Offset {
		covered = string(src[e.Span.Start.Offset:min(e.Span.End.Offset, end)])
	}
	width := max(uniseg.StringWidth(expandTabs(covered)), 1)

	shown := expandTabs(text)
	if r.MaxWidth > 0 && runewidth.StringWidth(shown) > r.MaxWidth {
		shown = runewidth.Truncate(shown, r.MaxWidth, "...")
	}

	fmt.Fprintf(&sb, "%s %s\n", gutter, bar)
	fmt.Fprintf(&sb, "%s %s %s\n", r.style(line, "12", false), bar, shown)
	fmt.Fprintf(&sb, "%s %s %s%s\n", gutter, bar,
		strings.Repeat(" ", uniseg.StringWidth(prefix)),
		r.style(strings.Repeat("^", width), "9", true))
	return sb.String()
}

func (r DiagnosticRenderer) style(s, color string, bold bool) string {
	if !r.Colorize {
		return s
	}
	p := termenv.ANSI
	st := p.String(s)
	if color != "" {
		st = st.Foreground(p.Color(color))
	}
	if bold {
		st = st.Bold()
	}
	return st.String()
}

// lineBounds returns the byte range of the line containing offset,
// without its line break. "\n", "\r\n" and a lone "\r" end lines.
func lineBounds(src []byte, offset int) (int, int) {
	offset = max(min(offset, len(src)), 0)
	start := bytes.LastIndexAny(src[:offset], "\r\n") + 1
	end := bytes.IndexAny(src[offset:], "\r\n")
	if end < 0 {
		return start, len(src)
	}
	return start, offset + end
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func pluralize(count int, what string) string {
	if count == 1 {
		return "1 " + what
	}
	return fmt.Sprint(count, " ", what, "s")
}
