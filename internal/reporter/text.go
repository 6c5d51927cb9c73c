// Package reporter renders generation results.
//
// The text formatter uses Lip Gloss for styling and Chroma for syntax
// highlighting of the YAML preview.
package reporter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles for different parts of the output
var (
	// Color detection using termenv (respects NO_COLOR, CLICOLOR_FORCE, terminal detection)
	useColors = termenv.EnvColorProfile() != termenv.Ascii

	// Success line style
	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("35")) // Green

	// Detail label style
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray

	// Detail value style
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// Preview header style
	fileLocStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")) // Light gray

	// Line number style
	lineNumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray

	// Separator style
	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")) // Darker gray
)

// TextOptions configures the text reporter output.
type TextOptions struct {
	// Color enables/disables colored output. Default: auto-detect.
	Color *bool

	// SyntaxHighlight enables YAML syntax highlighting in the preview.
	SyntaxHighlight bool

	// ShowDetails shows the run details (input, service, image, stages).
	ShowDetails bool

	// ShowPreview shows the emitted document below the summary.
	ShowPreview bool

	// ChromaStyle is the Chroma style name for syntax highlighting.
	// Default: "monokai" for dark terminals, "github" for light.
	ChromaStyle string
}

// DefaultTextOptions returns sensible defaults for text output.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Color:           nil, // auto-detect
		SyntaxHighlight: true,
		ShowDetails:     false,
		ShowPreview:     false,
		ChromaStyle:     "", // auto-detect
	}
}

// TextReporter formats a generation summary as styled text output.
type TextReporter struct {
	opts      TextOptions
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

// NewTextReporter creates a new text reporter with the given options.
func NewTextReporter(opts TextOptions) *TextReporter {
	r := &TextReporter{opts: opts}

	// Determine if colors should be used
	colorEnabled := useColors
	if opts.Color != nil {
		colorEnabled = *opts.Color
	}

	if colorEnabled && opts.SyntaxHighlight {
		r.lexer = lexers.Get("yaml")
		if r.lexer == nil {
			r.lexer = lexers.Fallback
		}
		r.lexer = chroma.Coalesce(r.lexer)

		// Select style based on terminal background or user preference
		styleName := opts.ChromaStyle
		if styleName == "" {
			if lipgloss.HasDarkBackground() {
				styleName = "monokai"
			} else {
				styleName = "github"
			}
		}
		r.style = styles.Get(styleName)
		if r.style == nil {
			r.style = styles.Fallback
		}

		r.formatter = formatters.Get("terminal256")
		if r.formatter == nil {
			r.formatter = formatters.Fallback
		}
	}

	return r
}

// Print writes the generation summary to the writer.
func (r *TextReporter) Print(w io.Writer, s Summary) error {
	colorEnabled := useColors
	if r.opts.Color != nil {
		colorEnabled = *r.opts.Color
	}

	msg := "Successfully generated docker-compose.yml at " + s.Output
	if colorEnabled {
		msg = successStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)

	if r.opts.ShowDetails {
		r.printDetails(w, s, colorEnabled)
	}

	if r.opts.ShowPreview && len(s.Document) > 0 {
		r.printPreview(w, s, colorEnabled)
	}

	return nil
}

// printDetails writes the labeled run details below the success line.
func (r *TextReporter) printDetails(w io.Writer, s Summary, colorEnabled bool) {
	rows := []struct {
		label string
		value string
	}{
		{"input", s.Input},
		{"service", s.Service},
		{"image", s.Image},
		{"stages", strconv.Itoa(s.Stages)},
		{"instructions", strconv.Itoa(s.Instructions)},
	}

	for _, row := range rows {
		if row.value == "" {
			continue
		}
		label := fmt.Sprintf("%-13s", row.label+":")
		if colorEnabled {
			fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), valueStyle.Render(row.value))
		} else {
			fmt.Fprintf(w, "%s %s\n", label, row.value)
		}
	}
}

// printPreview renders the emitted document with optional syntax highlighting.
func (r *TextReporter) printPreview(w io.Writer, s Summary, colorEnabled bool) {
	lines := strings.Split(strings.TrimSuffix(string(s.Document), "\n"), "\n")

	fmt.Fprintln(w)
	if colorEnabled {
		fmt.Fprintln(w, fileLocStyle.Render(s.Output))
		fmt.Fprintln(w, separatorStyle.Render("────────────────────"))
	} else {
		fmt.Fprintln(w, s.Output)
		fmt.Fprintln(w, "--------------------")
	}

	for i, line := range lines {
		lineContent := strings.TrimSuffix(line, "\r")

		var lineNum string
		if colorEnabled {
			lineNum = lineNumStyle.Render(fmt.Sprintf(" %3d │", i+1))
		} else {
			lineNum = fmt.Sprintf(" %3d |", i+1)
		}

		var content string
		if colorEnabled && r.lexer != nil && r.style != nil && r.formatter != nil {
			content = r.highlightLine(lineContent)
		} else {
			content = lineContent
		}

		fmt.Fprintf(w, "%s %s\n", lineNum, content)
	}

	if colorEnabled {
		fmt.Fprintln(w, separatorStyle.Render("────────────────────"))
	} else {
		fmt.Fprintln(w, "--------------------")
	}
}

// highlightLine applies syntax highlighting to a single line.
func (r *TextReporter) highlightLine(line string) string {
	iterator, err := r.lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var buf bytes.Buffer
	err = r.formatter.Format(&buf, r.style, iterator)
	if err != nil {
		return line
	}

	// Trim trailing newline that formatter might add
	return strings.TrimSuffix(buf.String(), "\n")
}
