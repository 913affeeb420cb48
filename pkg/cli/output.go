package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
)

// OutputFormat selects how Output renders a result.
type OutputFormat string

const (
	FormatYAML  OutputFormat = "yaml"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatRaw   OutputFormat = "raw"
)

// OutputOptions configures Output.
type OutputOptions struct {
	// Format defaults to YAML.
	Format OutputFormat

	// File is written instead of stdout when set.
	File string

	// Indent is the JSON indent. Defaults to two spaces.
	Indent string

	// Writer overrides File and stdout.
	Writer io.Writer
}

// Table is a result that renders as rows of columns.
type Table struct {
	Header []string
	Rows   [][]string
}

// Tabler is implemented by results that have a table form.
type Tabler interface {
	Table() Table
}

// Output writes result in the requested format.
func Output(result any, opts OutputOptions) error {
	var w io.Writer = os.Stdout
	if opts.Writer != nil {
		w = opts.Writer
	} else if opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return fmt.Errorf("cli: create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch opts.Format {
	case FormatYAML, "":
		return outputYAML(w, result)
	case FormatJSON:
		return outputJSON(w, result, opts.Indent)
	case FormatRaw:
		return outputRaw(w, result)
	case FormatTable:
		switch v := result.(type) {
		case Table:
			return outputTable(w, v)
		case Tabler:
			return outputTable(w, v.Table())
		}
		return outputYAML(w, result)
	}
	return fmt.Errorf("cli: unsupported output format %q", opts.Format)
}

func outputJSON(w io.Writer, result any, indent string) error {
	if indent == "" {
		indent = "  "
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	return enc.Encode(result)
}

func outputYAML(w io.Writer, result any) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("cli: format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func outputRaw(w io.Writer, result any) error {
	switch v := result.(type) {
	case []byte:
		_, err := w.Write(v)
		return err
	case string:
		_, err := io.WriteString(w, v)
		return err
	}
	return outputYAML(w, result)
}

var headerStyle = lipgloss.NewStyle().Bold(true)

func outputTable(w io.Writer, t Table) error {
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	line := func(cells []string, style *lipgloss.Style) string {
		var sb strings.Builder
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if style != nil {
				cell = style.Render(cell)
			}
			sb.WriteString(cell)
			if i < len(widths)-1 {
				sb.WriteString(pad + "  ")
			}
		}
		return strings.TrimRight(sb.String(), " ") + "\n"
	}

	if _, err := io.WriteString(w, line(t.Header, &headerStyle)); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if _, err := io.WriteString(w, line(row, nil)); err != nil {
			return err
		}
	}
	return nil
}

// PrintSuccess prints a check-marked message to stdout.
func PrintSuccess(format string, args ...any) {
	fmt.Printf("✓ "+format+"\n", args...)
}

// PrintWarning prints a warning to stderr.
func PrintWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}
