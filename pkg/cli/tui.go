package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the color scheme of a Frame.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultTheme is green on the terminal default.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles derives styles from t.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Section is a labeled block of lines inside a Frame. Only the last lines
// that fit are shown.
type Section struct {
	Label string
	Lines []string
}

// Frame is a boxed status screen: a title with a status tag, sections, and
// a help line below the box.
type Frame struct {
	Styles   Styles
	Title    string
	Status   string
	Sections []Section
	Help     string
}

// Render draws the frame into width columns and height rows.
func (f Frame) Render(width, height int) string {
	if width < 8 || height < 6 {
		return f.Title + " [" + f.Status + "]"
	}
	bc := f.Styles.Border
	inner := width - 4

	var out []string
	out = append(out, bc.Render("╭"+strings.Repeat("─", width-2)+"╮"))

	title := f.Styles.Title.Render(f.Title)
	status := f.Styles.Help.Render("[" + f.Status + "]")
	gap := max(0, width-5-lipgloss.Width(title)-lipgloss.Width(status))
	out = append(out, bc.Render("│")+" "+title+" "+status+strings.Repeat(" ", gap)+" "+bc.Render("│"))

	n := max(len(f.Sections), 1)
	// Border, title, bottom and help take four rows; each section label one.
	rows := max((height-4-n)/n, 1)
	for _, sec := range f.Sections {
		label := f.Styles.Label.Render(sec.Label)
		fill := max(0, width-3-lipgloss.Width(label))
		out = append(out, bc.Render("├─")+label+bc.Render(strings.Repeat("─", fill)+"┤"))

		lines := sec.Lines
		if len(lines) > rows {
			lines = lines[len(lines)-rows:]
		}
		for i := range rows {
			var text string
			if i < len(lines) {
				text = clip(lines[i], inner)
			}
			out = append(out, bc.Render("│")+" "+text+strings.Repeat(" ", max(0, inner-lipgloss.Width(text)))+" "+bc.Render("│"))
		}
	}

	out = append(out, bc.Render("╰"+strings.Repeat("─", width-2)+"╯"))
	out = append(out, f.Styles.Help.Render(f.Help))
	return strings.Join(out, "\n")
}

// Gauge draws a bar of width cells filled in proportion to used/total.
func Gauge(used, total int64, width int) string {
	if width <= 0 {
		return ""
	}
	var filled int
	if total > 0 {
		filled = int(min(used, total) * int64(width) / total)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// clip shortens s to width display cells, marking the cut with an ellipsis.
func clip(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return strings.Repeat("…", width)
	}
	var sb strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > width-1 {
			break
		}
		sb.WriteRune(r)
		w += rw
	}
	return sb.String() + "…"
}
