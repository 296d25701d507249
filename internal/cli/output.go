package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	format       string
	colorEnabled bool
	renderer     *lipgloss.Renderer
	styles       styles
}

type styles struct {
	success lipgloss.Style
	err     lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	bold    lipgloss.Style
	dim     lipgloss.Style
	profit  lipgloss.Style
	loss    lipgloss.Style
	panel   lipgloss.Style
	title   lipgloss.Style
}

// NewOutput creates an Output for cmd. --json wins over --format; an empty
// format falls back to the configured default.
func NewOutput(cmd *cobra.Command, defaultFormat string, colorEnabled bool) *Output {
	format, _ := cmd.Flags().GetString("format")
	if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
		format = FormatJSON
	}
	if format == "" {
		format = defaultFormat
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		colorEnabled = false
	}
	return newOutput(cmd.OutOrStdout(), format, colorEnabled && isTerminal(cmd.OutOrStdout()))
}

func newOutput(w io.Writer, format string, colorEnabled bool) *Output {
	if format == "" {
		format = FormatText
	}
	r := lipgloss.NewRenderer(w)
	if !colorEnabled {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Output{
		writer:       w,
		format:       strings.ToLower(format),
		colorEnabled: colorEnabled,
		renderer:     r,
		styles:       newStyles(r),
	}
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		success: r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		err:     r.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		info:    r.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		bold:    r.NewStyle().Bold(true),
		dim:     r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		profit:  r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		loss:    r.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		panel: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(0, 1),
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
	}
}

// isTerminal checks if w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Format returns the active output format.
func (o *Output) Format() string {
	return o.format
}

// IsStructured returns true for JSON and YAML output.
func (o *Output) IsStructured() bool {
	return o.format == FormatJSON || o.format == FormatYAML
}

// Emit writes data in the active structured format.
func (o *Output) Emit(data interface{}) error {
	if o.format == FormatYAML {
		return o.YAML(data)
	}
	return o.JSON(data)
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// YAML outputs data as YAML.
func (o *Output) YAML(data interface{}) error {
	encoder := yaml.NewEncoder(o.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Success prints a success message.
func (o *Output) Success(format string, args ...interface{}) {
	o.styled(o.styles.success, format, args...)
}

// Error prints an error message.
func (o *Output) Error(format string, args ...interface{}) {
	o.styled(o.styles.err, format, args...)
}

// Warning prints a warning message.
func (o *Output) Warning(format string, args ...interface{}) {
	o.styled(o.styles.warning, format, args...)
}

// Info prints an info message.
func (o *Output) Info(format string, args ...interface{}) {
	o.styled(o.styles.info, format, args...)
}

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) {
	o.styled(o.styles.bold, format, args...)
}

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) {
	o.styled(o.styles.dim, format, args...)
}

func (o *Output) styled(style lipgloss.Style, format string, args ...interface{}) {
	fmt.Fprintln(o.writer, style.Render(fmt.Sprintf(format, args...)))
}

// PnL formats a profit or loss with sign and color.
func (o *Output) PnL(pnl float64) string {
	formatted := FormatPnL(pnl)
	switch {
	case pnl > 0:
		return o.styles.profit.Render(formatted)
	case pnl < 0:
		return o.styles.loss.Render(formatted)
	}
	return formatted
}

// Panel renders lines inside a bordered box with a title.
func (o *Output) Panel(title string, lines []string) {
	body := o.styles.title.Render(title) + "\n" + strings.Join(lines, "\n")
	fmt.Fprintln(o.writer, o.styles.panel.Render(body))
}

// Table represents a simple table for output.
type Table struct {
	headers []string
	rows    [][]string
	output  *Output
}

// NewTable creates a new table.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		output:  output,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	t.printRow(t.headers, widths, true)
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	t.output.Println(t.output.styles.dim.Render(strings.Join(parts, "──")))

	for _, row := range t.rows {
		t.printRow(row, widths, false)
	}
}

func (t *Table) printRow(cells []string, widths []int, isHeader bool) {
	parts := make([]string, 0, len(cells))
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		padding := widths[i] - lipgloss.Width(cell)
		if padding < 0 {
			padding = 0
		}
		padded := cell + strings.Repeat(" ", padding)
		if isHeader {
			padded = t.output.styles.bold.Render(padded)
		}
		parts = append(parts, padded)
	}
	t.output.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
}
