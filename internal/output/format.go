package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format represents the available output formats
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Config holds output configuration
type Config struct {
	Format  Format
	Pretty  bool
	NoColor bool

	// SnapshotColumns selects and orders the snapshot table columns by
	// their column key. Empty shows all.
	SnapshotColumns []string
}

// Printer renders apidrift data in the configured format
type Printer struct {
	w      io.Writer
	config Config
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer, config Config) *Printer {
	if config.Format == "" {
		config.Format = FormatTable
	}
	return &Printer{w: w, config: config}
}

// Format returns the configured format
func (p *Printer) Format() Format {
	return p.config.Format
}

// Structured reports whether output is machine-readable
func (p *Printer) Structured() bool {
	return p.config.Format == FormatJSON || p.config.Format == FormatYAML
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Encode writes v as JSON or YAML. Table format falls back to JSON.
func (p *Printer) Encode(v interface{}) error {
	switch p.config.Format {
	case FormatYAML:
		encoder := yaml.NewEncoder(p.w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	default:
		encoder := json.NewEncoder(p.w)
		if p.config.Pretty {
			encoder.SetIndent("", "  ")
		}
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

// Message prints a plain line in table mode. Structured output stays clean.
func (p *Printer) Message(format string, args ...interface{}) {
	if p.Structured() {
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

// colorize applies color if colors are enabled
func (p *Printer) colorize(text string, attrs ...color.Attribute) string {
	if p.config.NoColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// truncate shortens s to at most length runes
func truncate(s string, length int) string {
	r := []rune(s)
	if length <= 3 || len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}

// oneLine collapses whitespace so a value fits a table cell
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
