package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// Output formats accepted by RenderStatus.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// ANSI color codes for status output (used when Colored=true).
const (
	ansiReset   = "\033[0m"
	ansiBoldRed = "\033[1;31m"
	ansiGreen   = "\033[0;32m"
	ansiYellow  = "\033[0;33m"
	ansiBlue    = "\033[0;34m"
)

// TableOptions controls how RenderTable draws a status.
type TableOptions struct {
	// Colored wraps the status and compliance values with ANSI codes.
	// Default false (CI-safe).
	Colored bool

	// MaxValueWidth caps the VALUE column. Zero means no limit.
	MaxValueWidth int
}

// ValidFormat reports whether format is one RenderStatus understands.
func ValidFormat(format string) bool {
	return format == FormatJSON || format == FormatTable
}

// RenderStatus writes status to w as indented JSON or as a two-column table.
func RenderStatus(w io.Writer, status models.Status, format string, opts TableOptions) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			return fmt.Errorf("encode status: %w", err)
		}
		return nil
	case FormatTable:
		RenderTable(w, status, opts)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want %q or %q)", format, FormatJSON, FormatTable)
	}
}

// ColorStatus wraps a terminal status with ANSI codes when colored is true.
func ColorStatus(status string, colored bool) string {
	if !colored {
		return status
	}
	switch status {
	case models.StatusError:
		return ansiBoldRed + status + ansiReset
	case models.StatusSuccess:
		return ansiGreen + status + ansiReset
	case models.StatusIgnored:
		return ansiBlue + status + ansiReset
	case models.StatusReported:
		return ansiYellow + status + ansiReset
	default:
		return status
	}
}

// ColorCompliance wraps a compliance value with ANSI codes when colored is true.
func ColorCompliance(c models.ComplianceType, colored bool) string {
	s := string(c)
	if !colored {
		return s
	}
	switch c {
	case models.NonCompliant:
		return ansiBoldRed + s + ansiReset
	case models.Compliant:
		return ansiGreen + s + ansiReset
	case models.NotApplicable:
		return ansiBlue + s + ansiReset
	default:
		return s
	}
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// RenderTable writes status as FIELD/VALUE rows. Empty fields are skipped;
// the status row is always present.
func RenderTable(w io.Writer, status models.Status, opts TableOptions) {
	const wField = 16

	type row struct{ field, value string }
	rows := []row{{"STATUS", ColorStatus(status.Status, opts.Colored)}}
	add := func(field, value string) {
		if value == "" {
			return
		}
		if opts.MaxValueWidth > 0 {
			value = ShortenMessage(value, opts.MaxValueWidth)
		}
		rows = append(rows, row{field, value})
	}
	add("REASON", status.Reason)
	add("BUCKET", status.Bucket)
	add("SECURITY GROUP", status.SecurityGroup)
	add("RULE", string(status.Rule))
	add("RESOURCE ID", status.ResourceID)
	if status.Compliance != "" {
		rows = append(rows, row{"COMPLIANCE", ColorCompliance(status.Compliance, opts.Colored)})
	}
	add("ANNOTATION", status.Annotation)

	header := fmt.Sprintf("%-*s  %s", wField, "FIELD", "VALUE")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)+10))
	for _, r := range rows {
		fmt.Fprintf(w, "%-*s  %s\n", wField, r.field, r.value)
	}
}
