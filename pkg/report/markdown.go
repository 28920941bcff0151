package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cmi-dair/clmunch/pkg/fsutil"
	"github.com/cmi-dair/clmunch/pkg/runlog"
	"github.com/google/shlex"
)

// HTML entities used as success glyphs (check mark / cross mark).
const (
	symbolSuccess = "&#9989;"
	symbolFailure = "&#10060;"
)

// anchorStripPattern removes everything a markdown renderer drops
// when deriving a heading id.
var anchorStripPattern = regexp.MustCompile(`[^0-9a-z_-]`)

// Options controls report rendering.
type Options struct {
	// IncludeErrorTable adds the aggregated error table for the
	// gen192 pipeline configuration naming scheme.
	IncludeErrorTable bool

	// TailLines is how many trailing log lines are shown for a
	// failed run.
	TailLines int

	// GeneratedAt is the timestamp printed in the footer. The zero
	// value means time.Now().
	GeneratedAt time.Time
}

// Render assembles the full markdown report for a collection.
func Render(c *Collection, opts Options) (string, error) {
	var sb strings.Builder

	sb.Grow(16 * 1024)

	sb.WriteString("# CPAC run report\n\n")

	writeHeader(&sb, c)

	sb.WriteString("\n## Summary\n\n")
	writeSummaryTable(&sb, c)

	if opts.IncludeErrorTable {
		if err := writeErrorTable(&sb, c.ErrorInfos()); err != nil {
			return "", err
		}
	}

	sb.WriteString("\n## Details\n\n")

	for _, rec := range c.Runs {
		if err := writeRunDetail(&sb, rec, opts.TailLines); err != nil {
			return "", err
		}
	}

	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	sb.WriteString("\n<hr>\n\n")
	fmt.Fprintf(&sb, "*Generated on %s*\n",
		generatedAt.Format("2006-01-02 15:04:05"))

	return sb.String(), nil
}

func writeHeader(sb *strings.Builder, c *Collection) {
	fmt.Fprintf(sb, "Ran %d CPAC pipelines with %.2f%% success rate.\n\n",
		c.Count(), c.SuccessRate())
	fmt.Fprintf(sb, "Slowest pipeline took %s (first until last log message).\n\n",
		formatDurationPtr(c.MaxDuration()))
	fmt.Fprintf(sb, "Pipelines found under <code>%s</code>.\n", c.SearchPath)
}

func writeSummaryTable(sb *strings.Builder, c *Collection) {
	sb.WriteString("| pipeline_config | duration | success |\n")
	sb.WriteString("|---|---|---|\n")

	for _, rec := range c.Runs {
		fmt.Fprintf(sb, "| %s | %s | %s |\n",
			headingLink(rec.PipelineConfig),
			formatDurationPtr(rec.Duration),
			successGlyph(rec.Success),
		)
	}
}

// writeRunDetail writes one run's detail section: heading, key/value
// table, one spoiler per crash file and, for failed runs, a spoiler
// with the log tail.
func writeRunDetail(sb *strings.Builder, rec *runlog.Record, tailLines int) error {
	fmt.Fprintf(sb, "### %s\n\n", rec.PipelineConfig)

	command, err := formatCommand(rec.Command)
	if err != nil {
		return fmt.Errorf("%s: %w", rec.LogFile, err)
	}

	sb.WriteString("| Key | Value |\n")
	sb.WriteString("|---|---|\n")
	fmt.Fprintf(sb, "| File | `%s` |\n", absPath(rec.LogFile))
	fmt.Fprintf(sb, "| Start | %s |\n", formatTimePtr(rec.Start))
	fmt.Fprintf(sb, "| Duration | %s |\n", formatDurationPtr(rec.Duration))
	fmt.Fprintf(sb, "| Command | %s |\n", command)
	fmt.Fprintf(sb, "| Version | `%s` |\n", rec.Version)
	fmt.Fprintf(sb, "| Pipeline Config | %s |\n", rec.PipelineConfig)
	fmt.Fprintf(sb, "| Subject Workflow | %s |\n", rec.SubjectWorkflow)
	fmt.Fprintf(sb, "| Success | %s |\n", successGlyph(rec.Success))
	sb.WriteByte('\n')

	for _, crashFile := range rec.CrashFiles {
		content, err := os.ReadFile(crashFile)
		if err != nil {
			return fmt.Errorf("reading crash file: %w", err)
		}

		writeSpoiler(sb,
			fmt.Sprintf("Crashfile <code>%s</code>", filepath.Base(crashFile)),
			fmt.Sprintf("```Python\n%s```", content),
		)
	}

	if !rec.Success {
		tail, err := fsutil.Tail(rec.LogFile, tailLines)
		if err != nil {
			return err
		}

		writeSpoiler(sb,
			fmt.Sprintf("Last %d lines of logfile", tailLines),
			fmt.Sprintf("```log\n%s```", tail),
		)
	}

	return nil
}

// writeSpoiler writes a collapsible details block.
func writeSpoiler(sb *strings.Builder, summary, details string) {
	sb.WriteString("<details>\n")
	fmt.Fprintf(sb, "<summary>%s</summary>\n\n", summary)
	sb.WriteString(details)
	sb.WriteString("\n\n</details>\n\n")
}

// formatCommand splits a recorded command line into shell words and
// joins them with line breaks for the detail table. Empty commands
// render as an empty cell.
func formatCommand(command string) (string, error) {
	if command == "" {
		return "", nil
	}

	words, err := shlex.Split(command)
	if err != nil {
		return "", fmt.Errorf("splitting command %q: %w", command, err)
	}

	return "<code>" + strings.Join(words, "<br/>") + "</code>", nil
}

// headingLink renders an in-document link to the heading with the
// given text. Anchor ids keep only [0-9a-z_-] of the lowercased
// heading, matching how the detail headings resolve.
func headingLink(heading string) string {
	anchor := anchorStripPattern.ReplaceAllString(strings.ToLower(heading), "")

	return fmt.Sprintf("[%s](#%s)", heading, anchor)
}

func successGlyph(success bool) string {
	if success {
		return symbolSuccess
	}

	return symbolFailure
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Format("2006-01-02 15:04:05")
}

func formatDurationPtr(d *time.Duration) string {
	if d == nil {
		return "-"
	}

	return formatDuration(*d)
}

// formatDuration formats a time.Duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return abs
}
