package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/cmi-dair/clmunch/pkg/runlog"
)

// The gen192 study names its 192 perturbed pipeline configurations
// id_pXXX_base-<name>_perturb-<name>_step-<name>_conn-<name>_nuisance-<name>.
// The error table splits that scheme into separate columns.
const gen192Segments = 7

// errorTableColumns is the fixed column order of the aggregated
// error table.
var errorTableColumns = []string{
	"id",
	"base_pipeline",
	"perturb_pipeline",
	"step",
	"connectivity",
	"nuisance",
	"missing_resources",
	"node_block",
	"previous_node_block",
	"number_of_pipelines_with_this_error",
}

// errorRow is one aggregated row of the error table.
type errorRow struct {
	ID                string
	BasePipeline      string
	PerturbPipeline   string
	Step              string
	Connectivity      string
	Nuisance          string
	MissingResources  string
	NodeBlock         string
	PreviousNodeBlock string

	// Count is how many pipelines share this error.
	Count int
}

func (r *errorRow) cells() []string {
	return []string{
		r.ID,
		r.BasePipeline,
		r.PerturbPipeline,
		r.Step,
		r.Connectivity,
		r.Nuisance,
		r.MissingResources,
		r.NodeBlock,
		r.PreviousNodeBlock,
		strconv.Itoa(r.Count),
	}
}

// errorDedupKey identifies rows that describe the same error.
type errorDedupKey struct {
	missingResources  string
	nodeBlock         string
	previousNodeBlock string
}

// buildErrorRows projects the structured errors into table rows:
// split the gen192 naming scheme into columns, then collapse rows
// that describe the same error, counting how many pipelines hit it.
// A pipeline config that does not follow the scheme is a hard error.
func buildErrorRows(infos []*runlog.ErrorInfo) ([]*errorRow, error) {
	rows := make([]*errorRow, 0, len(infos))
	seen := make(map[errorDedupKey]*errorRow, len(infos))

	for _, info := range infos {
		key := errorDedupKey{
			missingResources:  info.MissingResources,
			nodeBlock:         info.NodeBlock,
			previousNodeBlock: info.PreviousNodeBlock,
		}

		if row, ok := seen[key]; ok {
			row.Count++

			continue
		}

		row, err := splitGen192Config(info)
		if err != nil {
			return nil, err
		}

		seen[key] = row
		rows = append(rows, row)
	}

	return rows, nil
}

// splitGen192Config splits one error's pipeline config per the gen192
// naming scheme. The config may carry a path suffix (the scheme names
// the run's top-level directory), which is cut at the first slash.
func splitGen192Config(info *runlog.ErrorInfo) (*errorRow, error) {
	name, _, _ := strings.Cut(info.PipelineConfig, "/")

	parts := strings.Split(name, "_")
	if len(parts) != gen192Segments {
		return nil, fmt.Errorf(
			"pipeline config %q does not follow the gen192 naming scheme "+
				"(want %d underscore-separated segments, got %d)",
			name, gen192Segments, len(parts))
	}

	row := &errorRow{
		ID:                parts[0],
		MissingResources:  info.MissingResources,
		NodeBlock:         info.NodeBlock,
		PreviousNodeBlock: info.PreviousNodeBlock,
		Count:             1,
	}

	// parts[1] is the pXXX segment, dropped from the table.
	for i, dst := range []*string{
		&row.BasePipeline,
		&row.PerturbPipeline,
		&row.Step,
		&row.Connectivity,
		&row.Nuisance,
	} {
		segment := parts[i+2]

		_, value, ok := strings.Cut(segment, "-")
		if !ok {
			return nil, fmt.Errorf(
				"pipeline config segment %q of %q has no '-' prefix separator",
				segment, name)
		}

		*dst = value
	}

	return row, nil
}

// writeErrorTable appends the aggregated error table to the summary.
// Nothing is written when no run has a structured error.
func writeErrorTable(sb *strings.Builder, infos []*runlog.ErrorInfo) error {
	if len(infos) == 0 {
		return nil
	}

	rows, err := buildErrorRows(infos)
	if err != nil {
		return err
	}

	sb.WriteString("\n| ")
	sb.WriteString(strings.Join(headerCells(" "), " | "))
	sb.WriteString(" |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(errorTableColumns)) + "\n")

	for _, row := range rows {
		sb.WriteString("| ")
		sb.WriteString(strings.Join(row.cells(), " | "))
		sb.WriteString(" |\n")
	}

	return nil
}

// headerCells returns the column headers with underscores replaced by
// the given separator.
func headerCells(sep string) []string {
	cells := make([]string, len(errorTableColumns))
	for i, col := range errorTableColumns {
		cells[i] = strings.ReplaceAll(col, "_", sep)
	}

	return cells
}

// ErrorCSV renders the aggregated error table as CSV, with the raw
// underscore column names as the header row. Returns nil when no run
// has a structured error.
func ErrorCSV(c *Collection) ([]byte, error) {
	infos := c.ErrorInfos()
	if len(infos) == 0 {
		return nil, nil
	}

	rows, err := buildErrorRows(infos)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if err := w.Write(errorTableColumns); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range rows {
		if err := w.Write(row.cells()); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}

	return buf.Bytes(), nil
}
