package runlog

import "time"

// Record holds the metadata extracted from a single pipeline run log.
// Optional fields are pointers (timestamps) or empty strings (text
// fields that never appeared in the log).
type Record struct {
	// LogFile is the path of the parsed log file and the identity of
	// the record.
	LogFile string

	// BaseDir is the root used to compute relative display names.
	BaseDir string

	// Start is the earliest timestamp seen in the log, nil when the
	// log contains no timestamped lines.
	Start *time.Time

	// Duration spans the earliest to the latest timestamped line.
	// Nil when the log contains no timestamped lines; note that a
	// zero duration (single timestamp) is distinct from nil.
	Duration *time.Duration

	// Command is the raw "Run command:" line payload.
	Command string

	// IsTestConfig reports whether Command contains " test_config ".
	IsTestConfig bool

	// Version is the "C-PAC version:" line payload.
	Version string

	// PipelineConfig is the resolved configuration name. After
	// parsing it is never empty: the explicit "Pipeline
	// configuration:" line wins, then the --preconfig command
	// argument, then the log path relative to BaseDir.
	PipelineConfig string

	// SubjectWorkflow is the "Subject workflow:" line payload.
	SubjectWorkflow string

	// Success is true iff a success marker was seen and no error
	// marker was.
	Success bool

	// ErrorInfo holds the structured error extracted from the log
	// text. Only populated for unsuccessful runs, and nil when none
	// of the known error signatures matched.
	ErrorInfo *ErrorInfo

	// CrashFiles are the crash report files associated with this run
	// by directory convention, in glob order.
	CrashFiles []string
}

// ErrorInfo is the structured form of a resource-pool lookup failure
// found in a run log.
type ErrorInfo struct {
	NodeBlock         string
	TargetWorkflow    string
	PreviousNodeBlock string
	MissingResources  string

	// PipelineConfig is copied from the owning record after
	// resolution.
	PipelineConfig string
}
