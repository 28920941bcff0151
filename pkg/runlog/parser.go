package runlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Line classification patterns, checked per line in this fixed order.
// All are anchored: a marker is only recognized at the start of a
// line (modulo leading whitespace).
var (
	timestampPattern = regexp.MustCompile(`^(\d{6}-\d{2}:\d{2}:\d{2}),(\d{1,3})`)
	commandPattern   = regexp.MustCompile(`^\s*Run command: (.*)$`)
	versionPattern   = regexp.MustCompile(`^\s*C-PAC version: (.*)$`)
	configPattern    = regexp.MustCompile(`^\s*Pipeline configuration: (.*)$`)
	workflowPattern  = regexp.MustCompile(`^\s*Subject workflow: (.*)$`)

	successPattern = regexp.MustCompile(`^\s*CPAC run complete:\s*$`)
	errorPattern   = regexp.MustCompile(`^\s*CPAC run error:\s*$`)

	// Emitted instead of the regular success marker when the run was
	// started in test_config mode. Only honored for such runs.
	testConfigSuccessPattern = regexp.MustCompile(
		`^\s*This has been a tests of the pipeline configuration file, ` +
			`the pipeline was built successfully, but was not run\s*$`)

	preconfigPattern = regexp.MustCompile(`--preconfig\s*(\S+)`)
)

// timestampLayout parses the date/time part of a log timestamp
// (YYMMDD-HH:MM:SS; the fractional part is handled separately).
const timestampLayout = "060102-15:04:05"

// maxLineBytes bounds a single log line. Traceback lines can get
// long, but a log is not expected to carry megabyte lines.
const maxLineBytes = 1024 * 1024

// Parse reads a run log and extracts a Record. The file is read once,
// line by line; the accumulated text is additionally searched for a
// structured error signature when the run was not successful. Any
// read failure or malformed timestamp aborts with an error.
func Parse(logFile, baseDir string) (*Record, error) {
	f, err := os.Open(logFile)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	rec := &Record{
		LogFile: logFile,
		BaseDir: baseDir,
	}

	var (
		minTime, maxTime       *time.Time
		successSeen, errorSeen bool
		text                   strings.Builder
	)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		line := sc.Text()
		text.WriteString(line)
		text.WriteByte('\n')

		if m := timestampPattern.FindStringSubmatch(line); m != nil {
			stamp, err := parseTimestamp(m[1], m[2])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", logFile, err)
			}

			if minTime == nil || stamp.Before(*minTime) {
				minTime = &stamp
			}

			if maxTime == nil || stamp.After(*maxTime) {
				maxTime = &stamp
			}
		} else if m := commandPattern.FindStringSubmatch(line); m != nil {
			rec.Command = m[1]
			rec.IsTestConfig = strings.Contains(rec.Command, " test_config ")
		} else if m := versionPattern.FindStringSubmatch(line); m != nil {
			rec.Version = m[1]
		} else if m := configPattern.FindStringSubmatch(line); m != nil {
			rec.PipelineConfig = m[1]
		} else if m := workflowPattern.FindStringSubmatch(line); m != nil {
			rec.SubjectWorkflow = m[1]
		} else if successPattern.MatchString(line) ||
			(rec.IsTestConfig && testConfigSuccessPattern.MatchString(line)) {
			successSeen = true
		} else if errorPattern.MatchString(line) {
			errorSeen = true
		}
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading log file: %w", err)
	}

	rec.Success = successSeen && !errorSeen

	if !rec.Success {
		rec.ErrorInfo = MatchErrorSignature(text.String())
	}

	// Resolution order: explicit config line, then the --preconfig
	// command argument, then the log path relative to the base dir.
	if rec.PipelineConfig == "" && rec.Command != "" {
		if m := preconfigPattern.FindStringSubmatch(rec.Command); m != nil {
			rec.PipelineConfig = m[1]
		}
	}

	if rec.PipelineConfig == "" {
		rel, err := filepath.Rel(baseDir, logFile)
		if err != nil {
			return nil, fmt.Errorf("relativizing %s: %w", logFile, err)
		}

		rec.PipelineConfig = rel
	}

	if rec.ErrorInfo != nil {
		rec.ErrorInfo.PipelineConfig = rec.PipelineConfig
	}

	rec.Start = minTime

	if minTime != nil && maxTime != nil {
		d := maxTime.Sub(*minTime)
		rec.Duration = &d
	}

	rec.CrashFiles, err = FindCrashFiles(logFile)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// parseTimestamp parses a matched timestamp. The fractional part has
// 1-3 digits and is right-padded to milliseconds (",25" is 250ms).
func parseTimestamp(stamp, frac string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", stamp, err)
	}

	ms, err := strconv.Atoi(frac)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp fraction %q: %w", frac, err)
	}

	for i := len(frac); i < 3; i++ {
		ms *= 10
	}

	return t.Add(time.Duration(ms) * time.Millisecond), nil
}
