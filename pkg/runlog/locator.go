package runlog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// logFilePattern matches run log file names.
const logFilePattern = "pypeline*.log"

// crashFilePattern matches crash report file names.
const crashFilePattern = "crash-*.txt"

// FindLogFiles recursively finds every run log under root. Paths are
// returned in walk order (lexical within each directory), which is
// the discovery order later used as a sorting tie-break.
func FindLogFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ok, err := filepath.Match(logFilePattern, d.Name())
		if err != nil {
			return err
		}

		if ok {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	return files, nil
}

// FindCrashFiles finds the crash reports associated with a log file.
// By convention they live two levels above the log file's directory
// (<run_root>/crash-*.txt). Zero matches is not an error.
func FindCrashFiles(logFile string) ([]string, error) {
	dir := filepath.Join(filepath.Dir(logFile), "..", "..")

	matches, err := filepath.Glob(filepath.Join(dir, crashFilePattern))
	if err != nil {
		return nil, fmt.Errorf("globbing crash files for %s: %w", logFile, err)
	}

	sort.Strings(matches)

	return matches, nil
}
