package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmi-dair/clmunch/pkg/runlog"
	"github.com/sirupsen/logrus"
)

// Collection holds all run records discovered under a search path,
// sorted for rendering.
type Collection struct {
	// SearchPath is the root that was scanned for run logs.
	SearchPath string

	// BasePath is the root used for relative display names.
	BasePath string

	// Runs is sorted by pipeline config ascending; records without a
	// resolved config sort last, in discovery order.
	Runs []*runlog.Record
}

// Build discovers every run log under searchPath and parses each into
// a record. The first unreadable or malformed log aborts the build.
func Build(log logrus.FieldLogger, searchPath, basePath string) (*Collection, error) {
	files, err := runlog.FindLogFiles(searchPath)
	if err != nil {
		return nil, err
	}

	log.WithField("count", len(files)).Info("Discovered run logs")

	runs := make([]*runlog.Record, 0, len(files))

	for _, file := range files {
		rec, err := runlog.Parse(file, basePath)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}

		log.WithFields(logrus.Fields{
			"log":     file,
			"config":  rec.PipelineConfig,
			"success": rec.Success,
		}).Debug("Parsed run log")

		runs = append(runs, rec)
	}

	sortRuns(runs)

	return &Collection{
		SearchPath: searchPath,
		BasePath:   basePath,
		Runs:       runs,
	}, nil
}

// sortRuns orders records by pipeline config ascending. Records
// without a resolved config go last and keep their discovery order
// among themselves (stable).
func sortRuns(runs []*runlog.Record) {
	sort.SliceStable(runs, func(i, j int) bool {
		a, b := runs[i].PipelineConfig, runs[j].PipelineConfig
		if (a == "") != (b == "") {
			return b == ""
		}

		return a < b
	})
}

// Count returns the number of discovered runs.
func (c *Collection) Count() int {
	return len(c.Runs)
}

// SuccessCount returns the number of successful runs.
func (c *Collection) SuccessCount() int {
	n := 0

	for _, r := range c.Runs {
		if r.Success {
			n++
		}
	}

	return n
}

// SuccessRate returns the fraction of successful runs as a
// percentage. Zero for an empty collection.
func (c *Collection) SuccessRate() float64 {
	if len(c.Runs) == 0 {
		return 0
	}

	return float64(c.SuccessCount()) / float64(len(c.Runs)) * 100
}

// MaxDuration returns the longest run duration, or nil when no run
// has one.
func (c *Collection) MaxDuration() *time.Duration {
	var maxDur *time.Duration

	for _, r := range c.Runs {
		if r.Duration == nil {
			continue
		}

		if maxDur == nil || *r.Duration > *maxDur {
			maxDur = r.Duration
		}
	}

	return maxDur
}

// ErrorInfos returns the structured errors of all failed runs, in
// collection order.
func (c *Collection) ErrorInfos() []*runlog.ErrorInfo {
	infos := make([]*runlog.ErrorInfo, 0)

	for _, r := range c.Runs {
		if r.ErrorInfo != nil {
			infos = append(infos, r.ErrorInfo)
		}
	}

	return infos
}
