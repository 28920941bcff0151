package runlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
}

func TestFindLogFiles(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "run1", "output", "log", "pypeline.log"))
	touch(t, filepath.Join(root, "run2", "output", "log", "pypeline_123.log"))
	touch(t, filepath.Join(root, "run2", "output", "log", "other.log"))
	touch(t, filepath.Join(root, "run3", "pypeline.log.bak"))

	files, err := FindLogFiles(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "run1", "output", "log", "pypeline.log"),
		filepath.Join(root, "run2", "output", "log", "pypeline_123.log"),
	}, files)
}

func TestFindLogFilesEmptyTree(t *testing.T) {
	files, err := FindLogFiles(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindLogFilesMissingRoot(t *testing.T) {
	_, err := FindLogFiles(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestFindCrashFiles(t *testing.T) {
	root := t.TempDir()

	logFile := filepath.Join(root, "run1", "output", "log", "pypeline.log")
	touch(t, logFile)

	// Crash files live two levels above the log's directory.
	crashA := filepath.Join(root, "run1", "crash-a.txt")
	crashB := filepath.Join(root, "run1", "crash-b.txt")
	touch(t, crashB)
	touch(t, crashA)
	touch(t, filepath.Join(root, "run1", "not-a-crash.txt"))
	touch(t, filepath.Join(root, "crash-too-high.txt"))

	crashes, err := FindCrashFiles(logFile)
	require.NoError(t, err)
	assert.Equal(t, []string{crashA, crashB}, crashes)
}

func TestFindCrashFilesNone(t *testing.T) {
	root := t.TempDir()

	logFile := filepath.Join(root, "run1", "output", "log", "pypeline.log")
	touch(t, logFile)

	crashes, err := FindCrashFiles(logFile)
	require.NoError(t, err)
	assert.Empty(t, crashes)
}
