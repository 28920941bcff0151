package fsutil

import (
	"fmt"
	"os"
	"strings"
)

// Tail returns the last n lines of a file, newlines preserved. When
// the file has fewer than n lines the whole content is returned.
func Tail(path string, n int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if n <= 0 {
		return "", nil
	}

	lines := strings.SplitAfter(string(data), "\n")

	// SplitAfter leaves a trailing empty element when the file ends
	// with a newline.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.Join(lines, ""), nil
}
