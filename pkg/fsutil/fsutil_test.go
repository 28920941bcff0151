package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "file.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

func TestTail(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		n        int
		expected string
	}{
		{
			name:     "last two lines",
			content:  "a\nb\nc\nd\n",
			n:        2,
			expected: "c\nd\n",
		},
		{
			name:     "n larger than file",
			content:  "a\nb\n",
			n:        10,
			expected: "a\nb\n",
		},
		{
			name:     "no trailing newline",
			content:  "a\nb\nc",
			n:        2,
			expected: "b\nc",
		},
		{
			name:     "empty file",
			content:  "",
			n:        5,
			expected: "",
		},
		{
			name:     "zero lines requested",
			content:  "a\nb\n",
			n:        0,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.content)

			got, err := Tail(path, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTailMissingFile(t *testing.T) {
	_, err := Tail(filepath.Join(t.TempDir(), "nope.log"), 10)
	require.Error(t, err)
}
