package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchedFile(t *testing.T) {
	tests := []struct {
		name string
		file string
		want bool
	}{
		{"cpp_source", "src/game.cpp", true},
		{"header", "src/game.h", true},
		{"hpp_header", "include/events.hpp", true},
		{"uppercase_ext", "src/LEGACY.CPP", true},
		{"compdb", "build/compile_commands.json", true},
		{"scan_output", "scan.json", false},
		{"unrelated", "README.md", false},
		{"object_file", "build/game.o", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, watchedFile(tt.file, "scan.json"))
		})
	}
}

func TestWatchedFileIgnoresConfiguredOutput(t *testing.T) {
	assert.False(t, watchedFile("out/report.json", "report.json"))
	assert.True(t, watchedFile("scan.json", "report.json"))
}

func TestAddWatchRecursive(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "events"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addWatchRecursive(watcher, root))

	list := watcher.WatchList()
	assert.Contains(t, list, root)
	assert.Contains(t, list, filepath.Join(root, "src"))
	assert.Contains(t, list, filepath.Join(root, "src", "events"))
	assert.NotContains(t, list, filepath.Join(root, ".git"))
	assert.NotContains(t, list, filepath.Join(root, ".git", "objects"))
}
