package cmd

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/scour/internal/config"
	"github.com/harrison/scour/internal/filelock"
	"github.com/harrison/scour/internal/fileutil"
)

// writeFiles materializes a tree of small files under base, creating parent
// directories as needed.
func writeFiles(t *testing.T, base string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(base, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestCleanDryRunThenForceThenCombine(t *testing.T) {
	t.Setenv("SCOUR_HOME", t.TempDir())

	proj := t.TempDir()
	writeFiles(t, proj, map[string]string{
		"package.json":      `{"name": "proj"}`,
		"node_modules/x.js": "module.exports = 1;\n",
		"src/app.go":        "package app\n",
	})

	// Dry run reports node_modules and deletes nothing.
	out, err := execRoot("clean", "-p", proj)
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "[MATCH]")
	assert.Contains(t, out, "node_modules")
	assert.NotContains(t, out, "src")
	assert.DirExists(t, filepath.Join(proj, "node_modules"))

	// Force removes exactly the matched folder.
	out, err = execRoot("clean", "-p", proj, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleting")
	assert.Contains(t, out, "Removed 1 folders.")
	assert.NoDirExists(t, filepath.Join(proj, "node_modules"))
	assert.FileExists(t, filepath.Join(proj, "package.json"))
	assert.FileExists(t, filepath.Join(proj, "src", "app.go"))

	// The combined document holds the survivors and nothing else.
	out, err = execRoot("combine", "-p", proj)
	require.NoError(t, err)
	assert.Contains(t, out, "# File: package.json")
	assert.Contains(t, out, "# File: "+filepath.Join("src", "app.go"))
	assert.NotContains(t, out, "node_modules")
}

func TestCleanRecordsHistory(t *testing.T) {
	t.Setenv("SCOUR_HOME", t.TempDir())

	proj := t.TempDir()
	writeFiles(t, proj, map[string]string{
		"package.json":      "{}",
		"node_modules/a.js": "x",
	})

	_, err := execRoot("clean", "-p", proj)
	require.NoError(t, err)

	out, err := execRoot("history")
	require.NoError(t, err)
	assert.Contains(t, out, "Recent cleanup runs:")
	assert.Contains(t, out, "dry-run")
	assert.Contains(t, out, "matched 1")
	assert.Contains(t, out, proj)

	// The listing's short id resolves to the full run detail.
	m := regexp.MustCompile(`(?m)^([0-9a-f]{8})  `).FindStringSubmatch(out)
	require.NotNil(t, m, "listing should start lines with a short run id:\n%s", out)

	detail, err := execRoot("history", m[1])
	require.NoError(t, err)
	assert.Contains(t, detail, "Run ")
	assert.Contains(t, detail, "Mode: dry-run")
	assert.Contains(t, detail, "found")
	assert.Contains(t, detail, "node_modules")
	assert.Contains(t, detail, "Node.js dependencies")
}

func TestCleanHistoryDisabled(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SCOUR_HOME", home)
	writeFiles(t, home, map[string]string{
		"config.yaml": "history:\n  enabled: false\n",
	})

	proj := t.TempDir()
	writeFiles(t, proj, map[string]string{
		"package.json":      "{}",
		"node_modules/a.js": "x",
	})

	_, err := execRoot("clean", "-p", proj)
	require.NoError(t, err)

	out, err := execRoot("history")
	require.NoError(t, err)
	assert.Contains(t, out, "No history recorded yet.")
}

func TestCleanForceLockContention(t *testing.T) {
	t.Setenv("SCOUR_HOME", t.TempDir())

	proj := t.TempDir()

	locksDir, err := config.LocksDir()
	require.NoError(t, err)
	lock, err := filelock.Acquire(locksDir, proj)
	require.NoError(t, err)
	defer lock.Release()

	_, err = execRoot("clean", "-p", proj, "-f")
	require.Error(t, err)
	assert.ErrorIs(t, err, filelock.ErrHeld)
	assert.Contains(t, err.Error(), "another scour clean")
}

func TestCleanDryRunDoesNotLock(t *testing.T) {
	t.Setenv("SCOUR_HOME", t.TempDir())

	proj := t.TempDir()

	locksDir, err := config.LocksDir()
	require.NoError(t, err)
	lock, err := filelock.Acquire(locksDir, proj)
	require.NoError(t, err)
	defer lock.Release()

	// A held lock only blocks deleting runs.
	_, err = execRoot("clean", "-p", proj)
	require.NoError(t, err)
}

func TestCleanConfigRules(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SCOUR_HOME", home)
	writeFiles(t, home, map[string]string{
		"config.yaml": `clean:
  rules:
    - folder: .gradle
      indicator_file: build.gradle
      description: Gradle cache
`,
	})

	proj := t.TempDir()
	writeFiles(t, proj, map[string]string{
		"build.gradle":      "plugins {}\n",
		".gradle/cache.bin": "x",
	})

	out, err := execRoot("clean", "-p", proj)
	require.NoError(t, err)
	assert.Contains(t, out, ".gradle")
	assert.Contains(t, out, "Gradle cache")
}

func TestCleanInvalidRoot(t *testing.T) {
	t.Setenv("SCOUR_HOME", t.TempDir())

	_, err := execRoot("clean", "-p", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fileutil.ErrNotFound)
}
