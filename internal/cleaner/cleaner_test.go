package cleaner

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/scour/internal/fileutil"
	"github.com/harrison/scour/internal/rules"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// writeTree materializes files (and their parent directories) under base.
func writeTree(t *testing.T, base string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(base, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// projectTree is a mixed workspace: two real projects with removable
// directories, one impostor without its indicator, and ordinary sources.
func projectTree(t *testing.T, base string) {
	writeTree(t, base, map[string]string{
		"web/package.json":             "{}",
		"web/node_modules/lodash/x.js": "module.exports = 1",
		"web/src/index.js":             "console.log(1)",
		"svc/Cargo.toml":               "[package]",
		"svc/target/debug/app":         "binary",
		"plain/node_modules/y.js":      "orphan, no manifest beside it",
		"py/venv/bin/activate":         "#!/bin/sh",
		"py/app.py":                    "print(1)",
	})
}

func candidatePaths(t *testing.T, base string, s *Summary) []string {
	t.Helper()
	var paths []string
	for _, c := range s.Candidates {
		rel, err := filepath.Rel(base, c.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	sort.Strings(paths)
	return paths
}

func TestDryRunFindsCandidates(t *testing.T) {
	base := t.TempDir()
	projectTree(t, base)

	var out bytes.Buffer
	summary, err := Run(base, Options{Out: &out})
	require.NoError(t, err)

	assert.Equal(t, []string{"py/venv", "svc/target", "web/node_modules"}, candidatePaths(t, base, summary))
	assert.Equal(t, 0, summary.Removed)
	assert.Equal(t, 0, summary.Failed)
	assert.Positive(t, summary.BytesMatched)
	assert.Zero(t, summary.BytesFreed)

	// Nothing was touched.
	assert.DirExists(t, filepath.Join(base, "web", "node_modules"))
	assert.DirExists(t, filepath.Join(base, "svc", "target"))
	assert.DirExists(t, filepath.Join(base, "plain", "node_modules"))

	report := out.String()
	assert.Contains(t, report, "🔍 Scanning path:")
	assert.Contains(t, report, "DRY RUN")
	assert.Contains(t, report, `[MATCH] Found node_modules at`)
	assert.Contains(t, report, fmt.Sprintf("Found %-12s at", "venv"))
	assert.Contains(t, report, "Node.js dependencies")
	assert.Contains(t, report, "💡 Potential space to reclaim: "+humanize.Bytes(uint64(summary.BytesMatched)))
	assert.NotContains(t, report, "plain")
}

func TestApplyRemovesCandidates(t *testing.T) {
	base := t.TempDir()
	projectTree(t, base)

	var out bytes.Buffer
	summary, err := Run(base, Options{Force: true, Out: &out})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Matched())
	assert.Equal(t, 3, summary.Removed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, summary.BytesMatched, summary.BytesFreed)

	assert.NoDirExists(t, filepath.Join(base, "web", "node_modules"))
	assert.NoDirExists(t, filepath.Join(base, "svc", "target"))
	assert.NoDirExists(t, filepath.Join(base, "py", "venv"))

	// Project files and the unmatched impostor survive.
	assert.FileExists(t, filepath.Join(base, "web", "package.json"))
	assert.FileExists(t, filepath.Join(base, "web", "src", "index.js"))
	assert.DirExists(t, filepath.Join(base, "plain", "node_modules"))

	report := out.String()
	assert.Contains(t, report, "DELETING MODE")
	assert.Contains(t, report, "🗑️  Deleting")
	assert.Contains(t, report, "✅ Process complete. Removed 3 folders.")
	assert.Contains(t, report, "🎉 Reclaimed space: "+humanize.Bytes(uint64(summary.BytesFreed)))
}

func TestDryRunApplyParity(t *testing.T) {
	dryBase := t.TempDir()
	applyBase := t.TempDir()
	projectTree(t, dryBase)
	projectTree(t, applyBase)

	drySummary, err := Run(dryBase, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)
	applySummary, err := Run(applyBase, Options{Force: true, Out: &bytes.Buffer{}})
	require.NoError(t, err)

	var removed []string
	for _, c := range applySummary.Candidates {
		require.True(t, c.Removed)
		rel, err := filepath.Rel(applyBase, c.Path)
		require.NoError(t, err)
		removed = append(removed, filepath.ToSlash(rel))
	}
	sort.Strings(removed)

	assert.Equal(t, candidatePaths(t, dryBase, drySummary), removed)
}

func TestIdempotentDryRun(t *testing.T) {
	base := t.TempDir()
	projectTree(t, base)

	first, err := Run(base, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)
	second, err := Run(base, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)

	assert.Equal(t, candidatePaths(t, base, first), candidatePaths(t, base, second))
	assert.Equal(t, first.BytesMatched, second.BytesMatched)
}

func TestApplyReportsFailureAndContinues(t *testing.T) {
	base := t.TempDir()
	projectTree(t, base)

	stuck := filepath.Join(base, "svc", "target")
	boom := errors.New("device or resource busy")

	var out bytes.Buffer
	summary, err := Run(base, Options{
		Force: true,
		Out:   &out,
		Remove: func(path string) error {
			if path == stuck {
				return boom
			}
			return os.RemoveAll(path)
		},
	})
	require.NoError(t, err, "a failed deletion must not abort the run")

	assert.Equal(t, 3, summary.Matched())
	assert.Equal(t, 2, summary.Removed)
	assert.Equal(t, 1, summary.Failed)
	assert.Less(t, summary.BytesFreed, summary.BytesMatched)

	var failed *Candidate
	for i := range summary.Candidates {
		if summary.Candidates[i].Path == stuck {
			failed = &summary.Candidates[i]
		}
	}
	require.NotNil(t, failed)
	assert.ErrorIs(t, failed.Err, boom)
	assert.False(t, failed.Removed)

	report := out.String()
	assert.Contains(t, report, "FAILED to delete")
	assert.Contains(t, report, "Removed 2 folders.")
}

func TestMatchedSubtreeIsPruned(t *testing.T) {
	base := t.TempDir()
	// A removable directory nested inside another removable directory
	// must never be reported on its own.
	writeTree(t, base, map[string]string{
		"app/package.json":                        "{}",
		"app/node_modules/dep/Cargo.toml":         "[package]",
		"app/node_modules/dep/target/debug/a.out": "bin",
	})

	summary, err := Run(base, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/node_modules"}, candidatePaths(t, base, summary))

	// Pruning holds even when the deletion fails: descendants of the
	// failed candidate stay invisible.
	summary, err = Run(base, Options{
		Force: true,
		Out:   &bytes.Buffer{},
		Remove: func(string) error {
			return errors.New("nope")
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/node_modules"}, candidatePaths(t, base, summary))
}

func TestHiddenDirectoriesAreScanned(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"proj/.venv/bin/activate":        "#!/bin/sh",
		"proj/.cache/deep/venv/lib/a.py": "x",
	})

	summary, err := Run(base, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)

	assert.Equal(t, []string{"proj/.cache/deep/venv", "proj/.venv"}, candidatePaths(t, base, summary))
}

func TestRootItselfCanMatch(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"package.json":          "{}",
		"node_modules/left.js":  "x",
		"node_modules/pad/b.js": "y",
	})

	root := filepath.Join(base, "node_modules")
	summary, err := Run(root, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)

	require.Equal(t, 1, summary.Matched())
	assert.Equal(t, root, summary.Candidates[0].Path)
}

func TestNothingFound(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{"src/main.go": "package main"})

	var out bytes.Buffer
	summary, err := Run(base, Options{Force: true, Out: &out})
	require.NoError(t, err)

	assert.Zero(t, summary.Matched())
	assert.Contains(t, out.String(), "✨ Everything looks clean!")
	assert.NotContains(t, out.String(), "Process complete")
}

func TestInvalidRoot(t *testing.T) {
	base := t.TempDir()

	_, err := Run(filepath.Join(base, "missing"), Options{Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, fileutil.ErrNotFound)

	file := filepath.Join(base, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = Run(file, Options{Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, fileutil.ErrNotDir)
}

func TestCustomRuleTable(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"proj/build.gradle":     "plugins {}",
		"proj/.gradle/cache/x":  "bin",
		"other/.gradle/cache/y": "bin",
		"web/package.json":      "{}",
		"web/node_modules/a.js": "x",
	})

	table := append(rules.Default(), rules.Rule{
		Folder:      ".gradle",
		Indicator:   rules.SiblingFile("build.gradle"),
		Description: "Gradle cache",
	})

	summary, err := Run(base, Options{Out: &bytes.Buffer{}, Rules: table})
	require.NoError(t, err)

	assert.Equal(t, []string{"proj/.gradle", "web/node_modules"}, candidatePaths(t, base, summary))
}
