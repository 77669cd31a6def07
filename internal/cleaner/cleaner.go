// Package cleaner implements the destructive scan. It walks a tree looking
// for directories the rule table marks as removable build output or
// dependency caches, sizes each one, and either reports it (dry run) or
// deletes it (force). A matched directory's subtree is always pruned, so a
// candidate inside another candidate is never reported twice.
package cleaner

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/harrison/scour/internal/fileutil"
	"github.com/harrison/scour/internal/logger"
	"github.com/harrison/scour/internal/rules"
)

// Candidate is one directory the rule table matched during a scan, along
// with its size and, in force mode, the deletion outcome.
type Candidate struct {
	Path    string
	Rule    rules.Rule
	Size    int64
	Removed bool
	Err     error
}

// Summary aggregates one scan. BytesMatched counts every candidate;
// BytesFreed counts only candidates that were actually removed.
type Summary struct {
	Candidates   []Candidate
	Removed      int
	Failed       int
	BytesMatched int64
	BytesFreed   int64
	Duration     time.Duration
}

// Matched returns the number of candidate directories found.
func (s *Summary) Matched() int { return len(s.Candidates) }

// Options configures a cleanup run.
type Options struct {
	// Force deletes matched directories instead of only reporting them.
	Force bool

	// Rules is the rule table to match against. Nil selects the built-in
	// table.
	Rules []rules.Rule

	// Out receives the user-facing report. Nil selects standard output.
	Out io.Writer

	// Log receives diagnostics. May be nil.
	Log *logger.Console

	// Remove deletes a directory tree. Nil selects os.RemoveAll.
	// Tests inject failures here.
	Remove func(path string) error
}

var (
	matchTag  = color.New(color.FgYellow)
	failTag   = color.New(color.FgRed)
	doneColor = color.New(color.FgGreen)
)

// Run scans root for removable directories and reports (or removes) each
// match. A missing or non-directory root is a fatal configuration error;
// everything after that point is recovered per entry and the scan runs to
// completion.
func Run(root string, opts Options) (*Summary, error) {
	if err := fileutil.ValidateRoot(root); err != nil {
		return nil, err
	}

	table := opts.Rules
	if table == nil {
		table = rules.Default()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	remove := opts.Remove
	if remove == nil {
		remove = os.RemoveAll
	}

	fmt.Fprintf(out, "🔍 Scanning path: %q\n", root)
	if opts.Force {
		fmt.Fprintf(out, "⚠️  DELETING MODE: Folders will be permanently removed.\n\n")
	} else {
		fmt.Fprintf(out, "⚠️  DRY RUN: No folders will be deleted. Use --force to delete.\n\n")
	}

	start := time.Now()
	summary := &Summary{}

	// No Include predicate: the cleanup walk must see hidden directories,
	// otherwise the .venv rule could never fire.
	walkOpts := fileutil.WalkOptions{
		OnError: func(path string, err error) {
			opts.Log.Warnf("skipping %s: %v", path, err)
		},
	}

	err := fileutil.Walk(root, walkOpts, func(entry *fileutil.Entry) error {
		if entry.Type != fileutil.TypeDir {
			return nil
		}

		rule, ok := rules.Match(entry.Name, entry.Parent(), table)
		if !ok {
			return nil
		}

		size := fileutil.DirSize(entry.Path)
		cand := Candidate{Path: entry.Path, Rule: rule, Size: size}
		summary.BytesMatched += size

		if opts.Force {
			fmt.Fprintf(out, "🗑️  Deleting %q (%s) - freeing %s...\n",
				entry.Path, rule.Description, humanize.Bytes(uint64(size)))
			if err := remove(entry.Path); err != nil {
				cand.Err = err
				summary.Failed++
				fmt.Fprintf(out, "   %s to delete %q: %v\n", failTag.Sprint("FAILED"), entry.Path, err)
				opts.Log.Errorf("delete %s: %v", entry.Path, err)
			} else {
				cand.Removed = true
				summary.Removed++
				summary.BytesFreed += size
			}
		} else {
			fmt.Fprintf(out, "%s Found %-12s at %q (%s) - size: %s\n",
				matchTag.Sprint("[MATCH]"), rule.Folder, entry.Path, rule.Description,
				humanize.Bytes(uint64(size)))
		}

		summary.Candidates = append(summary.Candidates, cand)

		// Never descend into a matched directory, whether it was
		// removed, reported, or failed to delete.
		entry.SkipSubtree()
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.Duration = time.Since(start)
	opts.Log.Debugf("cleanup scan of %s finished in %s: %d matched, %d removed, %d failed",
		root, summary.Duration.Round(time.Millisecond), summary.Matched(), summary.Removed, summary.Failed)

	switch {
	case summary.Matched() == 0:
		fmt.Fprintln(out, "✨ Everything looks clean!")
	case opts.Force:
		fmt.Fprintf(out, "\n%s Removed %d folders.\n", doneColor.Sprint("✅ Process complete."), summary.Removed)
		fmt.Fprintf(out, "🎉 Reclaimed space: %s\n", humanize.Bytes(uint64(summary.BytesFreed)))
	default:
		fmt.Fprintf(out, "\n💡 Potential space to reclaim: %s\n", humanize.Bytes(uint64(summary.BytesMatched)))
	}

	return summary, nil
}
