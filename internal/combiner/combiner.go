// Package combiner implements the aggregation scan: it walks a tree,
// filters out dependency directories, lock files, and binary-looking
// content, and serializes every surviving file into one fenced, annotated
// block on the output sink. Blocks stream out in visitation order; at most
// one file's content is held in memory at a time.
package combiner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/harrison/scour/internal/fileutil"
	"github.com/harrison/scour/internal/logger"
)

// Stats totals one aggregation run. Bytes counts content bytes written into
// blocks; Tokens is the rough chars/4 estimate, floored per file.
type Stats struct {
	Files  int
	Bytes  int64
	Tokens int
}

// Options configures an aggregation run.
type Options struct {
	// Include restricts aggregation to these extensions when non-empty.
	Include []string

	// Exclude drops these extensions.
	Exclude []string

	// IgnoreDirs, IgnoreFiles and TextNames extend the built-in filter
	// tables (they never replace them).
	IgnoreDirs  []string
	IgnoreFiles []string
	TextNames   []string

	// Log receives diagnostics. May be nil.
	Log *logger.Console
}

// Run walks root and writes one block per accepted file to sink, returning
// the run's totals. The sink's Finish hook runs after a completed scan;
// closing the sink stays with the caller.
func Run(root string, sink Sink, opts Options) (*Stats, error) {
	if err := fileutil.ValidateRoot(root); err != nil {
		return nil, err
	}

	filter := newFilter(opts, sink)
	stats := &Stats{}

	walkOpts := fileutil.WalkOptions{
		Include: filter.IncludeEntry,
		OnError: func(path string, err error) {
			opts.Log.Warnf("skipping %s: %v", path, err)
		},
	}

	err := fileutil.Walk(root, walkOpts, func(entry *fileutil.Entry) error {
		if entry.Type != fileutil.TypeFile {
			return nil
		}
		ext, ok := filter.Accept(entry)
		if !ok {
			return nil
		}

		data, err := os.ReadFile(entry.Path)
		if err != nil {
			opts.Log.Debugf("read %s: %v", entry.Path, err)
			return nil
		}
		if !utf8.Valid(data) {
			// Binary content that slipped past the extension
			// heuristic. Expected, not actionable.
			return nil
		}

		rel, err := filepath.Rel(root, entry.Path)
		if err != nil {
			rel = entry.Path
		}
		if err := writeBlock(sink, rel, ext, data); err != nil {
			opts.Log.Errorf("write block for %s: %v", entry.Path, err)
			return nil
		}

		stats.Files++
		stats.Bytes += int64(len(data))
		stats.Tokens += utf8.RuneCount(data) / 4
		return nil
	})
	if err != nil {
		return nil, err
	}

	opts.Log.Debugf("combined %d files from %s (%d bytes)", stats.Files, root, stats.Bytes)

	if err := sink.Finish(*stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// writeBlock emits one self-delimited block: a header with the file's
// root-relative path, a fence tagged with its extension, the verbatim
// content, and the closing fence.
func writeBlock(w io.Writer, rel, ext string, content []byte) error {
	if _, err := fmt.Fprintf(w, "\n# File: %s\n```%s\n", rel, ext); err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n```\n")
	return err
}
