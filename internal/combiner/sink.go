package combiner

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
)

// Sink is the destination of an aggregation run. The two implementations
// differ in capability, not just in destination: a durable file knows its
// own identity (so the scan can avoid swallowing its own output) and gets a
// completion summary, while an ephemeral stream gets neither, keeping piped
// output clean.
type Sink interface {
	io.Writer

	// IsSelf reports whether path refers to the sink's own backing file.
	IsSelf(path string) bool

	// Finish is called once after a successful scan.
	Finish(stats Stats) error

	// Close releases the sink.
	Close() error
}

// FileSink writes aggregated blocks to a file created at construction time.
type FileSink struct {
	file    *os.File
	info    os.FileInfo
	console io.Writer
}

// NewFileSink creates (or truncates) the output file at path. The summary
// written by Finish goes to console, or standard output when console is nil.
func NewFileSink(path string, console io.Writer) (*FileSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat output file: %w", err)
	}
	if console == nil {
		console = os.Stdout
	}
	return &FileSink{file: file, info: info, console: console}, nil
}

func (s *FileSink) Write(p []byte) (int, error) { return s.file.Write(p) }

// IsSelf compares file identity rather than path spelling, so the output
// file is recognized through symlinks and relative-path aliases.
func (s *FileSink) IsSelf(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(info, s.info)
}

func (s *FileSink) Finish(stats Stats) error {
	_, err := fmt.Fprintf(s.console,
		"✅ Successfully combined code.\n📊 Stats:\n   Files: %d\n   Total Size: %s\n   Est. Tokens: %d (Heuristic: chars/4)\n",
		stats.Files, humanize.Bytes(uint64(stats.Bytes)), stats.Tokens)
	return err
}

func (s *FileSink) Close() error { return s.file.Close() }

// Path returns the location of the backing file.
func (s *FileSink) Path() string { return s.file.Name() }

// StreamSink writes aggregated blocks to an arbitrary writer, typically
// standard output. It has no identity to self-exclude and appends no
// summary.
type StreamSink struct {
	w io.Writer
}

// NewStreamSink wraps w as an ephemeral sink.
func NewStreamSink(w io.Writer) *StreamSink { return &StreamSink{w: w} }

func (s *StreamSink) Write(p []byte) (int, error) { return s.w.Write(p) }

func (s *StreamSink) IsSelf(string) bool { return false }

func (s *StreamSink) Finish(Stats) error { return nil }

func (s *StreamSink) Close() error { return nil }
