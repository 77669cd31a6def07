package fileutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// EntryType classifies a visited filesystem node.
type EntryType int

const (
	// TypeDir is a directory.
	TypeDir EntryType = iota
	// TypeFile is a regular file.
	TypeFile
	// TypeOther covers everything else (symlinks, devices, sockets).
	// Symbolic links are never followed, so a link to a directory is
	// still TypeOther.
	TypeOther
)

// Entry describes one visited filesystem node. Entries are produced lazily
// during a walk and are only valid for the duration of the visit call.
type Entry struct {
	// Path is the entry's path, rooted at the walk root.
	Path string
	// Name is the entry's base name.
	Name string
	// Depth is the number of path segments below the walk root.
	// The root itself has depth 0.
	Depth int
	// Type classifies the entry.
	Type EntryType

	skip bool
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool { return e.Type == TypeDir }

// Parent returns the path of the directory containing the entry.
func (e *Entry) Parent() string { return filepath.Dir(e.Path) }

// SkipSubtree marks the entry's descendants as pruned: none of them will be
// visited after the current visit call returns. It exists for consumers whose
// pruning decision depends on context the Include predicate cannot see, such
// as sibling files or the outcome of a deletion. No-op for non-directories.
func (e *Entry) SkipSubtree() { e.skip = true }

// WalkOptions configures a Walk.
type WalkOptions struct {
	// Include decides whether an entry is visited. Returning false for a
	// directory prunes its whole subtree; returning false for anything
	// else omits just that entry. Include is never consulted for the
	// depth-0 root entry. A nil Include admits everything.
	Include func(*Entry) bool

	// OnError receives per-entry traversal failures (unreadable
	// directory, broken link). The walk continues afterwards. A nil
	// OnError discards them.
	OnError func(path string, err error)
}

// VisitFunc is called once per visited entry. Returning a non-nil error
// aborts the walk and surfaces the error from Walk.
type VisitFunc func(*Entry) error

// Walk traverses the tree rooted at root depth-first, visiting every entry
// admitted by opts.Include. It is read-only apart from the stat and readdir
// calls the traversal itself needs; mutation is the visitor's business.
func Walk(root string, opts WalkOptions, visit VisitFunc) error {
	root = filepath.Clean(root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Per-entry failure: report and keep walking. WalkDir
			// already gave up on this subtree.
			if opts.OnError != nil {
				opts.OnError(path, err)
			}
			return nil
		}

		entry := &Entry{
			Path:  path,
			Name:  d.Name(),
			Depth: depth(root, path),
			Type:  classify(d),
		}

		// The root is always visited so a scan can never filter
		// itself out (e.g. a root whose name starts with a dot).
		if entry.Depth > 0 && opts.Include != nil && !opts.Include(entry) {
			if entry.Type == TypeDir {
				return fs.SkipDir
			}
			return nil
		}

		if err := visit(entry); err != nil {
			return err
		}
		if entry.skip && entry.Type == TypeDir {
			return fs.SkipDir
		}
		return nil
	})
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func classify(d fs.DirEntry) EntryType {
	switch {
	case d.IsDir():
		return TypeDir
	case d.Type().IsRegular():
		return TypeFile
	default:
		return TypeOther
	}
}
