// Package fileutil provides the directory traversal engine shared by scour's
// cleanup and aggregation modes.
//
// This package is the single source of truth for walking directory trees in
// scour. It offers a lazy, depth-first walk with per-entry filtering, subtree
// pruning, and error-tolerant scanning, plus small helpers for extension
// splitting and directory sizing.
//
// # Walking
//
// Walk visits every entry under a root in depth-first order and hands each
// one to a visit function:
//
//	err := fileutil.Walk(root, fileutil.WalkOptions{
//	    Include: func(e *fileutil.Entry) bool {
//	        return e.Name != "node_modules"
//	    },
//	    OnError: func(path string, err error) {
//	        log.Warnf("skipping %s: %v", path, err)
//	    },
//	}, func(e *fileutil.Entry) error {
//	    fmt.Println(e.Path)
//	    return nil
//	})
//
// Excluding a directory through Include prevents the walk from ever entering
// it. A consumer that only discovers mid-visit that a directory should be
// pruned (for example after deleting it) calls Entry.SkipSubtree instead;
// the walk then moves on to the directory's next sibling.
//
// The root entry itself (depth 0) is always visited, even when Include would
// reject its name, so a scan always starts inside the requested root.
//
// # Error tolerance
//
// Per-entry failures (unreadable directory, broken link) are reported through
// OnError and the walk continues with the remaining entries. Only a non-nil
// error returned by the visit function aborts the walk.
//
// The walk never follows symbolic links and never modifies the filesystem;
// visitors are free to delete a directory they are positioned at provided
// they call SkipSubtree afterwards.
package fileutil
