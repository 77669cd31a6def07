package fileutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// DirSize returns the total size in bytes of all regular files under path,
// including path itself when it is a file. Entries that cannot be read are
// skipped; sizing is best-effort reporting, not accounting.
func DirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, ierr := d.Info(); ierr == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// Ext returns name's extension without the leading dot: "main.go" yields
// "go", "archive.tar.gz" yields "gz". Unlike filepath.Ext, a lone leading
// dot does not begin an extension, so dotfiles such as ".env" yield "",
// as do names with no dot at all.
func Ext(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}
