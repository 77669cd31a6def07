package combiner

import (
	"strings"

	"github.com/harrison/scour/internal/fileutil"
)

// Fixed filter tables. These are part of the tool's observable contract:
// two runs of the same binary over the same tree always agree on what is
// aggregated, regardless of configuration files present in the tree itself.
var (
	defaultIgnoreDirs = []string{
		"node_modules",
		"target",
		"vendor",
		".git",
		".svn",
		".hg",
		".idea",
		".vscode",
		"dist",
		"build",
		"coverage",
		"__pycache__",
	}

	defaultIgnoreFiles = []string{
		"package-lock.json",
		"yarn.lock",
		"pnpm-lock.yaml",
		"Cargo.lock",
		"composer.lock",
		".DS_Store",
		"Thumbs.db",
		".env",
	}

	binaryExtensions = []string{
		"png", "jpg", "jpeg", "gif", "ico", "svg", "woff", "woff2", "ttf", "eot",
		"mp4", "webm", "zip", "tar", "gz", "exe", "dll", "so", "dylib", "class", "pyc",
	}

	// Extensionless files are only aggregated when their name ends with
	// one of these. The suffix comparison is deliberately loose (it also
	// matches e.g. "THIRD_PARTY_LICENSE") and extendable via config.
	defaultTextNames = []string{"Makefile", "Dockerfile", "LICENSE", "README"}
)

// Filter decides which entries of a scan take part in aggregation.
// Directory decisions feed the traversal predicate; file decisions run the
// full ordered policy including the sink self-exclusion guard.
type Filter struct {
	include     map[string]struct{} // nil when no include-list is configured
	exclude     map[string]struct{}
	binary      map[string]struct{}
	ignoreDirs  map[string]struct{}
	ignoreFiles map[string]struct{}
	textNames   []string
	sink        Sink
}

func newFilter(opts Options, sink Sink) *Filter {
	f := &Filter{
		include:     extSet(opts.Include),
		exclude:     extSet(opts.Exclude),
		binary:      nameSet(binaryExtensions, nil),
		ignoreDirs:  nameSet(defaultIgnoreDirs, opts.IgnoreDirs),
		ignoreFiles: nameSet(defaultIgnoreFiles, opts.IgnoreFiles),
		textNames:   append(append([]string{}, defaultTextNames...), opts.TextNames...),
		sink:        sink,
	}
	if f.exclude == nil {
		f.exclude = map[string]struct{}{}
	}
	return f
}

// extSet normalizes a user extension list ("go", ".go", " go ") into a
// lookup set. An empty list yields nil, meaning "not configured".
func extSet(exts []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, e := range exts {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e != "" {
			set[e] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func nameSet(defaults, extras []string) map[string]struct{} {
	set := make(map[string]struct{}, len(defaults)+len(extras))
	for _, n := range defaults {
		set[n] = struct{}{}
	}
	for _, n := range extras {
		set[n] = struct{}{}
	}
	return set
}

// IncludeEntry is the traversal predicate: it prunes ignored directories
// and anything whose name starts with a dot. The walk root itself is never
// passed here, so a dot-named root still gets scanned.
func (f *Filter) IncludeEntry(e *fileutil.Entry) bool {
	if strings.HasPrefix(e.Name, ".") {
		return false
	}
	if e.Type == fileutil.TypeDir {
		_, ignored := f.ignoreDirs[e.Name]
		return !ignored
	}
	return true
}

// Accept runs the ordered file policy and reports whether the file's
// contents belong in the output, along with the extension used as the
// block's format tag (empty for extensionless files).
func (f *Filter) Accept(e *fileutil.Entry) (string, bool) {
	name := e.Name
	if _, blocked := f.ignoreFiles[name]; blocked || strings.HasPrefix(name, ".") {
		return "", false
	}

	if f.sink != nil && f.sink.IsSelf(e.Path) {
		return "", false
	}

	ext := fileutil.Ext(name)
	if ext == "" {
		if !f.knownTextName(name) {
			return "", false
		}
		return "", true
	}

	if f.include != nil {
		if _, ok := f.include[ext]; !ok {
			return "", false
		}
	}
	if _, excluded := f.exclude[ext]; excluded {
		return "", false
	}
	if _, binary := f.binary[ext]; binary {
		return "", false
	}
	return ext, true
}

func (f *Filter) knownTextName(name string) bool {
	for _, t := range f.textNames {
		if strings.HasSuffix(name, t) {
			return true
		}
	}
	return false
}
