// Package rules defines the table of cleanup rules and the matching logic
// that decides whether a directory is a deletion candidate.
//
// A rule pairs a folder name with an optional project indicator: a sibling
// file whose presence confirms the folder belongs to the ecosystem the rule
// targets. Indicators keep the cleaner from deleting a directory that merely
// shares a name with a dependency folder (a source directory called "target",
// say, in a tree with no Cargo.toml).
package rules

import (
	"os"
	"path/filepath"

	"github.com/harrison/scour/internal/fileutil"
)

// IndicatorKind selects how a rule confirms a candidate folder.
type IndicatorKind int

const (
	// IndicatorNone matches unconditionally.
	IndicatorNone IndicatorKind = iota
	// IndicatorFile requires a sibling entry with an exact name.
	IndicatorFile
	// IndicatorExt requires at least one sibling file whose extension
	// equals the value (case-sensitive, no dot).
	IndicatorExt
)

// Indicator is a rule's project check. The zero value matches
// unconditionally. New kinds extend the switch in Holds; the matcher's
// control flow never changes.
type Indicator struct {
	Kind  IndicatorKind
	Value string
}

// SiblingFile returns an indicator satisfied when parent/name exists.
func SiblingFile(name string) Indicator {
	return Indicator{Kind: IndicatorFile, Value: name}
}

// SiblingExt returns an indicator satisfied when the parent directory holds
// at least one file with the given extension (without dot).
func SiblingExt(ext string) Indicator {
	return Indicator{Kind: IndicatorExt, Value: ext}
}

// Holds reports whether the indicator is satisfied by the given parent
// directory. It reads the parent listing at most once; results are not
// cached because every candidate has a different parent.
func (in Indicator) Holds(parentDir string) bool {
	switch in.Kind {
	case IndicatorNone:
		return true
	case IndicatorFile:
		_, err := os.Stat(filepath.Join(parentDir, in.Value))
		return err == nil
	case IndicatorExt:
		entries, err := os.ReadDir(parentDir)
		if err != nil {
			return false
		}
		for _, e := range entries {
			if !e.IsDir() && fileutil.Ext(e.Name()) == in.Value {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Rule describes one deletable folder kind.
type Rule struct {
	// Folder is the exact directory name the rule applies to.
	Folder string
	// Indicator gates the match on parent context.
	Indicator Indicator
	// Description is the human-readable label shown in reports.
	Description string
}

// defaultTable is the fixed rule table. Its contents and order are an
// observable contract: order decides which rule wins if the table ever
// grows entries with duplicate folder names.
var defaultTable = []Rule{
	{Folder: "node_modules", Indicator: SiblingFile("package.json"), Description: "Node.js dependencies"},
	{Folder: "target", Indicator: SiblingFile("Cargo.toml"), Description: "Rust build artifacts"},
	{Folder: "vendor", Indicator: SiblingFile("composer.json"), Description: "PHP dependencies"},
	{Folder: "venv", Description: "Python virtual environment"},
	{Folder: ".venv", Description: "Python virtual environment"},
	{Folder: "bin", Indicator: SiblingExt("csproj"), Description: ".NET build output"},
	{Folder: "obj", Indicator: SiblingExt("csproj"), Description: ".NET intermediate output"},
}

// Default returns a copy of the fixed rule table. Callers may append custom
// rules to the copy; the table itself is immutable for the process lifetime.
func Default() []Rule {
	table := make([]Rule, len(defaultTable))
	copy(table, defaultTable)
	return table
}

// Match returns the first rule in table order whose folder name equals
// dirName and whose indicator holds against parentDir.
func Match(dirName, parentDir string, table []Rule) (Rule, bool) {
	for _, r := range table {
		if r.Folder != dirName {
			continue
		}
		if r.Indicator.Holds(parentDir) {
			return r, true
		}
	}
	return Rule{}, false
}
