package plan

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// SlugFunc normalizes a name stem. It must be deterministic and must not
// produce path separators.
type SlugFunc func(string) string

// Slugify is the default SlugFunc: transliterated, lowercase, dash separated.
func Slugify(s string) string {
	return slug.Make(s)
}

// splitName splits a base name into stem and extension. The extension keeps
// its leading dot. A name whose only dot is its first character has no
// extension, so ".bashrc" is all stem.
func splitName(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// targetName returns slug(stem)+ext for name.
func targetName(name string, slugify SlugFunc) (string, bool) {
	stem, ext := splitName(name)
	s := slugify(stem)
	if s == "" || strings.ContainsAny(s, `/\`) {
		return "", false
	}
	return s + ext, true
}

// suffixed inserts an underscore between the stem and extension of path's base name.
func suffixed(path string) string {
	dir, base := filepath.Split(path)
	stem, ext := splitName(base)
	return filepath.Join(dir, stem+"_"+ext)
}

// disambiguate returns the first candidate in the chain path, suffixed(path),
// suffixed(suffixed(path)), ... that isTaken reports free. Each step extends
// the stem, so the loop ends once the predicate runs out of claimed names.
func disambiguate(path string, isTaken func(string) bool) string {
	for isTaken(path) {
		path = suffixed(path)
	}
	return path
}

// inChain reports whether candidate is target or one of its disambiguated forms.
func inChain(target, candidate string) bool {
	if filepath.Dir(target) != filepath.Dir(candidate) {
		return false
	}
	tstem, text := splitName(filepath.Base(target))
	cstem, cext := splitName(filepath.Base(candidate))
	if text != cext || !strings.HasPrefix(cstem, tstem) {
		return false
	}
	return strings.Trim(cstem[len(tstem):], "_") == ""
}
