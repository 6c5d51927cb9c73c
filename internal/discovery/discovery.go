// Package discovery resolves a user-supplied input to one build file.
//
// An input is either "-" (stdin), an explicit file path, or a directory.
// Directory inputs are probed for the conventional build-file names,
// non-recursively: a generator produces exactly one compose document, so
// a directory must identify exactly one build file.
package discovery

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// exactNames are probed first inside a directory input, in order.
var exactNames = []string{"Dockerfile", "Containerfile"}

// Patterns returns the build-file naming conventions matched inside a
// directory input when no exactly named file exists:
// - Dockerfile.* (Dockerfile.dev, Dockerfile.prod, ...)
// - *.Dockerfile (api.Dockerfile, frontend.Dockerfile, ...)
// - Containerfile.* and *.Containerfile (Podman convention)
func Patterns() []string {
	return []string{
		"Dockerfile.*",
		"*.Dockerfile",
		"Containerfile.*",
		"*.Containerfile",
	}
}

// Resolve maps input to the build file to parse. "-" and explicit file
// paths pass through unchanged; a directory resolves to the single build
// file it contains. The returned path keeps the input's form (relative
// inputs stay relative).
func Resolve(input string) (string, error) {
	if input == "-" {
		return input, nil
	}

	info, err := os.Stat(input)
	if err != nil {
		return "", &FileNotFoundError{Path: input}
	}
	if !info.IsDir() {
		return input, nil
	}

	return resolveDirectory(input)
}

// resolveDirectory picks the build file inside dir: an exact name when
// present, otherwise exactly one wildcard match.
func resolveDirectory(dir string) (string, error) {
	for _, name := range exactNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	var matches []string
	for _, pattern := range Patterns() {
		found, err := doublestar.FilepathGlob(
			filepath.Join(dir, pattern),
			doublestar.WithFilesOnly(),
		)
		if err != nil {
			return "", err
		}
		for _, m := range found {
			if !slices.Contains(matches, m) {
				matches = append(matches, m)
			}
		}
	}
	slices.Sort(matches)

	switch len(matches) {
	case 0:
		return "", &FileNotFoundError{Path: dir, Dir: true}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousInputError{Dir: dir, Matches: matches}
	}
}
