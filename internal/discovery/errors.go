package discovery

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileNotFoundError reports an input path that does not exist, or a
// directory input containing no conventionally named build file.
type FileNotFoundError struct {
	Path string

	// Dir marks the directory-probe case; the message differs.
	Dir bool
}

func (e *FileNotFoundError) Error() string {
	if e.Dir {
		return fmt.Sprintf("no Dockerfile found in %s", e.Path)
	}
	return fmt.Sprintf("Dockerfile not found at %s", e.Path)
}

// AmbiguousInputError reports a directory input matching more than one
// build file.
type AmbiguousInputError struct {
	Dir     string
	Matches []string
}

func (e *AmbiguousInputError) Error() string {
	names := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		names = append(names, filepath.Base(m))
	}
	return fmt.Sprintf("multiple build files found in %s (%s): pass one explicitly",
		e.Dir, strings.Join(names, ", "))
}
