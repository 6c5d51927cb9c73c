// Package reporter renders generation results.
//
// The text reporter writes the human-readable summary shown after a
// compose document is generated: the success line, optional run details,
// and an optional syntax-highlighted preview of the emitted YAML.
package reporter

import (
	"fmt"
	"io"
	"os"
)

// Summary describes one completed generation run.
type Summary struct {
	// Input is the build file that was parsed ("-" for stdin).
	Input string

	// Output is the path the document was written to.
	Output string

	// Service is the emitted service name.
	Service string

	// Image is the emitted image tag.
	Image string

	// Stages is the number of build stages in the input.
	Stages int

	// Instructions is the number of instructions in the selected stage.
	Instructions int

	// Document is the emitted YAML, used for the preview.
	Document []byte
}

// GetWriter returns an io.Writer for the given output path.
// "-" writes to stdout; anything else creates a file.
func GetWriter(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
