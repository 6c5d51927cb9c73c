// Package dockerfile wraps BuildKit's Dockerfile parser behind the
// reader/normalizer surface the translation pipeline consumes.
//
// The wrapper reads the whole input, keeps the raw source for line
// statistics and error messages, and classifies every failure mode
// (unreadable path, empty input, syntax error) as a MalformedInputError.
// Line continuations, comment stripping, escape directives, BOM and
// CRLF handling all come from BuildKit.
package dockerfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/parser"
)

// ParseResult contains the parsed Dockerfile information.
type ParseResult struct {
	// Path is the input path as given ("-" for stdin, "" for raw readers).
	Path string
	// Source is the raw input content.
	Source []byte
	// TotalLines is the total number of physical lines.
	TotalLines int
	// BlankLines is the number of blank (empty or whitespace-only) lines.
	BlankLines int
	// CommentLines is the number of comment lines (starting with #).
	CommentLines int
	// AST is the parsed Dockerfile AST from BuildKit.
	AST *parser.Result
}

// InstructionCount returns the number of top-level instructions.
func (pr *ParseResult) InstructionCount() int {
	if pr.AST == nil || pr.AST.AST == nil {
		return 0
	}
	return len(pr.AST.AST.Children)
}

// openInput opens an input path for reading.
// If path is "-", returns os.Stdin and a no-op closer.
func openInput(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// ParseFile parses the Dockerfile at path. The context is accepted for
// interface symmetry with the rest of the pipeline; parsing does not block.
func ParseFile(_ context.Context, path string) (*ParseResult, error) {
	r, closer, err := openInput(path)
	if err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	defer func() { _ = closer() }()

	pr, err := Parse(r)
	if err != nil {
		var malformed *MalformedInputError
		if errors.As(err, &malformed) {
			malformed.Path = path
		}
		return nil, err
	}
	pr.Path = path
	return pr, nil
}

// Parse parses a Dockerfile from a reader.
func Parse(r io.Reader) (*ParseResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &MalformedInputError{Err: err}
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return nil, &MalformedInputError{Reason: "file is empty"}
	}

	stats := countLines(content)

	ast, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, &MalformedInputError{Err: err}
	}
	if ast.AST == nil || len(ast.AST.Children) == 0 {
		return nil, &MalformedInputError{Reason: "file contains no instructions"}
	}

	return &ParseResult{
		Source:       content,
		TotalLines:   stats.total,
		BlankLines:   stats.blank,
		CommentLines: stats.comments,
		AST:          ast,
	}, nil
}

// lineStats contains counts of different line types.
type lineStats struct {
	total    int
	blank    int
	comments int
}

// countLines counts total, blank, and comment lines in content.
func countLines(content []byte) lineStats {
	var stats lineStats
	scanner := bufio.NewScanner(bytes.NewReader(content))

	for scanner.Scan() {
		stats.total++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			stats.blank++
		} else if strings.HasPrefix(line, "#") {
			stats.comments++
		}
	}

	return stats
}
