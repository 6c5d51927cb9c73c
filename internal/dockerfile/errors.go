package dockerfile

import "fmt"

// MalformedInputError reports input that cannot be parsed at the
// line/token level: an unreadable path, an empty or instruction-less
// file, or a syntax error from the underlying parser.
type MalformedInputError struct {
	// Path is the input path, or "-" for stdin. Empty for raw readers.
	Path string

	// Reason describes the failure when there is no underlying error.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

func (e *MalformedInputError) Error() string {
	target := e.Path
	switch target {
	case "":
		target = "input"
	case "-":
		target = "stdin"
	}
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %s: %v", target, e.Err)
	}
	return fmt.Sprintf("cannot parse %s: %s", target, e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }
