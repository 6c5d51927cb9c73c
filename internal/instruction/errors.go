package instruction

import "fmt"

// UnsupportedArgumentError reports an argument payload whose tokens feed
// the output model but cannot be parsed: an exec-form array literal that
// is not a JSON string array, or a shell-form payload that cannot be
// tokenized (unterminated quote).
type UnsupportedArgumentError struct {
	// Keyword is the lowercase instruction keyword.
	Keyword string
	// Line is the 1-based source line of the instruction.
	Line int
	// Reason describes what could not be parsed.
	Reason string
}

func (e *UnsupportedArgumentError) Error() string {
	return fmt.Sprintf("line %d: unsupported %s argument: %s", e.Line, e.Keyword, e.Reason)
}
