package stage

import "fmt"

// MissingBaseImageError reports a Dockerfile with no FROM instruction.
// Without at least one stage there is nothing to derive a service from.
type MissingBaseImageError struct {
	// Path is the input path, or "-" for stdin.
	Path string
}

func (e *MissingBaseImageError) Error() string {
	target := e.Path
	switch target {
	case "":
		target = "input"
	case "-":
		target = "stdin"
	}
	return fmt.Sprintf("no FROM instruction found in %s", target)
}

// UnknownTargetError reports a requested build target that matches no
// stage alias or index in the Dockerfile.
type UnknownTargetError struct {
	Target string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown build stage %q", e.Target)
}
