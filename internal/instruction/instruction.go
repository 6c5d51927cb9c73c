// Package instruction classifies Dockerfile syntax-tree nodes into typed
// instructions for the translation pipeline.
//
// Classification is tolerant by design: keywords the pipeline does not
// recognize (and recognized keywords whose payloads BuildKit rejects)
// degrade to KindUnknown instead of aborting, so one odd line never sinks
// a whole file. The only hard failures are argument payloads whose tokens
// feed the output model and cannot be tokenized; those surface as
// UnsupportedArgumentError with the offending line.
package instruction

import "time"

// Kind identifies the recognized Dockerfile keywords.
type Kind int

const (
	// KindUnknown marks an instruction the pipeline does not recognize.
	// Unknown instructions are carried through and ignored downstream.
	KindUnknown Kind = iota
	KindFrom
	KindRun
	KindCmd
	KindLabel
	KindMaintainer
	KindExpose
	KindEnv
	KindAdd
	KindCopy
	KindEntrypoint
	KindVolume
	KindUser
	KindWorkdir
	KindArg
	KindOnbuild
	KindStopSignal
	KindHealthcheck
	KindShell
)

// kindNames maps lowercase keywords to kinds. The zero Kind is the
// fallback for anything not listed here.
var kindNames = map[string]Kind{
	"from":        KindFrom,
	"run":         KindRun,
	"cmd":         KindCmd,
	"label":       KindLabel,
	"maintainer":  KindMaintainer,
	"expose":      KindExpose,
	"env":         KindEnv,
	"add":         KindAdd,
	"copy":        KindCopy,
	"entrypoint":  KindEntrypoint,
	"volume":      KindVolume,
	"user":        KindUser,
	"workdir":     KindWorkdir,
	"arg":         KindArg,
	"onbuild":     KindOnbuild,
	"stopsignal":  KindStopSignal,
	"healthcheck": KindHealthcheck,
	"shell":       KindShell,
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Form describes how an instruction's argument payload was written.
type Form int

const (
	// FormNone is for payloads with no shell/exec distinction
	// (ENV, EXPOSE, WORKDIR, ...).
	FormNone Form = iota
	// FormShell is free-text payload, tokenized with shell quoting rules.
	FormShell
	// FormExec is a JSON string-array payload.
	FormExec
)

func (f Form) String() string {
	switch f {
	case FormShell:
		return "shell"
	case FormExec:
		return "exec"
	default:
		return "none"
	}
}

// KeyValue is one ENV key/value pair.
type KeyValue struct {
	Key   string
	Value string
}

// PortSpec is one normalized EXPOSE entry.
type PortSpec struct {
	// Container is the container-side port.
	Container string
	// Host is the host-side port; empty means "same as container".
	Host string
	// Protocol is "tcp" or "udp"; parsing defaults absent protocols to "tcp".
	Protocol string
}

// Healthcheck carries a parsed HEALTHCHECK instruction.
type Healthcheck struct {
	// None is set for HEALTHCHECK NONE, which clears any earlier healthcheck.
	None bool

	// Test holds the check command tokens without the CMD/CMD-SHELL marker.
	Test []string

	// Form records whether the embedded CMD was exec or shell form.
	Form Form

	Interval    time.Duration
	Timeout     time.Duration
	StartPeriod time.Duration
	Retries     int
}

// FromDetails carries the payload of a FROM instruction.
type FromDetails struct {
	// Image is the base image reference as written (may reference a stage).
	Image string
	// Alias is the AS name, normalized to lowercase; empty when unnamed.
	Alias string
	// Platform is the --platform flag value, if any.
	Platform string
}

// Instruction is one classified Dockerfile instruction. The payload
// fields are populated according to Kind; everything else is zero.
type Instruction struct {
	Kind    Kind
	Form    Form
	Keyword string // lowercase keyword as written
	Raw     string // source text of the logical line
	Line    int    // 1-based line of the instruction start

	From        *FromDetails // KindFrom
	Env         []KeyValue   // KindEnv
	Ports       []PortSpec   // KindExpose
	Volumes     []string     // KindVolume
	Workdir     string       // KindWorkdir
	User        string       // KindUser
	Args        []string     // KindCmd, KindEntrypoint
	Healthcheck *Healthcheck // KindHealthcheck
	StageRef    string       // KindCopy: --from value, if any
}
