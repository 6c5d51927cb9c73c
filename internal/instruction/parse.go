package instruction

import (
	"fmt"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/google/shlex"
	"github.com/moby/buildkit/frontend/dockerfile/instructions"
	"github.com/moby/buildkit/frontend/dockerfile/parser"
	dockerspec "github.com/moby/docker-image-spec/specs-go/v1"
)

// FromNode classifies one top-level syntax-tree node into a typed
// instruction.
//
// Unrecognized keywords, and recognized keywords whose payloads BuildKit
// rejects, yield KindUnknown rather than an error. The only error returned
// is *UnsupportedArgumentError, for CMD/ENTRYPOINT/HEALTHCHECK payloads
// whose tokens would feed the output model but cannot be parsed.
func FromNode(node *parser.Node) (Instruction, error) {
	ins := Instruction{
		Kind:    KindUnknown,
		Keyword: strings.ToLower(node.Value),
		Raw:     node.Original,
		Line:    node.StartLine,
	}

	kind, ok := kindNames[ins.Keyword]
	if !ok {
		return ins, nil
	}

	typed, err := instructions.ParseInstruction(node)
	if err != nil {
		// A recognized keyword with a payload BuildKit cannot type
		// (ENV with no value, HEALTHCHECK with a bad flag, ...) is
		// carried as Unknown so it never sinks the file.
		return ins, nil
	}
	ins.Kind = kind

	switch c := typed.(type) {
	case *instructions.Stage:
		ins.From = &FromDetails{Image: c.BaseName, Alias: c.Name, Platform: c.Platform}

	case *instructions.RunCommand:
		// RUN payloads never reach the output model and stay opaque.
		// `RUN [ -f /x ] && cmd` is a shell test, not a malformed array.
		if c.PrependShell {
			ins.Form = FormShell
		} else {
			ins.Form = FormExec
		}

	case *instructions.EnvCommand:
		for _, kv := range c.Env {
			ins.Env = append(ins.Env, KeyValue{Key: kv.Key, Value: kv.Value})
		}

	case *instructions.ExposeCommand:
		// ExposeCommand.Ports is sorted; the node chain keeps the words
		// in source order, which the published ports must follow.
		ins.Ports = parsePorts(exposeTokens(node))

	case *instructions.VolumeCommand:
		for _, v := range c.Volumes {
			ins.Volumes = append(ins.Volumes, unquote(v))
		}

	case *instructions.WorkdirCommand:
		ins.Workdir = unquote(c.Path)

	case *instructions.UserCommand:
		ins.User = unquote(c.User)

	case *instructions.CmdCommand:
		args, form, err := commandTokens(&ins, c.ShellDependantCmdLine)
		if err != nil {
			return ins, err
		}
		ins.Args, ins.Form = args, form

	case *instructions.EntrypointCommand:
		args, form, err := commandTokens(&ins, c.ShellDependantCmdLine)
		if err != nil {
			return ins, err
		}
		ins.Args, ins.Form = args, form

	case *instructions.HealthCheckCommand:
		hc, err := healthcheckFrom(&ins, c.Health)
		if err != nil {
			return ins, err
		}
		if hc == nil {
			ins.Kind = KindUnknown
			return ins, nil
		}
		ins.Healthcheck = hc
		ins.Form = hc.Form

	case *instructions.CopyCommand:
		ins.StageRef = c.From
	}

	return ins, nil
}

// commandTokens normalizes a CMD/ENTRYPOINT payload to its token sequence.
func commandTokens(ins *Instruction, cmdline instructions.ShellDependantCmdLine) ([]string, Form, error) {
	if !cmdline.PrependShell {
		return append([]string(nil), cmdline.CmdLine...), FormExec, nil
	}
	return shellTokens(ins, strings.Join(cmdline.CmdLine, " "))
}

// shellTokens tokenizes a shell-form payload: whitespace split except
// inside quotes, with an unquoted # starting a trailing comment. A payload
// that opens a JSON array reached this path because it failed array
// parsing, which is a hard error for instructions feeding the model.
func shellTokens(ins *Instruction, raw string) ([]string, Form, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		return nil, FormShell, &UnsupportedArgumentError{
			Keyword: ins.Keyword,
			Line:    ins.Line,
			Reason:  fmt.Sprintf("%q opens a JSON array but cannot be parsed as one", trimmed),
		}
	}

	tokens, err := shlex.Split(trimmed)
	if err != nil {
		return nil, FormShell, &UnsupportedArgumentError{
			Keyword: ins.Keyword,
			Line:    ins.Line,
			Reason:  err.Error(),
		}
	}
	return tokens, FormShell, nil
}

// healthcheckFrom translates BuildKit's healthcheck config. A nil result
// (with nil error) means the payload carried nothing usable and the
// instruction should degrade to Unknown.
func healthcheckFrom(ins *Instruction, hc *dockerspec.HealthcheckConfig) (*Healthcheck, error) {
	if hc == nil || len(hc.Test) == 0 {
		return nil, nil
	}

	out := &Healthcheck{
		Interval:    hc.Interval,
		Timeout:     hc.Timeout,
		StartPeriod: hc.StartPeriod,
		Retries:     hc.Retries,
	}

	switch hc.Test[0] {
	case "NONE":
		out.None = true
	case "CMD":
		out.Form = FormExec
		out.Test = append(out.Test, hc.Test[1:]...)
	case "CMD-SHELL":
		tokens, _, err := shellTokens(ins, strings.Join(hc.Test[1:], " "))
		if err != nil {
			return nil, err
		}
		out.Form = FormShell
		out.Test = tokens
	default:
		return nil, nil
	}
	return out, nil
}

func exposeTokens(node *parser.Node) []string {
	var words []string
	for n := node.Next; n != nil; n = n.Next {
		words = append(words, n.Value)
	}
	return words
}

// parsePorts normalizes EXPOSE tokens. Tokens that cannot be parsed as
// port specs (typically unresolved build args like $PORT) are skipped;
// port ranges expand to one entry per port.
func parsePorts(specs []string) []PortSpec {
	var out []PortSpec
	for _, raw := range specs {
		mappings, err := nat.ParsePortSpec(strings.ToLower(raw))
		if err != nil {
			continue
		}
		for _, m := range mappings {
			out = append(out, PortSpec{
				Container: m.Port.Port(),
				Host:      m.Binding.HostPort,
				Protocol:  strings.ToLower(m.Port.Proto()),
			})
		}
	}
	return out
}

// unquote strips one pair of matching surrounding quotes. BuildKit keeps
// quotes on whitespace-delimited payloads (VOLUME "/data"); Docker's word
// expansion would remove them, so the pipeline does too.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
