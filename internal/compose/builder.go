package compose

import (
	"path"

	"github.com/wharflab/berth/internal/instruction"
	"github.com/wharflab/berth/internal/stage"
)

// BuildOptions carries the invocation context that the instruction
// stream cannot provide.
type BuildOptions struct {
	ServiceName  string
	Image        string
	BuildContext string
	Dockerfile   string
}

// Build folds the stage's instructions left to right into a ServiceModel.
// The fold never fails: instructions that do not shape the runtime
// service are consumed without effect.
func Build(st *stage.Stage, opts BuildOptions) *ServiceModel {
	m := &ServiceModel{
		Name:         opts.ServiceName,
		Image:        opts.Image,
		BuildContext: opts.BuildContext,
		Dockerfile:   opts.Dockerfile,
	}

	for _, ins := range st.Instructions {
		switch ins.Kind {
		case instruction.KindEnv:
			for _, kv := range ins.Env {
				m.upsertEnv(kv.Key, kv.Value)
			}

		case instruction.KindExpose:
			for _, p := range ins.Ports {
				m.addPort(p)
			}

		case instruction.KindVolume:
			for _, v := range ins.Volumes {
				m.addVolume(v)
			}

		case instruction.KindWorkdir:
			m.setWorkingDir(ins.Workdir)

		case instruction.KindUser:
			m.User = ins.User

		case instruction.KindHealthcheck:
			m.setHealthcheck(ins.Healthcheck)

		case instruction.KindEntrypoint:
			m.Entrypoint = ins.Args

		case instruction.KindCmd:
			m.Command = ins.Args

		default:
			// RUN, COPY, ADD, LABEL, ARG and unknown keywords describe
			// the build, not the running service.
		}
	}

	return m
}

// upsertEnv keeps the first-seen position of a key and replaces its value.
func (m *ServiceModel) upsertEnv(key, value string) {
	for i := range m.Env {
		if m.Env[i].Key == key {
			m.Env[i].Value = value
			return
		}
	}
	m.Env = append(m.Env, EnvVar{Key: key, Value: value})
}

// addPort appends a port unless the (container, protocol) pair is
// already published. Host defaults to the container port.
func (m *ServiceModel) addPort(p instruction.PortSpec) {
	for _, existing := range m.Ports {
		if existing.Container == p.Container && existing.Protocol == p.Protocol {
			return
		}
	}
	host := p.Host
	if host == "" {
		host = p.Container
	}
	m.Ports = append(m.Ports, Port{
		Host:      host,
		Container: p.Container,
		Protocol:  p.Protocol,
	})
}

// addVolume appends a path once, keeping declaration order.
func (m *ServiceModel) addVolume(v string) {
	for _, existing := range m.Volumes {
		if existing == v {
			return
		}
	}
	m.Volumes = append(m.Volumes, v)
}

// setWorkingDir overwrites the working directory. A relative path is
// resolved against the previous value, matching how Docker chains
// WORKDIR instructions.
func (m *ServiceModel) setWorkingDir(dir string) {
	if dir == "" {
		return
	}
	if !path.IsAbs(dir) && m.WorkingDir != "" {
		dir = path.Join(m.WorkingDir, dir)
	}
	m.WorkingDir = dir
}

// setHealthcheck overwrites the healthcheck as a whole. HEALTHCHECK NONE
// clears any earlier declaration.
func (m *ServiceModel) setHealthcheck(hc *instruction.Healthcheck) {
	if hc == nil {
		return
	}
	if hc.None {
		m.Healthcheck = nil
		return
	}
	m.Healthcheck = &Healthcheck{
		Test:        hc.Test,
		Interval:    hc.Interval,
		Timeout:     hc.Timeout,
		StartPeriod: hc.StartPeriod,
		Retries:     hc.Retries,
	}
}
