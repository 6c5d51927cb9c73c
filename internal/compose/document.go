package compose

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v4"
)

// DefaultVersion is the compose file format version emitted when the
// invocation does not override it.
const DefaultVersion = "3"

// Docker's healthcheck defaults, applied when the HEALTHCHECK flags were
// not given.
const (
	defaultHealthInterval = 30 * time.Second
	defaultHealthTimeout  = 10 * time.Second
	defaultHealthRetries  = 3
)

// Document is the emitted Compose file.
type Document struct {
	Version  Version             `yaml:"version"`
	Services map[string]*Service `yaml:"services"`
}

// Version is the compose format version. It renders single-quoted so
// the scalar stays a string instead of parsing as an integer.
type Version string

func (v Version) MarshalYAML() (any, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(v),
	}, nil
}

// Service is one service entry. Field order is emission order; empty
// fields are omitted rather than emitted as empty collections.
type Service struct {
	Build       *BuildConfig       `yaml:"build,omitempty"`
	Image       string             `yaml:"image,omitempty"`
	Ports       PortList           `yaml:"ports,omitempty"`
	Volumes     []string           `yaml:"volumes,omitempty"`
	Environment EnvMap             `yaml:"environment,omitempty"`
	WorkingDir  string             `yaml:"working_dir,omitempty"`
	User        string             `yaml:"user,omitempty"`
	Healthcheck *HealthcheckConfig `yaml:"healthcheck,omitempty"`
	Entrypoint  []string           `yaml:"entrypoint,omitempty"`
	Command     []string           `yaml:"command,omitempty"`
}

// BuildConfig tells compose how to rebuild the image.
type BuildConfig struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile"`
}

// PortList renders port mappings as quoted scalars so YAML 1.1 parsers
// cannot misread "80:80" as a sexagesimal number.
type PortList []string

func (p PortList) MarshalYAML() (any, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, s := range p {
		seq.Content = append(seq.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Style: yaml.DoubleQuotedStyle,
			Value: s,
		})
	}
	return seq, nil
}

// EnvMap renders ordered environment entries as a YAML mapping. A Go map
// cannot hold the declaration order, so the entries stay a slice until
// emission.
type EnvMap []EnvVar

func (e EnvMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range e {
		var key, value yaml.Node
		if err := key.Encode(kv.Key); err != nil {
			return nil, err
		}
		if err := value.Encode(kv.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &value)
	}
	return node, nil
}

// HealthcheckConfig is the emitted healthcheck entry. Interval, timeout
// and retries always carry a value; start_period appears only when the
// source gave one.
type HealthcheckConfig struct {
	Test        []string `yaml:"test,flow"`
	Interval    string   `yaml:"interval"`
	Timeout     string   `yaml:"timeout"`
	Retries     int      `yaml:"retries"`
	StartPeriod string   `yaml:"start_period,omitempty"`
}

// NewDocument wraps a ServiceModel in the emitted document shape. An
// empty version selects DefaultVersion.
func NewDocument(m *ServiceModel, version string) *Document {
	if version == "" {
		version = DefaultVersion
	}

	svc := &Service{
		Image:       m.Image,
		Environment: EnvMap(m.Env),
		WorkingDir:  m.WorkingDir,
		User:        m.User,
		Entrypoint:  m.Entrypoint,
		Command:     m.Command,
	}

	if m.BuildContext != "" || m.Dockerfile != "" {
		svc.Build = &BuildConfig{
			Context:    m.BuildContext,
			Dockerfile: m.Dockerfile,
		}
	}

	for _, p := range m.Ports {
		svc.Ports = append(svc.Ports, formatPort(p))
	}

	for _, v := range m.Volumes {
		svc.Volumes = append(svc.Volumes, v+":"+v)
	}

	if m.Healthcheck != nil {
		svc.Healthcheck = newHealthcheckConfig(m.Healthcheck)
	}

	return &Document{
		Version:  Version(version),
		Services: map[string]*Service{m.Name: svc},
	}
}

// formatPort renders "host:container", keeping the protocol suffix only
// when it is not the tcp default.
func formatPort(p Port) string {
	s := p.Host + ":" + p.Container
	if p.Protocol != "" && p.Protocol != "tcp" {
		s += "/" + p.Protocol
	}
	return s
}

func newHealthcheckConfig(hc *Healthcheck) *HealthcheckConfig {
	cfg := &HealthcheckConfig{
		Test:     append([]string{"CMD"}, hc.Test...),
		Interval: durationString(hc.Interval, defaultHealthInterval),
		Timeout:  durationString(hc.Timeout, defaultHealthTimeout),
		Retries:  hc.Retries,
	}
	if cfg.Retries == 0 {
		cfg.Retries = defaultHealthRetries
	}
	if hc.StartPeriod > 0 {
		cfg.StartPeriod = hc.StartPeriod.String()
	}
	return cfg
}

func durationString(d, fallback time.Duration) string {
	if d <= 0 {
		d = fallback
	}
	return d.String()
}

// Encode writes the document as YAML to w.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode compose document: %w", err)
	}
	return enc.Close()
}

// Bytes renders the document as YAML.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
