// Package compose folds a build stage into a service description and
// emits it as a Compose document.
//
// The fold is total: given a stage it always produces a ServiceModel,
// however sparse. Instructions that do not shape the runtime service
// (RUN, COPY, ADD, LABEL, ARG, unknown keywords) are consumed without
// effect.
package compose

import "time"

// ServiceModel is the structured service description derived from one
// build stage, independent of the output document shape.
type ServiceModel struct {
	// Name is the compose service key.
	Name string

	// Image is the image tag recorded for the service.
	Image string

	// BuildContext and Dockerfile describe how the service is rebuilt.
	// Both come from the invocation's file-system context, not from the
	// instruction stream.
	BuildContext string
	Dockerfile   string

	// Ports are published ports in declaration order, unique by
	// (container, protocol).
	Ports []Port

	// Env holds environment entries in first-declaration order. A
	// repeated key keeps its position and takes the last value.
	Env []EnvVar

	// Volumes are container paths in declaration order, deduplicated.
	Volumes []string

	WorkingDir string
	User       string

	// Healthcheck is nil when the stage declares none or clears it with
	// HEALTHCHECK NONE.
	Healthcheck *Healthcheck

	// Entrypoint and Command are normalized token sequences; both forms
	// of the source instruction end up here as tokens.
	Entrypoint []string
	Command    []string
}

// Port is one published port. Host defaults to the container port when
// the source gave no mapping.
type Port struct {
	Host      string
	Container string
	Protocol  string
}

// EnvVar is one environment entry.
type EnvVar struct {
	Key   string
	Value string
}

// Healthcheck mirrors the HEALTHCHECK flags plus its embedded command
// tokens. Zero durations and a zero retry count mean the flag was not
// given; document emission fills Docker's defaults.
type Healthcheck struct {
	Test        []string
	Interval    time.Duration
	Timeout     time.Duration
	StartPeriod time.Duration
	Retries     int
}
