package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/berth/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:      "berth",
		Usage:     "Generate a docker-compose.yml from a Dockerfile",
		Version:   version.Version(),
		ArgsUsage: "[DOCKERFILE] [OUTPUT]",
		Description: `berth reads a Dockerfile and derives a docker-compose service from it.

The runtime instructions of the final build stage (EXPOSE, ENV, VOLUME,
WORKDIR, USER, HEALTHCHECK, ENTRYPOINT, CMD) are folded into a single
service entry; build-only instructions are ignored.

Examples:
  berth Dockerfile
  berth . compose/docker-compose.yml
  berth --target builder app/Dockerfile
  berth --service-name web --output - Dockerfile
  berth - < Dockerfile`,
		Flags:  generateFlags(),
		Action: runGenerate,
		Commands: []*cli.Command{
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
