package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/berth/internal/compose"
	"github.com/wharflab/berth/internal/config"
	"github.com/wharflab/berth/internal/discovery"
	"github.com/wharflab/berth/internal/dockerfile"
	"github.com/wharflab/berth/internal/reporter"
	"github.com/wharflab/berth/internal/stage"
)

// Exit codes
const (
	ExitSuccess         = 0 // Document generated
	ExitGenerationError = 1 // Input missing, malformed, or not translatable; write failure
	ExitConfigError     = 2 // Config or usage error
)

func generateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file (default: auto-discover)",
			Sources: cli.EnvVars("BERTH_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "target",
			Aliases: []string{"t"},
			Usage:   "Build stage to translate: name or 0-based index (default: final stage)",
			Sources: cli.EnvVars("BERTH_COMPOSE_TARGET"),
		},
		&cli.StringFlag{
			Name:    "service-name",
			Usage:   "Service name (default: derived from the input's directory)",
			Sources: cli.EnvVars("BERTH_COMPOSE_SERVICE_NAME"),
		},
		&cli.StringFlag{
			Name:    "image",
			Usage:   "Image tag for the service (default: <service>:latest)",
			Sources: cli.EnvVars("BERTH_COMPOSE_IMAGE"),
		},
		&cli.StringFlag{
			Name:    "compose-version",
			Usage:   "Compose file format version",
			Sources: cli.EnvVars("BERTH_COMPOSE_VERSION"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output path, \"-\" for stdout (default: docker-compose.yml next to the input)",
			Sources: cli.EnvVars("BERTH_OUTPUT_PATH"),
		},
		&cli.BoolFlag{
			Name:    "no-color",
			Usage:   "Disable colored output",
			Sources: cli.EnvVars("NO_COLOR"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "Enable debug logging, run details and the document preview",
			Sources: cli.EnvVars("BERTH_VERBOSE"),
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Suppress the success summary",
			Sources: cli.EnvVars("BERTH_OUTPUT_QUIET"),
		},
	}
}

// generation holds the artifacts of one run.
type generation struct {
	document     []byte
	service      string
	image        string
	stages       int
	instructions int
}

// runGenerate is the action handler for the root command.
func runGenerate(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd.Bool("verbose"))

	if cmd.Args().Len() > 2 {
		fmt.Fprintf(os.Stderr, "Error: expected DOCKERFILE [OUTPUT], got %d arguments\n", cmd.Args().Len())
		return cli.Exit("", ExitConfigError)
	}

	input := cmd.Args().Get(0)
	if input == "" {
		input = "."
	}

	resolved, err := discovery.Resolve(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitGenerationError)
	}
	slog.Debug("resolved input", "input", input, "path", resolved)

	cfg, err := loadConfig(cmd, resolved)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	if cfg.ConfigFile != "" {
		slog.Debug("using config file", "path", cfg.ConfigFile)
	}

	gen, err := generate(ctx, resolved, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitGenerationError)
	}

	outputPath := resolveOutputPath(cmd, cfg, resolved)

	writer, closeWriter, err := reporter.GetWriter(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitGenerationError)
	}
	if _, err := writer.Write(gen.document); err != nil {
		_ = closeWriter()
		fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", outputPath, err)
		return cli.Exit("", ExitGenerationError)
	}
	if err := closeWriter(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to close %s: %v\n", outputPath, err)
		return cli.Exit("", ExitGenerationError)
	}
	slog.Debug("wrote compose document", "path", outputPath, "bytes", len(gen.document))

	if cfg.Output.Quiet || outputPath == "-" {
		return nil
	}

	return printSummary(cmd, reporter.Summary{
		Input:        resolved,
		Output:       outputPath,
		Service:      gen.service,
		Image:        gen.image,
		Stages:       gen.stages,
		Instructions: gen.instructions,
		Document:     gen.document,
	})
}

// generate runs the translation pipeline: parse, segment into stages,
// select the target stage, fold it into a service, emit the document.
func generate(ctx context.Context, input string, cfg *config.Config) (*generation, error) {
	pr, err := dockerfile.ParseFile(ctx, input)
	if err != nil {
		return nil, err
	}
	slog.Debug("parsed build file",
		"lines", pr.TotalLines, "instructions", pr.InstructionCount())

	stages, err := stage.Track(pr)
	if err != nil {
		return nil, err
	}

	st, err := stages.Target(cfg.Compose.Target)
	if err != nil {
		return nil, err
	}
	slog.Debug("selected build stage",
		"ref", st.Ref(), "baseImage", st.BaseImage, "instructions", len(st.Instructions))

	serviceName := cfg.Compose.ServiceName
	if serviceName == "" {
		serviceName = compose.ServiceNameFor(input)
	}
	image := cfg.Compose.Image
	if image == "" {
		image = compose.ImageFor(serviceName)
	}

	model := compose.Build(st, compose.BuildOptions{
		ServiceName:  serviceName,
		Image:        image,
		BuildContext: ".",
		Dockerfile:   buildDockerfileName(input),
	})

	doc := compose.NewDocument(model, cfg.Compose.Version)
	data, err := doc.Bytes()
	if err != nil {
		return nil, err
	}

	return &generation{
		document:     data,
		service:      serviceName,
		image:        image,
		stages:       stages.Count(),
		instructions: len(st.Instructions),
	}, nil
}

// printSummary writes the success summary to stdout.
func printSummary(cmd *cli.Command, sum reporter.Summary) error {
	verbose := cmd.Bool("verbose")

	opts := reporter.TextOptions{
		SyntaxHighlight: true,
		ShowDetails:     verbose,
		ShowPreview:     verbose && isatty.IsTerminal(os.Stdout.Fd()),
	}
	if cmd.IsSet("no-color") && cmd.Bool("no-color") {
		color := false
		opts.Color = &color
	}

	if err := reporter.NewTextReporter(opts).Print(os.Stdout, sum); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write summary: %v\n", err)
		return cli.Exit("", ExitGenerationError)
	}
	return nil
}

// loadConfig loads configuration for the resolved input, applying CLI
// flag overrides on top.
func loadConfig(cmd *cli.Command, targetPath string) (*config.Config, error) {
	return config.LoadWithOverrides(targetPath, cmd.String("config"), buildOverrides(cmd))
}

// buildOverrides maps explicitly set CLI flags to the config override
// layer. Only flags the user set participate, so file and env values
// survive for the rest.
func buildOverrides(cmd *cli.Command) map[string]any {
	composeOv := map[string]any{}
	outputOv := map[string]any{}

	if cmd.IsSet("target") {
		composeOv["target"] = cmd.String("target")
	}
	if cmd.IsSet("service-name") {
		composeOv["service-name"] = cmd.String("service-name")
	}
	if cmd.IsSet("image") {
		composeOv["image"] = cmd.String("image")
	}
	if cmd.IsSet("compose-version") {
		composeOv["version"] = cmd.String("compose-version")
	}
	if cmd.IsSet("output") {
		outputOv["path"] = cmd.String("output")
	}
	if cmd.IsSet("quiet") {
		outputOv["quiet"] = cmd.Bool("quiet")
	}

	overrides := map[string]any{}
	if len(composeOv) > 0 {
		overrides["compose"] = composeOv
	}
	if len(outputOv) > 0 {
		overrides["output"] = outputOv
	}
	return overrides
}

// resolveOutputPath picks the output destination: positional OUTPUT,
// then the configured path (--output flag, env, config file), then the
// default sibling of the input.
func resolveOutputPath(cmd *cli.Command, cfg *config.Config, input string) string {
	if out := cmd.Args().Get(1); out != "" {
		return out
	}
	if cfg.Output.Path != "" {
		return cfg.Output.Path
	}
	return defaultOutputPath(input)
}

// defaultOutputPath returns docker-compose.yml next to the input file,
// or in the working directory for stdin input.
func defaultOutputPath(input string) string {
	if input == "-" {
		return "docker-compose.yml"
	}
	return filepath.Join(filepath.Dir(input), "docker-compose.yml")
}

// buildDockerfileName returns the dockerfile name for the build block.
func buildDockerfileName(input string) string {
	if input == "-" {
		return "Dockerfile"
	}
	return filepath.Base(input)
}

// setupLogging configures the process-wide logger. Only warnings and
// errors surface by default; --verbose lowers the threshold to debug.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
