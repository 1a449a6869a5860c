package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aitomatic/orchestra/internal/builtin"
	"github.com/aitomatic/orchestra/internal/engine"
	"github.com/aitomatic/orchestra/internal/manifest"
	"github.com/aitomatic/orchestra/internal/pipeline"
	"github.com/aitomatic/orchestra/internal/store"
	"github.com/aitomatic/orchestra/internal/value"
)

// Run error codes, continuing the manifest's Exxx space.
const (
	ErrCodeCacheOpen    = "E201" // strategy cache database could not be opened
	ErrCodeRunFailed    = "E202" // pipeline execution failed
	ErrCodeGenericStore = "E203" // strategy cache read/write failed
)

// RunOptions holds flags specific to the run command.
type RunOptions struct {
	Trace     bool
	MaxStages int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	runOpts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <manifest>",
		Short: "Run a pipeline manifest",
		Long: `Run the pipeline a YAML manifest declares.

Stages reference built-in functions; each stage's output is matched onto
the next stage's parameters, with missing values injected from the
manifest's scoped context. With --cache, learned strategies persist
across runs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, runOpts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&runOpts.Trace, "trace", false, "include the orchestration trace in output")
	cmd.Flags().IntVar(&runOpts.MaxStages, "max-stages", 0, "maximum pipeline stages (0 = unlimited)")

	return cmd
}

func runRun(opts *RootOptions, runOpts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	m, err := manifest.Load(path)
	if err != nil {
		return outputManifestError(formatter, err)
	}
	formatter.VerboseLog("Loaded manifest %s (%d stages)", m.Name, len(m.Pipeline))

	built, err := m.Build(builtin.Default())
	if err != nil {
		return outputManifestError(formatter, err)
	}

	cache, closeCache, err := openStrategyCache(opts.Cache)
	if err != nil {
		_ = formatter.Error(ErrCodeCacheOpen, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening strategy cache", err)
	}
	defer closeCache()

	runner := pipeline.NewRunner(
		engine.New(engine.WithStrategyCache(cache)),
		pipeline.WithMaxStages(runOpts.MaxStages),
	)

	result, err := runner.Run(cmd.Context(), built.Pipeline, built.Input, built.Store)
	if err != nil {
		_ = formatter.Error(ErrCodeRunFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "run failed", err)
	}

	return outputRunResult(formatter, runOpts, m.Name, result)
}

// openStrategyCache returns the persistent store when a path is set, the
// in-memory cache otherwise.
func openStrategyCache(path string) (engine.StrategyCache, func(), error) {
	if path == "" {
		return engine.NewMemoryStrategyCache(), func() {}, nil
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}

func outputManifestError(formatter *OutputFormatter, err error) error {
	var me *manifest.Error
	if errors.As(err, &me) {
		_ = formatter.Error(me.Code, me.Message, nil)
		return WrapExitError(ExitCommandError, me.Code, err)
	}
	_ = formatter.Error(manifest.ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "loading manifest", err)
}

func outputRunResult(formatter *OutputFormatter, runOpts *RunOptions, name string, result *pipeline.Result) error {
	if formatter.Format == "json" {
		var payload value.Value
		if runOpts.Trace {
			payload = result.Snapshot(name)
		} else {
			payload = value.Map{
				"pipeline":  value.String(name),
				"run_token": value.String(result.RunToken),
				"output":    result.Output,
			}
		}
		data, err := value.MarshalCanonical(payload)
		if err != nil {
			return WrapExitError(ExitCommandError, "encoding result", err)
		}
		return formatter.Success(json.RawMessage(data))
	}

	output, err := value.MarshalCanonical(result.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "encoding result", err)
	}

	fmt.Fprintf(formatter.Writer, "Pipeline: %s\n", name)
	fmt.Fprintf(formatter.Writer, "Run:      %s\n", result.RunToken)
	fmt.Fprintf(formatter.Writer, "Output:   %s\n", output)

	if runOpts.Trace {
		fmt.Fprintln(formatter.Writer)
		for _, ev := range result.Trace {
			branch := ""
			if ev.Branch >= 0 {
				branch = fmt.Sprintf(" branch=%d", ev.Branch)
			}
			detail := string(ev.Strategy)
			if ev.Degraded {
				detail = "degraded"
			}
			if ev.CacheHit {
				detail += " (cached)"
			}
			fmt.Fprintf(formatter.Writer, "  seq=%d stage=%d%s fn=%s shape=%s via=%s\n",
				ev.Seq, ev.Stage, branch, ev.Function, ev.Shape, detail)
		}
	}
	return nil
}
