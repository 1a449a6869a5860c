package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aitomatic/orchestra/internal/store"
)

// StrategyInfo is one persisted strategy record for output.
type StrategyInfo struct {
	Function string `json:"function"`
	Shape    string `json:"shape"`
	Strategy string `json:"strategy"`
	Recorded string `json:"recorded_at"`
}

// NewStrategiesCommand creates the strategies command group.
func NewStrategiesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Inspect the persistent strategy cache",
		Long:  "Inspect and prune the strategy records learned by previous runs. Requires --cache.",
	}

	cmd.AddCommand(newStrategiesListCommand(rootOpts))
	cmd.AddCommand(newStrategiesPruneCommand(rootOpts))

	return cmd
}

func newStrategiesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List persisted strategy records",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrategiesList(rootOpts, cmd)
		},
	}
}

func newStrategiesPruneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune <function>",
		Short: "Remove records for one function",
		Long: `Remove every persisted strategy record for one function identity.

Use after changing a function's signature, when its recorded strategies
may no longer apply.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrategiesPrune(rootOpts, args[0], cmd)
		},
	}
}

// openCacheStore opens the --cache database, failing when the flag is
// unset - the in-memory cache has nothing to inspect.
func openCacheStore(opts *RootOptions, formatter *OutputFormatter) (*store.Store, error) {
	if opts.Cache == "" {
		_ = formatter.Error(ErrCodeCacheOpen, "strategies requires --cache", nil)
		return nil, NewExitError(ExitCommandError, "strategies requires --cache")
	}
	s, err := store.Open(opts.Cache)
	if err != nil {
		_ = formatter.Error(ErrCodeCacheOpen, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "opening strategy cache", err)
	}
	return s, nil
}

func runStrategiesList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := openCacheStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.Records()
	if err != nil {
		_ = formatter.Error(ErrCodeGenericStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading strategy records", err)
	}

	infos := make([]StrategyInfo, len(records))
	for i, r := range records {
		infos[i] = StrategyInfo{
			Function: r.FunctionIdentity,
			Shape:    r.ShapeTag,
			Strategy: string(r.Strategy),
			Recorded: r.RecordedAt,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "no strategy records")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s  %s  ->  %s\n", info.Function, info.Shape, info.Strategy)
	}
	return nil
}

func runStrategiesPrune(opts *RootOptions, function string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := openCacheStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	deleted, err := s.PruneFunction(function)
	if err != nil {
		_ = formatter.Error(ErrCodeGenericStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "pruning strategy records", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"function": function, "deleted": deleted})
	}
	fmt.Fprintf(formatter.Writer, "pruned %d record(s) for %s\n", deleted, function)
	return nil
}
