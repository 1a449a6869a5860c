package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aitomatic/orchestra/internal/builtin"
	"github.com/aitomatic/orchestra/internal/value"
)

// FunctionInfo describes one registered callable.
type FunctionInfo struct {
	Identity string      `json:"identity"`
	Params   []ParamInfo `json:"params"`
	Returns  string      `json:"returns,omitempty"`
}

// ParamInfo describes one parameter of a registered callable.
type ParamInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"` // canonical JSON
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [function]",
		Short: "List registered functions and their signatures",
		Long: `List the built-in functions manifests can reference.

With a function identity argument ("module.name"), describes just that
function.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runDescribe(rootOpts, target, cmd)
		},
	}

	return cmd
}

func runDescribe(opts *RootOptions, target string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	registry := builtin.Default()

	identities := registry.Identities()
	if target != "" {
		if _, ok := registry.Resolve(target); !ok {
			_ = formatter.Error("E101", fmt.Sprintf("function %s is not registered", target), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown function %s", target))
		}
		identities = []string{target}
	}

	infos := make([]FunctionInfo, 0, len(identities))
	for _, id := range identities {
		c, _ := registry.Resolve(id)
		info := FunctionInfo{Identity: id}
		if c.Sig != nil {
			info.Returns = string(c.Sig.Returns)
			for _, p := range c.Sig.Params {
				pi := ParamInfo{
					Name:     p.Name,
					Type:     string(p.Type),
					Required: p.Required,
				}
				if p.Default != nil {
					if data, err := value.MarshalCanonical(p.Default); err == nil {
						pi.Default = string(data)
					}
				}
				info.Params = append(info.Params, pi)
			}
		}
		infos = append(infos, info)
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s(", info.Identity)
		for i, p := range info.Params {
			if i > 0 {
				fmt.Fprint(formatter.Writer, ", ")
			}
			fmt.Fprintf(formatter.Writer, "%s: %s", p.Name, p.Type)
			if p.Default != "" {
				fmt.Fprintf(formatter.Writer, " = %s", p.Default)
			}
		}
		fmt.Fprint(formatter.Writer, ")")
		if info.Returns != "" && info.Returns != "any" {
			fmt.Fprintf(formatter.Writer, " -> %s", info.Returns)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
