package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aitomatic/orchestra/internal/builtin"
	"github.com/aitomatic/orchestra/internal/manifest"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// ValidationIssue is one validation finding.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a manifest without running it",
		Long: `Validate a YAML manifest without running the pipeline.

Checks the manifest against the schema and resolves every function
reference against the built-in registry. Faster than run for development
feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, err := manifest.Load(path)
	if err != nil {
		return outputValidationFailure(formatter, err)
	}
	formatter.VerboseLog("Manifest %s: %d stages, %d function refinements",
		m.Name, len(m.Pipeline), len(m.Functions))

	// Resolution catches unknown functions, parameters, and bad values
	if _, err := m.Build(builtin.Default()); err != nil {
		return outputValidationFailure(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ Manifest valid")
	return nil
}

func outputValidationFailure(formatter *OutputFormatter, err error) error {
	issue := ValidationIssue{Code: manifest.ErrCodeGeneric, Message: err.Error()}
	var me *manifest.Error
	if errors.As(err, &me) {
		issue = ValidationIssue{Code: me.Code, Message: me.Message}
	}

	if formatter.Format == "json" {
		_ = formatter.Success(ValidationResult{Valid: false, Errors: []ValidationIssue{issue}})
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed: %s", issue.Message))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintf(formatter.Writer, "  %s: %s\n", issue.Code, issue.Message)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed: %s", issue.Message))
}
