package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bindweave/bindweave/internal/gen"
)

// CheckResult holds the outcome of a dry run.
type CheckResult struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

func (r CheckResult) String() string {
	if r.Valid {
		if n := len(r.Warnings); n > 0 {
			return fmt.Sprintf("ok (%d warning(s))", n)
		}
		return "ok"
	}
	out := fmt.Sprintf("%d fatal diagnostic(s)", len(r.Errors))
	for _, e := range r.Errors {
		out += "\n  " + e
	}
	return out
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <modules-dir>",
		Short: "Run the full pipeline without writing files",
		Long: `Run extraction, model building, dependency ordering, and type
mapping for every configured backend, reporting all diagnostics
without writing any output files.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file path")
	cmd.Flags().StringVar(&opts.Library, "library", "", "native library name")
	cmd.Flags().StringVar(&opts.Package, "package", "", "Java package / .NET namespace")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "exported symbol prefix")
	cmd.Flags().StringSliceVar(&opts.Backends, "backend", nil, "backend to check (repeatable: c, java, dotnet)")

	return cmd
}

func runCheck(opts *GenerateOptions, modulesDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	_, runOpts, err := resolveOptions(opts)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	loaded, err := LoadModules(modulesDir)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d module document(s) in %s", loaded.FileCount, modulesDir)

	report := gen.Run(cmd.Context(), loaded.Modules, runOpts)

	result := CheckResult{
		Valid:    report.Succeeded(),
		Warnings: diagStrings(report.Warnings()),
		Errors:   diagStrings(report.Fatals()),
	}
	printWarnings(formatter, report.Warnings())

	if !result.Valid {
		if err := formatter.Error(ErrCodeGeneric, "check failed", result.Errors); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d fatal diagnostic(s)", len(result.Errors)))
	}
	return formatter.Success(report.RunID, result)
}
