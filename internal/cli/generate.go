package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/gen"
	"github.com/bindweave/bindweave/internal/render"
	"github.com/bindweave/bindweave/internal/typemap"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	ConfigPath string
	OutDir     string
	Library    string
	Package    string
	Prefix     string
	Backends   []string
	StripDocs  bool
}

// GenerationSummary is the success payload for the generate command.
type GenerationSummary struct {
	RunID    string           `json:"run_id"`
	Outputs  []BackendSummary `json:"outputs"`
	Warnings []string         `json:"warnings,omitempty"`
}

// BackendSummary describes one backend's result.
type BackendSummary struct {
	Backend      string `json:"backend"`
	Path         string `json:"path,omitempty"`
	Declarations int    `json:"declarations"`
}

func (s GenerationSummary) String() string {
	out := fmt.Sprintf("run %s", s.RunID)
	for _, o := range s.Outputs {
		if o.Path == "" {
			out += fmt.Sprintf("\n  %-6s no surviving declarations, nothing written", o.Backend)
			continue
		}
		out += fmt.Sprintf("\n  %-6s %s (%d declarations)", o.Backend, o.Path, o.Declarations)
	}
	return out
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <modules-dir>",
		Short: "Generate bindings for every configured backend",
		Long: `Generate a C header, a JVM native-binding class, and a .NET interop
class from the module documents in the given directory.

Declarations that cannot be translated are dropped with a warning;
fatal diagnostics (unresolved types, unbreakable layout cycles) fail
the run without writing partial files for the affected backend.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", ".", "output directory for default-named files")
	cmd.Flags().StringVar(&opts.Library, "library", "", "native library name")
	cmd.Flags().StringVar(&opts.Package, "package", "", "Java package / .NET namespace")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "exported symbol prefix")
	cmd.Flags().StringSliceVar(&opts.Backends, "backend", nil, "backend to generate (repeatable: c, java, dotnet)")
	cmd.Flags().BoolVar(&opts.StripDocs, "strip-docs", false, "drop source doc comments from output")

	return cmd
}

func runGenerate(opts *GenerateOptions, modulesDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, runOpts, err := resolveOptions(opts)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	loaded, err := LoadModules(modulesDir)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d module document(s) in %s", loaded.FileCount, modulesDir)

	if opts.Verbose {
		runOpts.Logger = slog.New(slog.NewTextHandler(formatter.GetErrWriter(), nil))
	}
	report := gen.Run(cmd.Context(), loaded.Modules, runOpts)

	printWarnings(formatter, report.Warnings())

	// Write whatever each backend produced before deciding the exit
	// status: a declaration dropped on one backend still leaves that
	// backend's remaining output usable.
	summary := GenerationSummary{
		RunID:    report.RunID,
		Warnings: diagStrings(report.Warnings()),
	}
	for _, out := range report.Outputs {
		entry := BackendSummary{Backend: string(out.Backend), Declarations: out.Rendered}
		if out.Rendered > 0 {
			path := outputPath(cfg, opts.OutDir, out.Backend, runOpts.Library)
			if err := writeOutput(path, out.Text); err != nil {
				outputErr := formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", path, err), nil)
				if outputErr != nil {
					return outputErr
				}
				return WrapExitError(ExitCommandError, "writing output", err)
			}
			entry.Path = path
		}
		summary.Outputs = append(summary.Outputs, entry)
	}

	if !report.Succeeded() {
		details := diagStrings(report.Fatals())
		if err := formatter.Error(ErrCodeGeneric, "generation finished with fatal diagnostics", details); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d fatal diagnostic(s)", len(details)))
	}

	return formatter.Success(report.RunID, summary)
}

// resolveOptions merges the config file with command-line flags; flags
// win where both are set.
func resolveOptions(opts *GenerateOptions) (*Config, gen.Options, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, gen.Options{}, err
	}

	runOpts := gen.Options{
		Backends:  cfg.backends(),
		Package:   cfg.Package,
		Library:   cfg.Library,
		Prefix:    cfg.Prefix,
		StripDocs: cfg.StripDocs,
	}
	if len(opts.Backends) > 0 {
		var backends []typemap.Backend
		for _, name := range opts.Backends {
			if !validBackend(name) {
				return nil, gen.Options{}, &LoadError{Code: ErrCodeBadConfig, Message: fmt.Sprintf("unknown backend %q: must be one of %v", name, backendNames())}
			}
			backends = append(backends, typemap.Backend(name))
		}
		runOpts.Backends = backends
	}
	if opts.Package != "" {
		runOpts.Package = opts.Package
	}
	if opts.Library != "" {
		runOpts.Library = opts.Library
	}
	if opts.Prefix != "" {
		runOpts.Prefix = opts.Prefix
	}
	if opts.StripDocs {
		runOpts.StripDocs = true
	}
	if runOpts.Library == "" {
		return nil, gen.Options{}, &LoadError{Code: ErrCodeBadConfig, Message: "library name required (--library or config)"}
	}
	return cfg, runOpts, nil
}

// outputPath picks the configured path for a backend, falling back to a
// default name under outDir. The Java file name must match the class.
func outputPath(cfg *Config, outDir string, backend typemap.Backend, library string) string {
	if path, ok := cfg.Output[string(backend)]; ok {
		return path
	}
	switch backend {
	case typemap.BackendC:
		return filepath.Join(outDir, library+".h")
	case typemap.BackendJava:
		return filepath.Join(outDir, render.ClassName(library)+".java")
	case typemap.BackendDotNet:
		return filepath.Join(outDir, render.ClassName(library)+".cs")
	}
	return filepath.Join(outDir, library+".out")
}

func writeOutput(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

func printWarnings(f *OutputFormatter, warnings []*diag.Diagnostic) {
	if f.Format == "json" {
		return // warnings travel in the JSON payload
	}
	for _, w := range warnings {
		fmt.Fprintf(f.GetErrWriter(), "warning: %s\n", w.Error())
	}
}

func diagStrings(ds []*diag.Diagnostic) []string {
	if len(ds) == 0 {
		return nil
	}
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Error()
	}
	return out
}

func reportLoadError(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if outputErr := f.Error(loadErr.Code, loadErr.Message, nil); outputErr != nil {
			return outputErr
		}
		return WrapExitError(ExitCommandError, loadErr.Message, nil)
	}
	if outputErr := f.Error(ErrCodeGeneric, err.Error(), nil); outputErr != nil {
		return outputErr
	}
	return WrapExitError(ExitCommandError, err.Error(), nil)
}
