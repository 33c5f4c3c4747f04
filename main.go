package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stackvity/droidfs/internal/assets"
	"github.com/stackvity/droidfs/internal/config"
	"github.com/stackvity/droidfs/internal/files"
	"github.com/stackvity/droidfs/internal/handle"
	"github.com/stackvity/droidfs/internal/monitor"
	"github.com/stackvity/droidfs/internal/platform"
	"github.com/stackvity/droidfs/internal/report"
	"github.com/stackvity/droidfs/internal/template"
)

// Variables for version embedding via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes
const (
	ExitCodeSuccess     = 0
	ExitCodeConfigError = 2
	ExitCodeInterrupt   = 3
	ExitCodeRunError    = 4
	ExitCodeUnknown     = 10
)

// exitError carries an exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// app holds everything a subcommand needs once configuration is loaded.
type app struct {
	opts     *config.Options
	logger   *slog.Logger
	resolver *files.Resolver
	handles  *handle.Factory
	tmpl     *template.Executor
}

func newApp(cmd *cobra.Command, flagOpts *config.Options) (*app, error) {
	opts, err := config.Load(flagOpts.ConfigFile, cmd.Flags())
	if err != nil {
		return nil, withCode(ExitCodeConfigError, err)
	}
	if err := opts.ValidateConfig(); err != nil {
		return nil, withCode(ExitCodeConfigError, err)
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))
	logger.Debug("Configuration loaded and validated successfully", "config_file", opts.ConfigFile)

	host := platform.NewHostFromOptions(opts)

	var bundle assets.Reader
	if opts.AssetsDir != "" {
		bundle = assets.NewDirReader(opts.AssetsDir)
	}
	var classpath assets.Reader
	if opts.ClasspathDir != "" {
		classpath = assets.NewDirReader(opts.ClasspathDir)
	}

	resolver := files.NewWithLocalPath(bundle, opts.LocalPath, host, files.WithLogger(logger))

	tmpl, err := template.NewExecutor(opts.TemplateFile, host.FileSystem())
	if err != nil {
		return nil, withCode(ExitCodeConfigError, err)
	}

	return &app{
		opts:     opts,
		logger:   logger,
		resolver: resolver,
		handles:  handle.NewFactory(resolver.Roots(), host.FileSystem(), classpath),
		tmpl:     tmpl,
	}, nil
}

// write renders v with the configured template or format.
func (a *app) write(w io.Writer, v any) error {
	var (
		out []byte
		err error
	)
	if a.tmpl != nil {
		out, err = a.tmpl.Execute(v)
	} else {
		out, err = report.Render(v, a.opts.Format)
	}
	if err != nil {
		return withCode(ExitCodeRunError, err)
	}
	_, err = w.Write(out)
	return err
}

// newRootCmd builds a fresh command tree so repeated executions never share
// parsed flag state.
func newRootCmd() *cobra.Command {
	flagOpts := &config.Options{}

	rootCmd := &cobra.Command{
		Use:   "droidfs",
		Short: "Resolve game-engine file locations against a device's storage roots",
		Long: `droidfs probes a device description for shared-storage write access,
fixes the external and local storage roots the way the engine backend does at
startup, and resolves internal, external, absolute, local and classpath paths
against them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootsCmd := &cobra.Command{
		Use:   "roots",
		Short: "Probe storage and print the resolved roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flagOpts)
			if err != nil {
				return err
			}
			return a.write(cmd.OutOrStdout(), report.Snapshot(a.resolver, time.Now()))
		},
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <kind> <path>",
		Short: "Resolve a path of the given kind (internal, external, absolute, local, classpath)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := files.ParseKind(args[0])
			if err != nil {
				return withCode(ExitCodeConfigError, err)
			}
			a, err := newApp(cmd, flagOpts)
			if err != nil {
				return err
			}
			d := a.resolver.Resolve(args[1], kind)
			return a.write(cmd.OutOrStdout(), report.Describe(d, a.handles))
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Report external storage availability until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(cmd, flagOpts)
			if err != nil {
				return err
			}
			m := monitor.New(a.resolver, a.opts.SharedRoot, a.opts.Watch.Debounce, a.opts.Watch.Interval, a.logger)
			err = m.Run(ctx, func(bool) {
				if werr := a.write(cmd.OutOrStdout(), report.Snapshot(a.resolver, time.Now())); werr != nil {
					a.logger.Error("Failed to write report", "error", werr)
				}
			})
			if errors.Is(err, context.Canceled) {
				return withCode(ExitCodeInterrupt, err)
			}
			if err != nil {
				return withCode(ExitCodeRunError, err)
			}
			return nil
		},
	}

	config.RegisterFlags(rootCmd.PersistentFlags(), flagOpts)
	rootCmd.SetVersionTemplate(fmt.Sprintf("droidfs version %s (commit: %s, built: %s)\n", version, commit, date))
	rootCmd.AddCommand(rootsCmd, resolveCmd, watchCmd)
	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitCodeSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.code != ExitCodeInterrupt {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "Error executing command: %v\n", err)
	return ExitCodeUnknown
}

func main() {
	os.Exit(Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
