package main

import (
	"context"
	goerrors "errors"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/zigzag/asm"
	"github.com/deepnoodle-ai/zigzag/compiler"
)

type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
	// source text by file name, for diagnostics
	sources map[string]string
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		v:       viper.New(),
		stdout:  stdout,
		stderr:  stderr,
		logger:  zerolog.Nop(),
		sources: map[string]string{},
	}
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		a.report(err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "zigzag",
		Short:             "Compile zigzag programs into 32-bit x86 executables",
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.init(cmd) },
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is ./.zigzag.yaml)")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	flags.String("entry", asm.DefaultEntry, "name of the function the program starts in")
	flags.Int("workers", 0, "files parsed at once (default is the number of CPUs)")

	root.AddCommand(a.buildCmd(), a.astCmd(), a.tokensCmd(), a.versionCmd())
	return root
}

// init loads configuration from flags, ZIGZAG_* environment variables and
// the config file, in that order of precedence.
func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("zigzag")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return err
		}
	} else {
		a.v.SetConfigName(".zigzag")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if err := a.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !goerrors.As(err, &notFound) {
				return err
			}
		}
	}
	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
	logger, err := newLogger(a.stderr, a.v.GetString("log-level"), !a.useColor(a.stderr))
	if err != nil {
		return err
	}
	a.logger = logger
	if file := a.v.ConfigFileUsed(); file != "" {
		a.logger.Debug().Str("file", file).Msg("config loaded")
	}
	return nil
}

func (a *app) compiler() *compiler.Compiler {
	return compiler.New(compiler.Config{
		Logger:  a.logger,
		Entry:   a.v.GetString("entry"),
		Workers: a.v.GetInt("workers"),
	})
}
