package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the state shared by every subcommand.
type app struct {
	v   *viper.Viper
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "loxc",
		Short:         "Inspect lox bytecode chunks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.loxc.yaml)")
	flags.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("code", "c", "", "assembly listing to use as input")
	flags.Bool("stdin", false, "read the assembly listing from stdin")
	for _, name := range []string{"log-level", "no-color", "code", "stdin"} {
		a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newAsmCmd(a),
		newDisCmd(a),
		newLinesCmd(a),
		newStatsCmd(a),
		newVersionCmd(a),
	)
	return root
}

// init loads configuration and sets up logging and color for a command run.
func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("LOXC")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q", a.v.GetString("log-level"))
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{
		Out:     cmd.ErrOrStderr(),
		NoColor: a.noColor(),
	}).Level(level).With().Timestamp().Logger()

	if a.noColor() {
		color.NoColor = true
	}
	a.log.Debug().Str("command", cmd.Name()).Str("config", a.v.ConfigFileUsed()).Msg("starting")
	return nil
}

// defaultConfigPath returns ~/.loxc.yaml if it exists.
func defaultConfigPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".loxc.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (a *app) noColor() bool {
	return a.v.GetBool("no-color") || !isTerminalIO()
}
