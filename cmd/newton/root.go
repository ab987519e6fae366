package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gonewton/internal/config"
	"github.com/njchilds90/gonewton/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "newton",
	Short: "Newton-Raphson root finder with exact derivatives",
	Long: `newton finds a root of f(x) with the Newton-Raphson method.
The derivative is computed symbolically, every iteration is reported and
the visited points can be plotted.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	cfg    = config.Default()
	logger = logging.NewNop()
)

// errRejected ends a command whose outcome was already printed but must
// still exit with a failure status.
var errRejected = errors.New("request rejected")

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// setup loads the config file and lets explicit flags override it.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		c.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		c.Log.Format, _ = cmd.Flags().GetString("log-format")
	}
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}

	cfg = c
	logger = logging.New(level, c.Log.Format)
	slog.SetDefault(logger)
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "newton.yaml", "Config file (YAML or JSON); a missing file means defaults")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}
