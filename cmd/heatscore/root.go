package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-heat/internal/application"
	"github.com/ahrav/go-heat/internal/logging"
)

// cli carries state shared by all subcommands.
type cli struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
	printStats bool

	config application.EngineConfig
}

func newRootCmd() *cobra.Command {
	c := &cli{config: application.DefaultEngineConfig()}

	root := &cobra.Command{
		Use:   "heatscore",
		Short: "Compute preliminary surf heat results",
		Long: "heatscore aggregates per-judge wave scores into ranked preliminary\n" +
			"results for standard and call (RSL) heats.",
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&c.configPath, "config", "", "Engine configuration file (YAML)")
	f.StringVar(&c.envFile, "env-file", ".env", "Environment file loaded before the command runs")
	f.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	f.StringVar(&c.logFormat, "log-format", "", "Log format: text or json (overrides config)")
	f.BoolVar(&c.printStats, "metrics", false, "Write collected Prometheus metrics to stderr after computing")

	root.AddCommand(newComputeCmd(c))
	root.AddCommand(newHeatCmd(c))
	root.AddCommand(newTypesCmd(c))
	return root
}

// setup loads the environment file and configuration and installs the
// process logger. A missing default environment file is not an error.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.envFile != "" {
		err := godotenv.Load(c.envFile)
		if err != nil && (!errors.Is(err, fs.ErrNotExist) || cmd.Flag("env-file").Changed) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	if c.configPath != "" {
		loader, err := application.NewConfigLoader()
		if err != nil {
			return err
		}
		cfg, err := loader.LoadFromFile(c.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		c.config = *cfg
	}

	if c.logLevel != "" {
		c.config.Logging.Level = c.logLevel
	}
	if c.logFormat != "" {
		c.config.Logging.Format = c.logFormat
	}
	level, err := logging.ParseLevel(c.config.Logging.Level)
	if err != nil {
		return err
	}
	if f := c.config.Logging.Format; f != "" && f != "text" && f != "json" {
		return fmt.Errorf("unknown log format %q", f)
	}
	logging.Init(level, c.config.Logging.Format, cmd.ErrOrStderr())
	return nil
}
