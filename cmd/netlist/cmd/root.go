package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNetlist/internal/config"
)

var (
	// Global flags
	cfgPath string
	verbose bool
	format  string
	top     string

	cfg    *config.Config
	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "netlist",
	Short: "Yosys netlist importer and inspector",
	Long: `Import synthesized Yosys netlists (write_json or write_rtlil output) into a
typed design model and inspect modules, nets and memories.

Examples:
  netlist info design.json                     # Summarize every module
  netlist order design.il                      # Show the module build order
  netlist nets design.json --module top        # List nets with fan-in/fan-out
  netlist memories design.json                 # Show reconstructed memories
  netlist check design.json                    # Report every invalid cell`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"configuration file (default: nearest "+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "",
		"input format: auto, json or rtlil")
	rootCmd.PersistentFlags().StringVar(&top, "top", "",
		"only import this module and the modules it instantiates")
}

// loadConfig resolves the configuration and applies the global flags on
// top of it.
func loadConfig(cmd *cobra.Command, args []string) error {
	path := cfgPath
	if path == "" {
		found, ok, err := config.Find(".")
		if err != nil {
			return err
		}
		if ok {
			path = found
		}
	}

	cfg = config.DefaultConfig()
	if path != "" {
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = c
	}

	if format != "" {
		cfg.Import.Format = format
	}
	if top != "" {
		cfg.Import.Top = top
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(cfg.Level())
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	if path != "" {
		logger.WithField("path", path).Debug("loaded configuration")
	}
	return nil
}
