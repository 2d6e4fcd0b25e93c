// Package cli implements the smk command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/me/smkplugin/internal/config"
	"github.com/me/smkplugin/internal/language"
	"github.com/me/smkplugin/internal/logging"
	"github.com/me/smkplugin/internal/plugin"
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagReader    string
	flagRoot      string
	flagRepo      string
	flagRef       string
	flagOutput    string

	cfg      config.Config
	logger   *slog.Logger
	registry *language.Registry
)

// defaultConfigPath returns the config file named by SMK_CONFIG, if any.
func defaultConfigPath() string {
	return os.Getenv("SMK_CONFIG")
}

// NewRootCmd creates the root cobra command for the smk CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "smk",
		Short: "Snakemake descriptor language plugin",
		Long:  "smk recognizes Snakemake workflows and indexes the rule files they include.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			applyFlags(cmd, &loaded)
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if flagOutput != "json" && flagOutput != "yaml" {
				return fmt.Errorf("unknown output format %q (want json or yaml)", flagOutput)
			}
			cfg = loaded

			logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, cmd.ErrOrStderr())
			registry = language.NewRegistry(logger)
			plugin.Register(registry, logger)
			return nil
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfig, "config", defaultConfigPath(), "Path to YAML config file (or SMK_CONFIG env)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	pf.StringVar(&flagReader, "reader", config.ReaderFS, "File reader (fs, http)")
	pf.StringVar(&flagRoot, "root", ".", "Directory served by the fs reader")
	pf.StringVar(&flagRepo, "repo", "", "Repository (owner/name) for the http reader")
	pf.StringVar(&flagRef, "ref", "main", "Branch, tag or commit for the http reader")
	pf.StringVarP(&flagOutput, "output", "o", "json", "Output format (json, yaml)")

	root.AddCommand(
		newMatchCmd(),
		newIndexCmd(),
		newMetadataCmd(),
		newValidateCmd(),
		newToolsCmd(),
		newLanguagesCmd(),
		newServeCmd(),
	)

	return root
}

// applyFlags overrides file values with the flags set on the command line.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Log.Level = flagLogLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = flagLogFormat
	}
	if flagDebug {
		c.Log.Level = "debug"
	}
	if flags.Changed("reader") {
		c.Reader.Kind = flagReader
	}
	if flags.Changed("root") {
		c.Reader.Root = flagRoot
	}
	if flags.Changed("repo") {
		c.Reader.HTTP.Repository = flagRepo
		if !flags.Changed("reader") {
			c.Reader.Kind = config.ReaderHTTP
		}
	}
	if flags.Changed("ref") {
		c.Reader.HTTP.Ref = flagRef
	}
}
