package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"proposal-generator/internal/config"
	"proposal-generator/internal/logging"
)

type rootOptions struct {
	cfgPath  string
	provider string
	debug    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "proposal-cli",
		Short:         "Generate Upwork proposals from the terminal",
		Long:          "proposal-cli turns a job description into a ready-to-paste proposal using the configured LLM provider.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "", "path to config file (default: PROPOSAL_CONFIG env var or configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.provider, "provider", "p", "", "LLM provider to use (overrides LLM_PROVIDER)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newProvidersCmd())

	return cmd
}

// loadConfig resolves the config path and parses it.
// Priority: --config > PROPOSAL_CONFIG env var > configs/config.yaml
func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.cfgPath
	if path == "" {
		if env := os.Getenv("PROPOSAL_CONFIG"); env != "" {
			path = env
		} else {
			path = "configs/config.yaml"
		}
	}

	if o.provider != "" {
		os.Setenv("LLM_PROVIDER", strings.ToLower(o.provider))
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// stdout carries the proposal; logs go to stderr and stay quiet by default
	cfg.Logging.Output = "stderr"
	cfg.Logging.Level = "warn"
	if o.debug {
		cfg.Logging.Level = "debug"
	}
	for i := range cfg.Logging.Adapters {
		adapter := &cfg.Logging.Adapters[i]
		if adapter.Type != "stdout" {
			continue
		}
		if adapter.Options == nil {
			adapter.Options = make(map[string]interface{})
		}
		adapter.Options["output"] = "stderr"
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
