package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"brain2-canvas/infrastructure/config"
)

var version = "0.3.0"

// options are the persistent flags shared by every subcommand. Empty
// values keep whatever the environment configured.
type options struct {
	project           string
	backend           string
	table             string
	interactionConfig string
	logLevel          string
	metricsAddress    string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "canvas-replay",
		Short:        "Replay gesture scripts against a canvas project",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.project, "project", "p", "", "project id (PROJECT_ID)")
	flags.StringVar(&opts.backend, "backend", "", "persistence backend: memory or dynamodb (PERSISTENCE_BACKEND)")
	flags.StringVar(&opts.table, "table", "", "DynamoDB table (TABLE_NAME)")
	flags.StringVar(&opts.interactionConfig, "interaction-config", "", "interaction YAML overlay (INTERACTION_CONFIG)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	flags.StringVar(&opts.metricsAddress, "metrics-addr", "", "address of the HTTP surface started by play --serve (METRICS_ADDRESS)")

	root.AddCommand(
		newPlayCmd(opts),
		newStatusCmd(opts),
		newValidateCmd(),
	)
	return root
}

// load reads the environment and applies the flag overrides. Replays are
// one-shot, so the interaction file is never watched.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.ProjectID, o.project)
	override(&cfg.Backend, o.backend)
	override(&cfg.DynamoDBTable, o.table)
	override(&cfg.InteractionConfigPath, o.interactionConfig)
	override(&cfg.LogLevel, o.logLevel)
	override(&cfg.MetricsAddress, o.metricsAddress)
	cfg.WatchInteractionFile = false

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
