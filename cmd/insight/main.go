package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vegasq/insight/internal/config"
	"github.com/vegasq/insight/internal/logger"
	"github.com/vegasq/insight/internal/service"
	"github.com/vegasq/insight/query"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	configFile string
	dataDir    string

	cfg *config.Config
	log logger.Logger
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "insight",
		Short: "Query course and room datasets",
		Long: `insight loads course and room datasets and answers structured JSON
queries over them, either from the command line or over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Zap().Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: insight.yaml in /etc/insight, ./configs or .)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory holding persisted datasets (overrides data_dir)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newDatasetsCmd(a))

	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	a.cfg = cfg
	a.log = logger.New(cfg.LogLevel)
	return nil
}

// service opens the dataset service over the configured data directory
func (a *app) service() (*service.Service, error) {
	keywords, err := query.KeywordsByName(a.cfg.Query.Keywords)
	if err != nil {
		return nil, err
	}
	return service.New(service.Options{
		DataDir:  a.cfg.DataDir,
		Keywords: keywords,
		Logger:   a.log,
	})
}
