package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vegasq/insight/output"
)

func newQueryCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "query [file|-]",
		Short: "Run a JSON query against the persisted datasets",
		Long: `Run a JSON query document against the persisted datasets.

The query is read from file, or from stdin when file is "-" or omitted.`,
		Example: `  insight query q.json
  echo '{"filter": {}, "options": {"columns": ["rooms_name"]}}' | insight query --format table`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Output.Format
			}
			formatter, err := output.New(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			data, err := readQuery(cmd, args)
			if err != nil {
				return err
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			res, err := svc.PerformQueryJSON(data)
			if err != nil {
				return err
			}
			return formatter.Format(res.Columns, res.Rows)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", fmt.Sprintf("output format %v (overrides output.format)", output.Formats()))
	return cmd
}

func readQuery(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read query: %w", err)
	}
	return data, nil
}
