package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vegasq/insight/output"
)

func newDatasetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Manage persisted datasets",
	}
	cmd.AddCommand(newDatasetsAddCmd(a))
	cmd.AddCommand(newDatasetsListCmd(a))
	cmd.AddCommand(newDatasetsRemoveCmd(a))
	return cmd
}

func newDatasetsAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <kind> <file>",
		Short: "Add a dataset from a course archive or a JSON array of records",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[2])
			if err != nil {
				return fmt.Errorf("failed to read dataset: %w", err)
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			ids, err := svc.AddDataset(args[0], args[1], content)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newDatasetsListCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := output.New(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			svc, err := a.service()
			if err != nil {
				return err
			}

			infos := svc.ListDatasets()
			rows := make([]map[string]interface{}, len(infos))
			for i, info := range infos {
				rows[i] = map[string]interface{}{
					"id":      info.ID,
					"kind":    string(info.Kind),
					"numRows": info.NumRows,
				}
			}
			return formatter.Format([]string{"id", "kind", "numRows"}, rows)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", output.FormatTable, fmt.Sprintf("output format %v", output.Formats()))
	return cmd
}

func newDatasetsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a persisted dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			id, err := svc.RemoveDataset(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
