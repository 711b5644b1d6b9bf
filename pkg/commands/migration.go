package commands

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/ton-deployments-kit/migration"
)

// Migration creates the migration command group.
func (c *Commands) Migration() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migration",
		Short: "Migration log commands",
	}

	var logPath string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the contracts recorded in the migration log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if logPath == "" {
				cfg, err := c.loadConfig(cmd)
				if err != nil {
					return err
				}
				logPath = cfg.Migration.LogPath
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(logPath); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(out, "No migrations recorded at %s\n", logPath)

				return nil
			}

			log, err := migration.OpenFileLog(logPath)
			if err != nil {
				return err
			}
			entries, err := log.Entries()
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(out)
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"Alias", "Contract", "Address"})
			for _, alias := range slices.Sorted(maps.Keys(entries)) {
				entry := entries[alias]
				table.Append([]string{alias, entry.Name, entry.Address})
			}
			table.Render()

			return nil
		},
	}
	list.Flags().StringVarP(&logPath, "log", "l", "", "Path of the migration log. Defaults to the configured log path")

	cmd.AddCommand(list)

	return cmd
}
