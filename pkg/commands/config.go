package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Config creates the config command group.
func (c *Commands) Config() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Config commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective config with secrets redacted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}

			b, err := cfg.Redacted().YAML()
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(b)

			return err
		},
	})

	return cmd
}
