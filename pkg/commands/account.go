package commands

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/ton-deployments-kit/contract"
	"github.com/smartcontractkit/ton-deployments-kit/migration"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

// Account creates the account command group.
func (c *Commands) Account() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "balance <address>",
		Short: "Show the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := tonclient.NormalizeAddress(args[0])
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}

			querier, err := c.deps.AccountQuerier(cmd.Context(), cfg.Network, c.lggr)
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", cfg.Network.Endpoint, err)
			}

			c.lggr.Debugw("Querying account", "address", address, "endpoint", cfg.Network.Endpoint)

			acc, err := querier.QueryAccount(cmd.Context(), address)
			if err != nil {
				return fmt.Errorf("failed to query account %s: %w", address, err)
			}
			if acc == nil {
				return fmt.Errorf("%w: %s", contract.ErrAccountNotFound, address)
			}

			balance := acc.Balance
			if balance == nil {
				balance = new(big.Int)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s TON (%s nanoton)\n", migration.FormatTON(balance), balance)

			return nil
		},
	})

	return cmd
}
