package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/ton-deployments-kit/keys"
)

// Keys creates the keys command group.
func (c *Commands) Keys() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Key commands",
	}

	var (
		count       int
		seedPhrase  string
		showSecrets bool
	)
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Derive a key set from a seed phrase, generating a new phrase when none is given",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return errors.New("count must be positive")
			}

			out := cmd.OutOrStdout()
			if seedPhrase == "" {
				var err error
				if seedPhrase, err = c.deps.Mnemonic(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Seed phrase: %s\n", seedPhrase)
			}

			set, err := keys.DeriveSet(seedPhrase, count)
			if err != nil {
				return err
			}

			for i, kp := range set {
				fmt.Fprintf(out, "%d %s %s", i, keys.DerivationPath(uint32(i)), kp.Public) //nolint:gosec // i < count
				if showSecrets {
					fmt.Fprintf(out, " %s", kp.Secret)
				}
				fmt.Fprintln(out)
			}

			return nil
		},
	}
	generate.Flags().IntVarP(&count, "count", "n", 1, "Number of keys to derive")
	generate.Flags().StringVarP(&seedPhrase, "seed-phrase", "s", "", "BIP39 seed phrase to derive from")
	generate.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print the private keys")

	cmd.AddCommand(generate)

	return cmd
}
