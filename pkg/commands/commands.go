// Package commands provides the tonkit CLI commands.
//
// Commands are created through the Commands factory, which shares the logger and dependencies
// across every command:
//
//	cmds := commands.New(lggr)
//	if err := cmds.Root().Execute(); err != nil {
//	    os.Exit(1)
//	}
//
// Dependencies that reach the network or the filesystem can be replaced, e.g. for testing:
//
//	cmds := commands.New(lggr, commands.WithDeps(commands.Deps{
//	    AccountQuerier: myQuerier,
//	}))
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/ton-deployments-kit/config"
	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
)

// DefaultConfigPath is the config file read when --config is not given.
const DefaultConfigPath = "tonkit.yaml"

// Commands provides a factory for creating CLI commands with shared configuration.
type Commands struct {
	lggr logger.Logger
	deps Deps
}

// Option configures a Commands factory.
type Option func(*Commands)

// WithDeps overrides the production dependencies. Nil fields keep their defaults.
func WithDeps(deps Deps) Option {
	return func(c *Commands) {
		c.deps = deps
	}
}

// New creates a new Commands factory with the given logger.
func New(lggr logger.Logger, opts ...Option) *Commands {
	c := &Commands{lggr: lggr}
	for _, opt := range opts {
		opt(c)
	}
	c.deps.applyDefaults()

	return c
}

// Root creates the tonkit root command with every command group attached.
func (c *Commands) Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tonkit",
		Short:        "Deploy and inspect TON smart contracts",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().
		StringP("config", "c", DefaultConfigPath, "Path of the config file. Env vars override its values")

	cmd.AddCommand(
		c.ABI(),
		c.Account(),
		c.Config(),
		c.Keys(),
		c.Migration(),
	)

	return cmd
}

// loadConfig loads the config named by the inherited --config flag.
func (c *Commands) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := c.deps.ConfigLoader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}
