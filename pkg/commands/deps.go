package commands

import (
	"context"

	"github.com/smartcontractkit/ton-deployments-kit/config"
	"github.com/smartcontractkit/ton-deployments-kit/contract"
	"github.com/smartcontractkit/ton-deployments-kit/keys"
	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

// ConfigLoaderFunc loads the config at path, falling back to env vars when the file is absent.
type ConfigLoaderFunc func(path string) (*config.Config, error)

// AccountQuerierFunc returns the account querier of the configured network.
type AccountQuerierFunc func(
	ctx context.Context,
	cfg config.NetworkConfig,
	lggr logger.Logger,
) (tonclient.AccountQuerier, error)

// MnemonicFunc generates a fresh seed phrase.
type MnemonicFunc func() (string, error)

// defaultAccountQuerier is the production implementation backed by GraphQL or liteservers.
func defaultAccountQuerier(
	ctx context.Context,
	cfg config.NetworkConfig,
	lggr logger.Logger,
) (tonclient.AccountQuerier, error) {
	accounts, _, err := contract.NewQueriers(ctx, cfg, lggr)

	return accounts, err
}

// Deps holds the injectable dependencies of the commands.
// All fields are optional; nil values use production defaults.
type Deps struct {
	// ConfigLoader loads the tonkit config.
	// Default: config.Load
	ConfigLoader ConfigLoaderFunc

	// AccountQuerier connects to the network for account queries.
	// Default: contract.NewQueriers
	AccountQuerier AccountQuerierFunc

	// Mnemonic generates seed phrases for keys generate.
	// Default: keys.NewMnemonic
	Mnemonic MnemonicFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ConfigLoader == nil {
		d.ConfigLoader = config.Load
	}
	if d.AccountQuerier == nil {
		d.AccountQuerier = defaultAccountQuerier
	}
	if d.Mnemonic == nil {
		d.Mnemonic = keys.NewMnemonic
	}
}
