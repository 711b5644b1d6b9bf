package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/xssnick/tonutils-go/ton"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
	"github.com/smartcontractkit/ton-deployments-kit/config"
	"github.com/smartcontractkit/ton-deployments-kit/keys"
	"github.com/smartcontractkit/ton-deployments-kit/network"
	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient/gql"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient/lite"
)

// Setup builds a Session from cfg. sdk encodes, processes, executes and decodes messages; account
// and message queries go to the configured GraphQL endpoint, or to liteservers for accounts when
// a liteserver config URL is set. A logger honoring cfg.Session.Debug is created when lggr is nil.
func Setup(ctx context.Context, cfg *config.Config, sdk tonclient.SDK, lggr logger.Logger) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if sdk == nil {
		return nil, errors.New("sdk is required")
	}

	if lggr == nil {
		var err error
		if lggr, err = logger.ForDebug(cfg.Session.Debug).New(); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	endpoint := cfg.Network.Endpoint
	if known, err := network.Lookup(endpoint); err == nil {
		lggr.Infow("Using network", "network", known.Name(), "endpoint", endpoint)
	} else {
		lggr.Infow("Using custom network", "endpoint", endpoint)
	}

	accounts, messages, err := NewQueriers(ctx, cfg.Network, lggr)
	if err != nil {
		return nil, err
	}

	keySet, err := setupKeys(cfg.Keys, lggr)
	if err != nil {
		return nil, err
	}

	giver, err := setupGiver(cfg.Giver)
	if err != nil {
		return nil, err
	}

	delays := network.DefaultSettleDelays()
	if d, ok := cfg.Session.AfterRunSleep(); ok {
		delays = delays.WithOverride(d)
	}

	return NewSession(tonclient.Compose(sdk, accounts, messages), SessionConfig{
		Endpoint:       endpoint,
		DeployAttempts: cfg.Session.DeployAttempts,
		RunAttempts:    cfg.Session.RunAttempts,
		Settle:         delays.For(endpoint),
		FundingTimeout: cfg.Session.FundingTimeout,
		Giver:          giver,
	}, WithLogger(lggr), WithKeySet(keySet))
}

// NewQueriers returns the account and message queriers of the configured network. Both are served
// by the GraphQL endpoint unless a liteserver config URL is set, in which case accounts are read
// from liteservers.
func NewQueriers(
	ctx context.Context,
	cfg config.NetworkConfig,
	lggr logger.Logger,
) (tonclient.AccountQuerier, tonclient.MessageQuerier, error) {
	messages := gql.New(cfg.Endpoint,
		gql.WithWaitForTimeout(cfg.WaitForTimeout),
		gql.WithLogger(lggr),
	)
	if cfg.LiteserverConfigURL == "" {
		return messages, messages, nil
	}

	liteClient, err := lite.Dial(ctx, cfg.LiteserverConfigURL, ton.ProofCheckPolicyFast,
		lite.WithWaitForTimeout(cfg.WaitForTimeout),
		lite.WithLogger(lggr),
	)
	if err != nil {
		return nil, nil, err
	}

	return liteClient, messages, nil
}

func setupKeys(cfg config.KeysConfig, lggr logger.Logger) ([]keys.KeyPair, error) {
	phrase := cfg.SeedPhrase
	if phrase == "" {
		var err error
		if phrase, err = keys.NewMnemonic(); err != nil {
			return nil, err
		}
		lggr.Infow("No seed phrase configured, generated a new one", "seedPhrase", phrase)
	}

	set, err := keys.DeriveSet(phrase, cfg.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to derive keys: %w", err)
	}

	return set, nil
}

func setupGiver(cfg config.GiverConfig) (GiverConfig, error) {
	giver := GiverConfig{Address: cfg.Address, Function: cfg.Function}
	if cfg.Address == "" {
		return giver, nil
	}

	giver.ABI = GiverABI()
	if cfg.ABIPath != "" {
		a, err := abi.Load(cfg.ABIPath)
		if err != nil {
			return GiverConfig{}, fmt.Errorf("failed to load giver abi: %w", err)
		}
		giver.ABI = a
	}

	if cfg.Secret != "" {
		kp, err := keys.Generate(keys.FromRaw(cfg.Secret))
		if err != nil {
			return GiverConfig{}, fmt.Errorf("invalid giver secret: %w", err)
		}
		giver.Keys = &kp
	}

	return giver, nil
}
