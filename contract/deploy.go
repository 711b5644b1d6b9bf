package contract

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/xssnick/tonutils-go/tlb"

	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

const fundingPollDelay = 500 * time.Millisecond

// DeployParams describes a deployment.
type DeployParams struct {
	// Constructor holds the constructor arguments.
	Constructor map[string]any
	// Init holds the initial data of the contract.
	Init map[string]any
	// RandomNonce injects a fresh nonce into Init so identical deployments get distinct
	// addresses. The nonce is drawn once per Deploy call.
	RandomNonce bool
	// InitialBalance is transferred from the giver to the future address before the deploy
	// message is sent. No funding happens when it is zero.
	InitialBalance tlb.Coins
}

// FutureAddress derives the address the contract would be deployed at without broadcasting. An
// Unbound handle moves to AddressKnown.
func (c *Contract) FutureAddress(ctx context.Context, params DeployParams, opts ...CallOption) (string, error) {
	init, err := c.initData(params)
	if err != nil {
		return "", err
	}

	msg, err := c.session.builder.BuildDeploy(ctx, c.abi, c.tvc, params.Constructor, init, c.session.signer(opts))
	if err != nil {
		return "", err
	}

	address, err := tonclient.NormalizeAddress(msg.Address)
	if err != nil {
		return "", err
	}
	c.markAddressKnown(address)

	return address, nil
}

// Deploy funds the future address when requested and deploys the contract, retrying transient
// failures up to the session's deploy attempts. The handle is Deployed only when the returned error
// is nil.
func (c *Contract) Deploy(ctx context.Context, params DeployParams, opts ...CallOption) (tonclient.TransactionStatus, error) {
	if c.State() == Deployed {
		addr, _ := c.Address()
		return tonclient.TransactionStatus{}, fmt.Errorf("%w: %s at %s", ErrAlreadyDeployed, c.name, addr)
	}
	if c.tvc == "" {
		return tonclient.TransactionStatus{}, fmt.Errorf("%s has no code image", c.name)
	}

	s := c.session
	kp := s.signer(opts)

	init, err := c.initData(params)
	if err != nil {
		return tonclient.TransactionStatus{}, err
	}

	probe, err := s.builder.BuildDeploy(ctx, c.abi, c.tvc, params.Constructor, init, kp)
	if err != nil {
		return tonclient.TransactionStatus{}, err
	}
	future, err := tonclient.NormalizeAddress(probe.Address)
	if err != nil {
		return tonclient.TransactionStatus{}, err
	}
	c.markAddressKnown(future)

	lggr := s.lggr.With("contract", c.name, "address", future)

	if amount := params.InitialBalance.Nano(); amount.Sign() > 0 {
		if err = c.fund(ctx, future, amount); err != nil {
			return tonclient.TransactionStatus{}, err
		}
		lggr.Infow("Future address funded", "amount", params.InitialBalance.String())
	}

	status, err := s.withRetry(ctx, "Deploy", s.cfg.DeployAttempts, func(ctx context.Context, _ uint) (tonclient.TransactionStatus, error) {
		msg, err := s.builder.BuildDeploy(ctx, c.abi, c.tvc, params.Constructor, init, kp)
		if err != nil {
			return tonclient.TransactionStatus{}, err
		}

		addr, err := tonclient.NormalizeAddress(msg.Address)
		if err != nil {
			return tonclient.TransactionStatus{}, err
		}
		if addr != future {
			return tonclient.TransactionStatus{}, fmt.Errorf("%w: %s != %s", ErrAddressDrift, addr, future)
		}

		return s.waiter.Await(ctx, msg, c.abi)
	})
	if err != nil {
		return tonclient.TransactionStatus{}, err
	}

	if err = c.confirm(future); err != nil {
		return tonclient.TransactionStatus{}, err
	}
	lggr.Infow("Contract deployed", "transactionID", status.Transaction.ID)

	if err = s.settle(ctx); err != nil {
		return status, err
	}

	return status, nil
}

// initData returns the initial data of a deployment, with a fresh nonce when requested.
func (c *Contract) initData(params DeployParams) (map[string]any, error) {
	if !params.RandomNonce {
		return params.Init, nil
	}

	return WithRandomNonce(params.Init)
}

// fund transfers amount nanotons from the giver to address and waits until the address holds a
// positive balance.
func (c *Contract) fund(ctx context.Context, address string, amount *big.Int) error {
	s := c.session
	giver := s.giver
	if giver == nil {
		return ErrNoGiver
	}

	giverOpts := []CallOption{Unsigned()}
	if s.cfg.Giver.Keys != nil {
		giverOpts = []CallOption{WithKeys(*s.cfg.Giver.Keys)}
	}

	s.lggr.Infow("Funding future address", "contract", c.name, "address", address, "amount", amount.String())

	if _, err := giver.Run(ctx, s.cfg.Giver.Function, map[string]any{
		"dest":   address,
		"amount": amount.String(),
	}, giverOpts...); err != nil {
		return fmt.Errorf("failed to fund %s: %w", address, err)
	}

	return c.awaitFunds(ctx, address)
}

// awaitFunds blocks until address holds a positive balance or the funding timeout elapses.
// Transient wait failures are repeated within the timeout.
func (c *Contract) awaitFunds(ctx context.Context, address string) error {
	s := c.session
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.FundingTimeout)
	defer cancel()

	filter := tonclient.AccountFilter{BalanceGT: new(big.Int)}
	err := retry.Do(func() error {
		_, err := s.client.WaitForAccount(waitCtx, address, filter)

		return err
	},
		retry.Context(waitCtx),
		retry.Attempts(0),
		retry.Delay(fundingPollDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(tonclient.IsTransient),
		retry.OnRetry(func(_ uint, err error) {
			s.lggr.Debugw("Waiting for funds", "address", address, "err", err)
		}),
	)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if waitCtx.Err() != nil || tonclient.IsTransient(err) {
		return fmt.Errorf("%w: %s after %s: %w", ErrFundingTimeout, address, s.cfg.FundingTimeout, err)
	}

	return fmt.Errorf("failed to wait for funds at %s: %w", address, err)
}
