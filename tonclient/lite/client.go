// Package lite queries account state from TON liteservers.
package lite

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/tl"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"

	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

const (
	defaultWaitForTimeout = 5 * time.Second
	defaultPollInterval   = 500 * time.Millisecond
)

var _ tonclient.AccountQuerier = (*Client)(nil)

// API is the subset of the liteserver API the client uses. *ton.APIClient satisfies it.
type API interface {
	CurrentMasterchainInfo(ctx context.Context) (*ton.BlockIDExt, error)
	GetAccount(ctx context.Context, block *ton.BlockIDExt, addr *address.Address) (*tlb.Account, error)
}

// StateQuerier sends raw liteserver queries. *liteclient.ConnectionPool satisfies it.
type StateQuerier interface {
	QueryLiteserver(ctx context.Context, payload tl.Serializable, result tl.Serializable) error
}

// Option configures a Client.
type Option func(*Client)

// WithWaitForTimeout sets how long WaitForAccount blocks.
func WithWaitForTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.waitForTimeout = d
	}
}

// WithPollInterval sets the delay between WaitForAccount queries.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithStateQuerier sets the querier used to fetch the serialized account of deployed contracts.
// Without one, QueryAccount leaves the BOC empty.
func WithStateQuerier(q StateQuerier) Option {
	return func(c *Client) {
		c.state = q
	}
}

// WithLogger sets the logger.
func WithLogger(lggr logger.Logger) Option {
	return func(c *Client) {
		c.lggr = lggr
	}
}

// Client is a liteserver account querier.
type Client struct {
	api            API
	state          StateQuerier
	waitForTimeout time.Duration
	pollInterval   time.Duration
	lggr           logger.Logger
}

// New returns a Client over api.
func New(api API, opts ...Option) *Client {
	c := &Client{
		api:            api,
		waitForTimeout: defaultWaitForTimeout,
		pollInterval:   defaultPollInterval,
		lggr:           logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Dial connects to the liteservers listed in the global config at configURL and returns a Client
// over them. Proofs are checked with policy.
func Dial(ctx context.Context, configURL string, policy ton.ProofCheckPolicy, opts ...Option) (*Client, error) {
	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, configURL); err != nil {
		return nil, fmt.Errorf("failed to retrieve ton network config: %w", err)
	}

	opts = append([]Option{WithStateQuerier(pool)}, opts...)

	return New(ton.NewAPIClient(pool, policy), opts...), nil
}

// QueryAccount returns the account at addr or nil when it does not exist. The returned BOC is the
// serialized account cell of a deployed contract, fetched at the same masterchain block. It is empty
// when the account holds no code or the client has no StateQuerier.
func (c *Client) QueryAccount(ctx context.Context, addr string) (*tonclient.Account, error) {
	parsed, err := tonclient.ParseAddress(addr)
	if err != nil {
		return nil, err
	}

	block, err := c.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return nil, &tonclient.Error{
			Code:    tonclient.CodeFetchBlockFailed,
			Message: fmt.Sprintf("failed to get masterchain info: %v", err),
		}
	}

	raw, err := c.api.GetAccount(ctx, block, parsed)
	if err != nil {
		return nil, &tonclient.Error{
			Code:    tonclient.CodeNetQueryFailed,
			Message: fmt.Sprintf("failed to get account %s: %v", addr, err),
		}
	}
	if raw == nil || raw.State == nil {
		return nil, nil //nolint:nilnil // absent account
	}

	acc := &tonclient.Account{
		ID:      tonclient.RawAddress(parsed),
		Balance: raw.State.Balance.Nano(),
	}

	if raw.Code != nil && c.state != nil {
		boc, err := c.accountBOC(ctx, block, parsed)
		if err != nil {
			return nil, err
		}
		acc.BOC = boc
	}

	return acc, nil
}

// accountBOC fetches the serialized account cell of addr at block.
func (c *Client) accountBOC(ctx context.Context, block *ton.BlockIDExt, addr *address.Address) (string, error) {
	var resp tl.Serializable
	err := c.state.QueryLiteserver(ctx, ton.GetAccountState{
		ID:      block,
		Account: ton.AccountID{Workchain: addr.Workchain(), ID: addr.Data()},
	}, &resp)
	if err != nil {
		return "", &tonclient.Error{
			Code:    tonclient.CodeNetQueryFailed,
			Message: fmt.Sprintf("failed to get account state %s: %v", addr, err),
		}
	}

	switch t := resp.(type) {
	case ton.AccountState:
		if !t.ID.Equals(block) {
			return "", fmt.Errorf("account state of %s is from block %d, want %d", addr, t.ID.SeqNo, block.SeqNo)
		}
		if t.State == nil {
			return "", nil
		}

		return base64.StdEncoding.EncodeToString(t.State.ToBOC()), nil
	case ton.LSError:
		return "", &tonclient.Error{
			Code:    tonclient.CodeNetQueryFailed,
			Message: fmt.Sprintf("failed to get account state %s: %v", addr, t),
		}
	}

	return "", fmt.Errorf("unexpected liteserver response %T for account %s", resp, addr)
}

// WaitForAccount polls the account at addr until it matches filter or the wait-for timeout
// elapses.
func (c *Client) WaitForAccount(
	ctx context.Context, addr string, filter tonclient.AccountFilter,
) (*tonclient.Account, error) {
	acc, err := tonclient.PollAccount(ctx, c.QueryAccount, addr, filter, c.waitForTimeout, c.pollInterval)
	if err != nil {
		c.lggr.Debugw("Wait for account failed", "address", addr, "timeout", c.waitForTimeout, "err", err)

		return nil, err
	}

	return acc, nil
}
