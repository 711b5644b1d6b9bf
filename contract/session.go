package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
	"github.com/smartcontractkit/ton-deployments-kit/keys"
	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

const (
	defaultAttempts       = 5
	defaultFundingTimeout = 2 * time.Minute
)

// GiverConfig describes the funding account.
type GiverConfig struct {
	// Address of the giver contract. Funding is unavailable when empty.
	Address string
	// ABI of the giver contract.
	ABI *abi.ABI
	// Function is the funding function. It takes the destination as "dest" and the amount in
	// nanotons as "amount".
	Function string
	// Keys sign funding messages. Funding messages are unsigned when nil.
	Keys *keys.KeyPair
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// Endpoint identifies the network, used in logs.
	Endpoint string
	// DeployAttempts is the maximum number of deploy attempts.
	DeployAttempts uint
	// RunAttempts is the maximum number of run attempts.
	RunAttempts uint
	// Settle is the pause after every confirmed deploy or run.
	Settle time.Duration
	// FundingTimeout bounds the wait for a funded future address.
	FundingTimeout time.Duration
	Giver          GiverConfig
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(lggr logger.Logger) SessionOption {
	return func(s *Session) {
		s.lggr = lggr
	}
}

// WithKeySet sets the session key set. The first key signs messages by default.
func WithKeySet(set []keys.KeyPair) SessionOption {
	return func(s *Session) {
		s.keys = set
	}
}

// withSleep replaces the settle sleep.
func withSleep(sleep func(ctx context.Context, d time.Duration) error) SessionOption {
	return func(s *Session) {
		s.sleep = sleep
	}
}

// Session binds contracts to a network client and holds the shared deploy and run settings.
// Contract operations issued through one Session are independent of each other.
type Session struct {
	client  tonclient.Client
	builder *MessageBuilder
	waiter  *Waiter
	cfg     SessionConfig
	keys    []keys.KeyPair
	giver   *Contract
	lggr    logger.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewSession returns a Session over client.
func NewSession(client tonclient.Client, cfg SessionConfig, opts ...SessionOption) (*Session, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	if cfg.DeployAttempts == 0 {
		cfg.DeployAttempts = defaultAttempts
	}
	if cfg.RunAttempts == 0 {
		cfg.RunAttempts = defaultAttempts
	}
	if cfg.FundingTimeout == 0 {
		cfg.FundingTimeout = defaultFundingTimeout
	}
	if cfg.Giver.Function == "" {
		cfg.Giver.Function = DefaultGiverFunction
	}

	s := &Session{
		client: client,
		cfg:    cfg,
		lggr:   logger.Nop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.lggr = s.lggr.Named("contract")
	s.builder = NewMessageBuilder(client)
	s.waiter = NewWaiter(client, s.lggr)

	if cfg.Giver.Address != "" {
		if cfg.Giver.ABI == nil {
			return nil, errors.New("giver abi is required")
		}
		if _, err := cfg.Giver.ABI.Function(cfg.Giver.Function); err != nil {
			return nil, fmt.Errorf("invalid giver function: %w", err)
		}

		giver, err := New(s, "Giver", cfg.Giver.ABI, "")
		if err != nil {
			return nil, err
		}
		if err = giver.Attach(cfg.Giver.Address); err != nil {
			return nil, fmt.Errorf("invalid giver address: %w", err)
		}
		s.giver = giver
	}

	return s, nil
}

// Client returns the network client.
func (s *Session) Client() tonclient.Client {
	return s.client
}

// Config returns the resolved session config.
func (s *Session) Config() SessionConfig {
	return s.cfg
}

// Keys returns the session key set.
func (s *Session) Keys() []keys.KeyPair {
	return s.keys
}

// Giver returns the giver contract, or nil when none is configured.
func (s *Session) Giver() *Contract {
	return s.giver
}

// Balance returns the balance of the account at address in nanotons. Absent accounts yield
// ErrAccountNotFound.
func (s *Session) Balance(ctx context.Context, address string) (*big.Int, error) {
	acc, err := s.client.QueryAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if acc.Balance == nil {
		return new(big.Int), nil
	}

	return acc.Balance, nil
}

// defaultKeys returns the key signing messages when no call option overrides it.
func (s *Session) defaultKeys() *keys.KeyPair {
	if len(s.keys) == 0 {
		return nil
	}
	kp := s.keys[0]

	return &kp
}

// settle pauses after a confirmed transaction.
func (s *Session) settle(ctx context.Context) error {
	if s.cfg.Settle <= 0 {
		return nil
	}

	return s.sleep(ctx, s.cfg.Settle)
}

// retryable reports whether a failed attempt may be repeated. Schema errors are deterministic and
// never retried.
func retryable(err error) bool {
	if errors.Is(err, abi.ErrSchemaMismatch) || errors.Is(err, abi.ErrFunctionNotFound) ||
		errors.Is(err, ErrAddressDrift) {
		return false
	}

	return tonclient.IsTransient(err)
}

// withRetry runs attempt up to attempts times while it fails with retryable errors. Permanent
// errors are returned as is. Exhaustion yields a *RetryExhaustedError carrying the last error.
func (s *Session) withRetry(
	ctx context.Context,
	op string,
	attempts uint,
	attempt func(ctx context.Context, n uint) (tonclient.TransactionStatus, error),
) (tonclient.TransactionStatus, error) {
	var (
		history []error
		n       uint
	)

	status, err := retry.DoWithData(func() (tonclient.TransactionStatus, error) {
		if err := ctx.Err(); err != nil {
			return tonclient.TransactionStatus{}, err
		}
		n++
		s.lggr.Debugw(op+" attempt", "attempt", n, "maxAttempts", attempts)

		status, err := attempt(ctx, n)
		if err != nil {
			history = append(history, err)
			s.lggr.Infow(op+" attempt failed", "attempt", n, "maxAttempts", attempts, "retryable", retryable(err), "err", err)
		}

		return status, err
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
	if err == nil {
		return status, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return tonclient.TransactionStatus{}, fmt.Errorf("%s canceled after %d attempts: %w", op, n, ctxErr)
	}
	if len(history) == 0 || !retryable(history[len(history)-1]) {
		return tonclient.TransactionStatus{}, err
	}

	exhausted := &RetryExhaustedError{Op: op, Attempts: n, Err: history[len(history)-1], History: history}
	s.lggr.Errorw(op+" retries exhausted", "attempts", n, "err", exhausted.Err)

	return tonclient.TransactionStatus{}, exhausted
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
