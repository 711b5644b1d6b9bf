// Package migration deploys contracts under aliases, records their addresses in a migration log
// and accounts for the funding spent on them.
package migration

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/xssnick/tonutils-go/tlb"

	"github.com/smartcontractkit/ton-deployments-kit/contract"
	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

// Action is one deployment made through a Migration.
type Action struct {
	Alias    string
	Contract *contract.Contract
	Address  string
	// Cost is the decrease of the giver balance over the deployment, in nanotons. Concurrent users
	// of the same giver skew it. It is zero when the balance after the deployment could not be read.
	Cost   *big.Int
	Status tonclient.TransactionStatus
}

// Option configures a Migration.
type Option func(*Migration)

// WithLogger sets the migration logger.
func WithLogger(lggr logger.Logger) Option {
	return func(m *Migration) {
		m.lggr = lggr
	}
}

// WithLog replaces the file backed migration log.
func WithLog(log Log) Option {
	return func(m *Migration) {
		m.log = log
	}
}

// Migration deploys contracts through a session and keeps the history of its deployments.
type Migration struct {
	session *contract.Session
	log     Log
	lggr    logger.Logger

	mu      sync.Mutex
	history []Action
}

// New returns a Migration over s logging to the file at logPath, which is created when absent.
func New(s *contract.Session, logPath string, opts ...Option) (*Migration, error) {
	m := &Migration{
		session: s,
		lggr:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lggr = m.lggr.Named("migration")

	if m.log == nil {
		log, err := OpenFileLog(logPath)
		if err != nil {
			return nil, err
		}
		m.log = log
	}

	return m, nil
}

// Deploy deploys c, records it under alias and returns the recorded action. alias defaults to the
// contract name.
func (m *Migration) Deploy(
	ctx context.Context,
	c *contract.Contract,
	params contract.DeployParams,
	alias string,
	opts ...contract.CallOption,
) (Action, error) {
	if alias == "" {
		alias = c.Name()
	}

	m.lggr.Infow("Deploying contract", "contract", c.Name(), "alias", alias)

	before, err := m.giverBalance(ctx)
	if err != nil {
		return Action{}, err
	}

	status, err := c.Deploy(ctx, params, opts...)
	if err != nil {
		return Action{}, fmt.Errorf("failed to deploy %s: %w", alias, err)
	}

	address, _ := c.Address()
	action := Action{
		Alias:    alias,
		Contract: c,
		Address:  address,
		Cost:     new(big.Int),
		Status:   status,
	}

	// The contract is on chain at this point, so it is recorded even when the cost is unknown.
	after, err := m.giverBalance(ctx)
	if err != nil {
		m.lggr.Warnw("Failed to measure deployment cost", "alias", alias, "address", address, "err", err)
	} else {
		action.Cost.Sub(before, after)
	}

	if err = m.log.Put(alias, Entry{Address: address, Name: c.Name()}); err != nil {
		return action, fmt.Errorf("failed to record %s: %w", alias, err)
	}

	m.mu.Lock()
	m.history = append(m.history, action)
	m.mu.Unlock()

	m.logAction(action)

	return action, nil
}

// Load attaches c to the address logged under alias. alias defaults to the contract name.
func (m *Migration) Load(c *contract.Contract, alias string) error {
	if alias == "" {
		alias = c.Name()
	}

	entry, err := m.log.Get(alias)
	if err != nil {
		return err
	}

	return c.Attach(entry.Address)
}

// History returns the deployments made through m in order.
func (m *Migration) History() []Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Action, len(m.history))
	copy(out, m.history)

	return out
}

// TotalCost returns the summed cost of every deployment in nanotons.
func (m *Migration) TotalCost() *big.Int {
	total := new(big.Int)
	for _, action := range m.History() {
		total.Add(total, action.Cost)
	}

	return total
}

// LogHistory logs every deployment and the total cost.
func (m *Migration) LogHistory() {
	for i, action := range m.History() {
		m.lggr.Infow("Migration action", "index", i)
		m.logAction(action)
	}

	m.lggr.Infow("Migration total cost", "cost", FormatTON(m.TotalCost()))
}

func (m *Migration) logAction(action Action) {
	m.lggr.Infow("Deployed contract",
		"contract", action.Contract.Name(),
		"alias", action.Alias,
		"address", action.Address,
		"cost", FormatTON(action.Cost),
		"transaction", action.Status.Transaction.ID,
		"message", action.Status.Transaction.InMsg,
	)
}

// giverBalance returns the giver balance, or zero when the session has no giver.
func (m *Migration) giverBalance(ctx context.Context) (*big.Int, error) {
	giver := m.session.Giver()
	if giver == nil {
		return new(big.Int), nil
	}

	address, _ := giver.Address()
	balance, err := m.session.Balance(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to query giver balance: %w", err)
	}

	return balance, nil
}

// FormatTON formats an amount of nanotons in TON.
func FormatTON(nano *big.Int) string {
	if nano.Sign() < 0 {
		return "-" + tlb.FromNanoTON(new(big.Int).Neg(nano)).String()
	}

	return tlb.FromNanoTON(nano).String()
}
