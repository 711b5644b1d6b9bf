// Package contract deploys and calls smart contracts through a network session.
package contract

import (
	"errors"
	"fmt"
	"sync"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

// State is the lifecycle state of a contract handle.
type State int

const (
	// Unbound handles have no address.
	Unbound State = iota
	// AddressKnown handles have a derived address that is not confirmed on chain.
	AddressKnown
	// Deployed handles have a confirmed address that never changes.
	Deployed
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case AddressKnown:
		return "address-known"
	case Deployed:
		return "deployed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Contract is a handle on one contract instance, deployed or not.
type Contract struct {
	session *Session
	name    string
	abi     *abi.ABI
	tvc     string
	code    string

	mu      sync.RWMutex
	state   State
	address string
}

// New returns an Unbound handle for the contract with ABI a and code image tvc. tvc may be empty
// for contracts that are only attached to.
func New(s *Session, name string, a *abi.ABI, tvc string) (*Contract, error) {
	if a == nil {
		return nil, errors.New("abi is required")
	}

	c := &Contract{session: s, name: name, abi: a, tvc: tvc}
	if tvc != "" {
		code, err := tonclient.CodeFromTVC(tvc)
		if err != nil {
			return nil, fmt.Errorf("failed to extract code of %s: %w", name, err)
		}
		c.code = code
	}

	return c, nil
}

// Name returns the display name.
func (c *Contract) Name() string {
	return c.name
}

// ABI returns the contract ABI.
func (c *Contract) ABI() *abi.ABI {
	return c.abi
}

// TVC returns the base64 encoded code image.
func (c *Contract) TVC() string {
	return c.tvc
}

// Code returns the base64 encoded BOC of the code cell.
func (c *Contract) Code() string {
	return c.code
}

// State returns the lifecycle state.
func (c *Contract) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Address returns the current address, derived or confirmed, and whether one is set.
func (c *Contract) Address() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.address, c.state != Unbound
}

// Attach binds the handle to an existing on-chain contract at address.
func (c *Contract) Attach(address string) error {
	normalized, err := tonclient.NormalizeAddress(address)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Deployed && c.address != normalized {
		return fmt.Errorf("%w: %s at %s", ErrAlreadyDeployed, c.name, c.address)
	}

	c.address = normalized
	c.state = Deployed

	return nil
}

// String returns "<name> (<address>)".
func (c *Contract) String() string {
	addr, ok := c.Address()
	if !ok {
		return c.name
	}

	return fmt.Sprintf("%s (%s)", c.name, addr)
}

// deployedAddress returns the confirmed address or ErrNotDeployed.
func (c *Contract) deployedAddress() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != Deployed {
		return "", fmt.Errorf("%w: %s is %s", ErrNotDeployed, c.name, c.state)
	}

	return c.address, nil
}

// markAddressKnown records a derived address. Deployed handles are left untouched.
func (c *Contract) markAddressKnown(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Deployed {
		return
	}

	c.address = address
	c.state = AddressKnown
}

// confirm transitions the handle to Deployed at address.
func (c *Contract) confirm(address string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Deployed {
		return fmt.Errorf("%w: %s at %s", ErrAlreadyDeployed, c.name, c.address)
	}

	c.address = address
	c.state = Deployed

	return nil
}
