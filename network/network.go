// Package network describes the networks a session can target.
package network

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	chainsel "github.com/smartcontractkit/chain-selectors"
)

// ErrUnknownNetwork is returned when an endpoint does not belong to a known network.
var ErrUnknownNetwork = errors.New("unknown network")

// Network is a known network endpoint and the chain selector identifying it.
type Network struct {
	Endpoint string
	Selector uint64
}

var (
	Mainnet  = Network{Endpoint: "https://main.ton.dev", Selector: chainsel.TON_MAINNET.Selector}
	Testnet  = Network{Endpoint: "https://net.ton.dev", Selector: chainsel.TON_TESTNET.Selector}
	Localnet = Network{Endpoint: "http://localhost", Selector: chainsel.TON_LOCALNET.Selector}
)

// Known lists the networks with a registered endpoint.
func Known() []Network {
	return []Network{Mainnet, Testnet, Localnet}
}

// Lookup returns the known network of endpoint. Trailing slashes and scheme case are ignored.
func Lookup(endpoint string) (Network, error) {
	want := normalize(endpoint)
	for _, n := range Known() {
		if normalize(n.Endpoint) == want {
			return n, nil
		}
	}

	return Network{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, endpoint)
}

// ChainDetails returns the chain-selectors details of n.
func (n Network) ChainDetails() (chainsel.ChainDetails, error) {
	id, err := chainsel.GetChainIDFromSelector(n.Selector)
	if err != nil {
		return chainsel.ChainDetails{}, err
	}
	family, err := chainsel.GetSelectorFamily(n.Selector)
	if err != nil {
		return chainsel.ChainDetails{}, err
	}

	return chainsel.GetChainDetailsByChainIDAndFamily(id, family)
}

// Name returns the chain name of n, or its selector when the name is not registered.
func (n Network) Name() string {
	details, err := n.ChainDetails()
	if err != nil || details.ChainName == "" {
		return strconv.FormatUint(n.Selector, 10)
	}

	return details.ChainName
}

// Family returns the selector family of n.
func (n Network) Family() string {
	family, err := chainsel.GetSelectorFamily(n.Selector)
	if err != nil {
		return ""
	}

	return family
}

// String returns "<name> (<endpoint>)".
func (n Network) String() string {
	return fmt.Sprintf("%s (%s)", n.Name(), n.Endpoint)
}

func normalize(endpoint string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(endpoint), "/"))
}
