package contract

import (
	_ "embed"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
)

// DefaultGiverFunction is the funding function of the built-in giver ABI.
const DefaultGiverFunction = "sendGrams"

//go:embed giver.abi.json
var giverABIJSON []byte

// GiverABI returns the ABI of the local node giver: sendGrams(dest address, amount uint64).
func GiverABI() *abi.ABI {
	return abi.MustParse(giverABIJSON)
}
