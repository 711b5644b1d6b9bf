package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
)

const (
	tvcExt = ".base64"
	abiExt = ".abi.json"
)

// Load returns an Unbound handle for the build artifacts of name in dir: the code image
// <dir>/<name>.base64 and the ABI <dir>/<name>.abi.json.
func Load(s *Session, name, dir string) (*Contract, error) {
	dir = strings.TrimSuffix(dir, "/")

	tvc, err := os.ReadFile(filepath.Join(dir, name+tvcExt))
	if err != nil {
		return nil, fmt.Errorf("failed to read code image of %s: %w", name, err)
	}

	a, err := abi.Load(filepath.Join(dir, name+abiExt))
	if err != nil {
		return nil, fmt.Errorf("failed to load abi of %s: %w", name, err)
	}

	return New(s, name, a, strings.TrimSpace(string(tvc)))
}
