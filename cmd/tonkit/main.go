// Command tonkit deploys and inspects TON smart contracts.
package main

import (
	"fmt"
	"os"

	"github.com/smartcontractkit/ton-deployments-kit/pkg/commands"
	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	lggr, err := logger.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = lggr.Sync() }()

	if err := commands.New(lggr).Root().Execute(); err != nil {
		return 1
	}

	return 0
}
