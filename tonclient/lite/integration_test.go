package lite

import (
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/smartcontractkit/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/xssnick/tonutils-go/ton"

	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

const (
	localnetImage = "ghcr.io/neodix42/mylocalton-docker:v3.7"
	// liteserverPort is fixed because the served global config advertises it.
	liteserverPort = 40004
	// electorAddress always exists on the masterchain with a positive balance.
	electorAddress = "-1:3333333333333333333333333333333333333333333333333333333333333333"
)

// startLocalnet starts a mylocalton container and returns the URL of its global config.
func startLocalnet(t *testing.T) string {
	t.Helper()

	httpPort := freeport.GetOne(t)

	ctr, err := testcontainers.GenericContainer(t.Context(), testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: localnetImage,
			ExposedPorts: []string{
				fmt.Sprintf("%d:8000/tcp", httpPort),
				fmt.Sprintf("%d:%d/tcp", liteserverPort, liteserverPort),
			},
			WaitingFor: wait.ForHTTP("/localhost.global.config.json").
				WithPort("8000/tcp").
				WithStartupTimeout(5 * time.Minute),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	return fmt.Sprintf("http://127.0.0.1:%d/localhost.global.config.json", httpPort)
}

func TestClient_Localnet(t *testing.T) {
	t.Parallel()

	if os.Getenv("TONKIT_INTEGRATION") != "1" {
		t.Skip("set TONKIT_INTEGRATION=1 to run against a localnet container")
	}

	configURL := startLocalnet(t)

	c, err := Dial(t.Context(), configURL, ton.ProofCheckPolicyFast,
		WithWaitForTimeout(2*time.Minute),
		WithPollInterval(time.Second),
		WithLogger(logger.Test(t)),
	)
	require.NoError(t, err)

	acc, err := c.WaitForAccount(t.Context(), electorAddress, tonclient.AccountFilter{BalanceGT: big.NewInt(0)})
	require.NoError(t, err)
	assert.Equal(t, electorAddress, acc.ID)
	assert.NotEmpty(t, acc.BOC)

	missing, err := c.QueryAccount(t.Context(), "0:"+fmt.Sprintf("%064x", 1))
	require.NoError(t, err)
	assert.Nil(t, missing)
}
