package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/ton-deployments-kit/internal/pointer"
)

var (
	// fileCfg is the config that is loaded from the testdata/config.yml file.
	fileCfg = &Config{
		Network: NetworkConfig{
			Endpoint:                 "https://net.ton.dev",
			LiteserverConfigURL:      "https://ton.org/testnet-global.config.json",
			WaitForTimeout:           10 * time.Second,
			MessageExpirationTimeout: time.Minute,
		},
		Giver: GiverConfig{
			Address:  "0:ece57bcc6c530283becbbd8a3b24d3c5987cdddc3c8b7b33be6e4a6312490415",
			ABIPath:  "./giver.abi.json",
			Function: "sendTransaction",
			Secret:   "0x172af540e43a524763dd53b26a066d472a97c4de37d5498170564510608250c3",
		},
		Keys: KeysConfig{
			SeedPhrase: "melody clarify hand pause kit economy bind behind grid witness cheap tomorrow",
			Count:      10,
		},
		Session: SessionConfig{
			DeployAttempts:  3,
			RunAttempts:     4,
			AfterRunSleepMS: pointer.To(int64(250)),
			FundingTimeout:  30 * time.Second,
			Debug:           true,
		},
		Migration: MigrationConfig{
			LogPath: "./out/migration-log.json",
		},
	}

	// defaultCfg is the config produced when nothing is set.
	defaultCfg = &Config{
		Network: NetworkConfig{
			Endpoint:                 DefaultEndpoint,
			WaitForTimeout:           DefaultWaitForTimeout,
			MessageExpirationTimeout: DefaultMessageExpirationTimeout,
		},
		Giver: GiverConfig{
			Address:  DefaultGiverAddress,
			Function: DefaultGiverFunction,
		},
		Keys: KeysConfig{
			Count: DefaultKeysCount,
		},
		Session: SessionConfig{
			DeployAttempts: DefaultDeployAttempts,
			RunAttempts:    DefaultRunAttempts,
			FundingTimeout: DefaultFundingTimeout,
		},
		Migration: MigrationConfig{
			LogPath: DefaultMigrationLogPath,
		},
	}

	// envVars is the environment variables that used to set the config.
	envVars = map[string]string{
		"TONKIT_NETWORK_ENDPOINT":                   "https://main.ton.dev",
		"TONKIT_NETWORK_LITESERVER_CONFIG_URL":      "https://ton.org/global.config.json",
		"TONKIT_NETWORK_WAIT_FOR_TIMEOUT":           "7s",
		"TONKIT_NETWORK_MESSAGE_EXPIRATION_TIMEOUT": "2m",
		"TONKIT_GIVER_ADDRESS":                      "0:01",
		"TONKIT_GIVER_ABI_PATH":                     "/tmp/giver.abi.json",
		"TONKIT_GIVER_FUNCTION":                     "grant",
		"TONKIT_GIVER_SECRET":                       "0x123",
		"TONKIT_KEYS_SEED_PHRASE":                   "awkward bat",
		"TONKIT_KEYS_COUNT":                         "2",
		"TONKIT_SESSION_DEPLOY_ATTEMPTS":            "9",
		"TONKIT_SESSION_RUN_ATTEMPTS":               "8",
		"TONKIT_SESSION_AFTER_RUN_SLEEP_MS":         "0",
		"TONKIT_SESSION_FUNDING_TIMEOUT":            "1m",
		"TONKIT_SESSION_DEBUG":                      "true",
		"TONKIT_MIGRATION_LOG_PATH":                 "/tmp/log.json",
	}

	legacyEnvVars = map[string]string{
		"TON_NETWORK":            "https://main.ton.dev",
		"TON_GIVER_ADDRESS":      "0:01",
		"TON_GIVER_SECRET":       "0x123",
		"TON_SEED":               "awkward bat",
		"TON_AFTER_RUN_SLEEP_MS": "0",
		// These values do not have a legacy equivalent
		"TONKIT_NETWORK_LITESERVER_CONFIG_URL":      "https://ton.org/global.config.json",
		"TONKIT_NETWORK_WAIT_FOR_TIMEOUT":           "7s",
		"TONKIT_NETWORK_MESSAGE_EXPIRATION_TIMEOUT": "2m",
		"TONKIT_GIVER_ABI_PATH":                     "/tmp/giver.abi.json",
		"TONKIT_GIVER_FUNCTION":                     "grant",
		"TONKIT_KEYS_COUNT":                         "2",
		"TONKIT_SESSION_DEPLOY_ATTEMPTS":            "9",
		"TONKIT_SESSION_RUN_ATTEMPTS":               "8",
		"TONKIT_SESSION_FUNDING_TIMEOUT":            "1m",
		"TONKIT_SESSION_DEBUG":                      "true",
		"TONKIT_MIGRATION_LOG_PATH":                 "/tmp/log.json",
	}

	// envCfg is the config that is loaded from the environment variables.
	envCfg = &Config{
		Network: NetworkConfig{
			Endpoint:                 "https://main.ton.dev",
			LiteserverConfigURL:      "https://ton.org/global.config.json",
			WaitForTimeout:           7 * time.Second,
			MessageExpirationTimeout: 2 * time.Minute,
		},
		Giver: GiverConfig{
			Address:  "0:01",
			ABIPath:  "/tmp/giver.abi.json",
			Function: "grant",
			Secret:   "0x123",
		},
		Keys: KeysConfig{
			SeedPhrase: "awkward bat",
			Count:      2,
		},
		Session: SessionConfig{
			DeployAttempts:  9,
			RunAttempts:     8,
			AfterRunSleepMS: pointer.To(int64(0)),
			FundingTimeout:  time.Minute,
			Debug:           true,
		},
		Migration: MigrationConfig{
			LogPath: "/tmp/log.json",
		},
	}
)

func Test_Load(t *testing.T) { //nolint:paralleltest // see comment in setupEnvVars
	tests := []struct {
		name       string
		beforeFunc func(t *testing.T)
		givePath   string
		want       *Config
	}{
		{
			name:     "load from file",
			givePath: "./testdata/config.yml",
			want:     fileCfg,
		},
		{
			name:     "load from empty file applies defaults",
			givePath: "./testdata/empty.yml",
			want:     defaultCfg,
		},
		{
			name: "override with env",
			beforeFunc: func(t *testing.T) {
				t.Helper()

				setupEnvVars(t, envVars)
			},
			givePath: "./testdata/config.yml",
			want:     envCfg,
		},
		{
			name: "fallback to env when file not found",
			beforeFunc: func(t *testing.T) {
				t.Helper()

				setupEnvVars(t, envVars)
			},
			givePath: "./testdata/invalid.yml",
			want:     envCfg,
		},
	}

	for _, tt := range tests { //nolint:paralleltest // see comment in setupEnvVars
		t.Run(tt.name, func(t *testing.T) {
			if tt.beforeFunc != nil {
				tt.beforeFunc(t)
			}

			got, err := Load(tt.givePath)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_LoadFile(t *testing.T) {
	t.Parallel()

	got, err := LoadFile("./testdata/config.yml")
	require.NoError(t, err)
	assert.Equal(t, fileCfg, got)

	_, err = LoadFile("./testdata/invalid.yml")
	require.ErrorContains(t, err, "no such file or directory")
}

func Test_LoadEnv(t *testing.T) { //nolint:paralleltest // see comment in setupEnvVars
	setupEnvVars(t, envVars)

	got, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, envCfg, got)
}

func Test_LoadEnv_Legacy(t *testing.T) { //nolint:paralleltest // see comment in setupEnvVars
	setupEnvVars(t, legacyEnvVars)

	got, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, envCfg, got)

	d, ok := got.Session.AfterRunSleep()
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), d)
}

func Test_Default(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, defaultCfg, cfg)

	_, ok := cfg.Session.AfterRunSleep()
	assert.False(t, ok)
}

func Test_Redacted(t *testing.T) {
	t.Parallel()

	cfg := *fileCfg
	got := cfg.Redacted()

	assert.Equal(t, redacted, got.Giver.Secret)
	assert.Equal(t, redacted, got.Keys.SeedPhrase)
	assert.Equal(t, fileCfg.Giver.Address, got.Giver.Address)
	assert.NotSame(t, fileCfg.Session.AfterRunSleepMS, got.Session.AfterRunSleepMS)

	// The original must be untouched
	assert.Equal(t, "0x172af540e43a524763dd53b26a066d472a97c4de37d5498170564510608250c3", fileCfg.Giver.Secret)

	b, err := got.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(b), "melody")
}

func Test_YAML_Marshal_Unmarshal(t *testing.T) {
	t.Parallel()

	yamlCfg, err := os.ReadFile("./testdata/config.yml")
	require.NoError(t, err)

	var cfg Config
	err = yaml.Unmarshal(yamlCfg, &cfg)
	require.NoError(t, err)

	assert.Equal(t, *fileCfg, cfg)

	b, err := cfg.YAML()
	require.NoError(t, err)

	assert.YAMLEq(t, string(yamlCfg), string(b))
}

// setupEnvVars sets up the environment variables for the test.
//
// CAUTION: Because this function uses t.Setenv which affects the entire process, tests which call
// this function cannot be run in parallel.
func setupEnvVars(t *testing.T, envVars map[string]string) {
	t.Helper()

	for key, value := range envVars {
		t.Setenv(key, value)
	}
}
