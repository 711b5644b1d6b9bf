// Package config loads the tonkit configuration from a YAML file and the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/ton-deployments-kit/internal/pointer"
)

// NetworkConfig is the configuration of the network endpoint.
type NetworkConfig struct {
	Endpoint                 string        `mapstructure:"endpoint" yaml:"endpoint"`                                     // GraphQL endpoint of the node, e.g. https://net.ton.dev
	LiteserverConfigURL      string        `mapstructure:"liteserver_config_url" yaml:"liteserver_config_url"`           // Optional: global config URL. When set, accounts are queried from liteservers.
	WaitForTimeout           time.Duration `mapstructure:"wait_for_timeout" yaml:"wait_for_timeout"`                     // How long a wait-for query blocks
	MessageExpirationTimeout time.Duration `mapstructure:"message_expiration_timeout" yaml:"message_expiration_timeout"` // Lifetime of an encoded message
}

// GiverConfig is the configuration of the funding account.
//
// WARNING: This data type contains sensitive fields and should not be logged or set in file
// configuration.
type GiverConfig struct {
	Address  string `mapstructure:"address" yaml:"address"`   // Address of the giver contract
	ABIPath  string `mapstructure:"abi_path" yaml:"abi_path"` // Optional: path to the giver ABI. The built-in sendGrams ABI is used when empty.
	Function string `mapstructure:"function" yaml:"function"` // Funding function of the giver
	Secret   string `mapstructure:"secret" yaml:"secret"`     // Secret: Optional giver private key. Funding messages are unsigned when empty.
}

// KeysConfig is the configuration of the session key set.
//
// WARNING: This data type contains sensitive fields and should not be logged or set in file
// configuration.
type KeysConfig struct {
	SeedPhrase string `mapstructure:"seed_phrase" yaml:"seed_phrase"` // Secret: BIP39 mnemonic the key set is derived from. A fresh one is generated when empty.
	Count      int    `mapstructure:"count" yaml:"count"`             // Number of keys to derive
}

// SessionConfig is the configuration of deploy and run operations.
type SessionConfig struct {
	DeployAttempts  uint          `mapstructure:"deploy_attempts" yaml:"deploy_attempts"`                 // Maximum deploy attempts
	RunAttempts     uint          `mapstructure:"run_attempts" yaml:"run_attempts"`                       // Maximum run attempts
	AfterRunSleepMS *int64        `mapstructure:"after_run_sleep_ms" yaml:"after_run_sleep_ms,omitempty"` // Optional: settle delay override in milliseconds
	FundingTimeout  time.Duration `mapstructure:"funding_timeout" yaml:"funding_timeout"`                 // How long to wait for a funded balance
	Debug           bool          `mapstructure:"debug" yaml:"debug"`                                     // Enables debug logging
}

// MigrationConfig is the configuration of the migration log.
type MigrationConfig struct {
	LogPath string `mapstructure:"log_path" yaml:"log_path"` // Path of the migration log file
}

// Config wraps the entire tonkit configuration.
type Config struct {
	Network   NetworkConfig   `mapstructure:"network" yaml:"network"`
	Giver     GiverConfig     `mapstructure:"giver" yaml:"giver"`
	Keys      KeysConfig      `mapstructure:"keys" yaml:"keys"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Migration MigrationConfig `mapstructure:"migration" yaml:"migration"`
}

// AfterRunSleep returns the configured settle delay override, if any.
func (c SessionConfig) AfterRunSleep() (time.Duration, bool) {
	if c.AfterRunSleepMS == nil {
		return 0, false
	}

	return time.Duration(*c.AfterRunSleepMS) * time.Millisecond, true
}

// Redacted returns a copy of the config with secrets masked.
func (c Config) Redacted() Config {
	if c.Giver.Secret != "" {
		c.Giver.Secret = redacted
	}
	if c.Keys.SeedPhrase != "" {
		c.Keys.SeedPhrase = redacted
	}
	if c.Session.AfterRunSleepMS != nil {
		c.Session.AfterRunSleepMS = pointer.To(*c.Session.AfterRunSleepMS)
	}

	return c
}

// YAML renders the config as YAML.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

const redacted = "<redacted>"

// Defaults.
const (
	DefaultEndpoint                 = "http://localhost"
	DefaultWaitForTimeout           = 5 * time.Second
	DefaultMessageExpirationTimeout = 120 * time.Second
	DefaultGiverAddress             = "0:841288ed3b55d9cdafa806807f02a0ae0c169aa5edfe88a789a6482429756a94"
	DefaultGiverFunction            = "sendGrams"
	DefaultKeysCount                = 100
	DefaultDeployAttempts           = 5
	DefaultRunAttempts              = 5
	DefaultFundingTimeout           = 2 * time.Minute
	DefaultMigrationLogPath         = "migration-log.json"
)

var defaults = map[string]any{
	"network.endpoint":                   DefaultEndpoint,
	"network.wait_for_timeout":           DefaultWaitForTimeout,
	"network.message_expiration_timeout": DefaultMessageExpirationTimeout,
	"giver.address":                      DefaultGiverAddress,
	"giver.function":                     DefaultGiverFunction,
	"keys.count":                         DefaultKeysCount,
	"session.deploy_attempts":            DefaultDeployAttempts,
	"session.run_attempts":               DefaultRunAttempts,
	"session.funding_timeout":            DefaultFundingTimeout,
	"migration.log_path":                 DefaultMigrationLogPath,
}

// Default returns the config with every default applied.
func Default() *Config {
	cfg, _ := load(newViper())

	return cfg
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	// If the config file exists, we continue to read it, otherwise we fallback to using
	// environment variables
	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return load(v)
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := newViper()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	return load(v)
}

// LoadFile loads the config from a file.
func LoadFile(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return v
}

func load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

var (
	// envBindings maps each config key to the environment variables that can provide its value.
	// The first name is preferred, the second (if present) is the legacy name.
	envBindings = map[string][]string{
		"network.endpoint":                   {"TONKIT_NETWORK_ENDPOINT", "TON_NETWORK"},
		"network.liteserver_config_url":      {"TONKIT_NETWORK_LITESERVER_CONFIG_URL"},
		"network.wait_for_timeout":           {"TONKIT_NETWORK_WAIT_FOR_TIMEOUT"},
		"network.message_expiration_timeout": {"TONKIT_NETWORK_MESSAGE_EXPIRATION_TIMEOUT"},
		"giver.address":                      {"TONKIT_GIVER_ADDRESS", "TON_GIVER_ADDRESS"},
		"giver.abi_path":                     {"TONKIT_GIVER_ABI_PATH"},
		"giver.function":                     {"TONKIT_GIVER_FUNCTION"},
		"giver.secret":                       {"TONKIT_GIVER_SECRET", "TON_GIVER_SECRET"},
		"keys.seed_phrase":                   {"TONKIT_KEYS_SEED_PHRASE", "TON_SEED"},
		"keys.count":                         {"TONKIT_KEYS_COUNT"},
		"session.deploy_attempts":            {"TONKIT_SESSION_DEPLOY_ATTEMPTS"},
		"session.run_attempts":               {"TONKIT_SESSION_RUN_ATTEMPTS"},
		"session.after_run_sleep_ms":         {"TONKIT_SESSION_AFTER_RUN_SLEEP_MS", "TON_AFTER_RUN_SLEEP_MS"},
		"session.funding_timeout":            {"TONKIT_SESSION_FUNDING_TIMEOUT"},
		"session.debug":                      {"TONKIT_SESSION_DEBUG"},
		"migration.log_path":                 {"TONKIT_MIGRATION_LOG_PATH"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		// Prepend the env key to the start of the arguments
		inputs := slices.Insert(envs, 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
