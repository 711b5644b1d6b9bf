package contract

import (
	"github.com/smartcontractkit/ton-deployments-kit/keys"
)

// CallOption configures the signing of a deploy or run.
type CallOption func(*callConfig)

type callConfig struct {
	keys    *keys.KeyPair
	keysSet bool
}

// WithKeys signs with kp instead of the session's default key.
func WithKeys(kp keys.KeyPair) CallOption {
	return func(c *callConfig) {
		c.keys = &kp
		c.keysSet = true
	}
}

// Unsigned sends the message without a signature.
func Unsigned() CallOption {
	return func(c *callConfig) {
		c.keys = nil
		c.keysSet = true
	}
}

// signer resolves the key of a call, falling back to the session default.
func (s *Session) signer(opts []CallOption) *keys.KeyPair {
	cfg := &callConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.keysSet {
		return cfg.keys
	}

	return s.defaultKeys()
}
