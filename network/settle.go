package network

import "time"

const (
	// DefaultSettleDelay is the pause after a confirmed transaction on endpoints without their own
	// delay.
	DefaultSettleDelay = 100 * time.Millisecond
	// TestnetSettleDelay is the pause on the public testnet, where state lags confirmation.
	TestnetSettleDelay = 4 * time.Second
)

// SettleDelays resolves the pause taken after every confirmed deploy or run.
type SettleDelays struct {
	// Default applies to endpoints absent from ByEndpoint.
	Default time.Duration
	// ByEndpoint holds per endpoint delays.
	ByEndpoint map[string]time.Duration
	// Override, when set, wins over everything else.
	Override *time.Duration
}

// DefaultSettleDelays returns the built-in policy.
func DefaultSettleDelays() SettleDelays {
	return SettleDelays{
		Default: DefaultSettleDelay,
		ByEndpoint: map[string]time.Duration{
			Testnet.Endpoint: TestnetSettleDelay,
		},
	}
}

// WithOverride returns a copy of s whose delay is d for every endpoint.
func (s SettleDelays) WithOverride(d time.Duration) SettleDelays {
	s.Override = &d

	return s
}

// For returns the delay of endpoint.
func (s SettleDelays) For(endpoint string) time.Duration {
	if s.Override != nil {
		return *s.Override
	}

	want := normalize(endpoint)
	for e, d := range s.ByEndpoint {
		if normalize(e) == want {
			return d
		}
	}

	return s.Default
}
