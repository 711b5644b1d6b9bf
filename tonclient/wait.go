package tonclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// errNotMatched is returned by a poll whose account does not match the filter yet.
var errNotMatched = errors.New("account does not match filter")

// AccountQueryFunc returns the account at address or nil when it does not exist.
type AccountQueryFunc func(ctx context.Context, address string) (*Account, error)

// PollAccount queries the account at address every interval until it matches filter. Transient
// query errors are retried, permanent ones are returned as is. When timeout elapses first the
// result is a CodeNetWaitForTimeout error.
func PollAccount(
	ctx context.Context,
	query AccountQueryFunc,
	address string,
	filter AccountFilter,
	timeout, interval time.Duration,
) (*Account, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	acc, err := retry.DoWithData(func() (*Account, error) {
		acc, err := query(waitCtx, address)
		if err != nil {
			return nil, err
		}
		if !filter.Match(acc) {
			return nil, errNotMatched
		}

		return acc, nil
	},
		retry.Context(waitCtx),
		retry.Attempts(0),
		retry.Delay(interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errNotMatched) || IsTransient(err)
		}),
	)
	if err == nil {
		return acc, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if waitCtx.Err() != nil {
		return nil, &Error{
			Code:    CodeNetWaitForTimeout,
			Message: fmt.Sprintf("account %s did not match filter within %s", address, timeout),
		}
	}

	return nil, err
}
