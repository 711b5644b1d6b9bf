package tonclient

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned by operations the configured backend does not provide.
	ErrUnsupported = errors.New("operation not supported by backend")
	// ErrInvalidAddress is returned when an address is neither raw nor user-friendly.
	ErrInvalidAddress = errors.New("invalid address")
)

// Error codes of the collaborator's processing (5xx) and net (6xx) modules.
const (
	CodeMessageAlreadyExpired       = 501
	CodeMessageHasNotDestination    = 502
	CodeCanNotBuildMessageCell      = 503
	CodeFetchBlockFailed            = 504
	CodeSendMessageFailed           = 505
	CodeInvalidMessageBoc           = 506
	CodeMessageExpired              = 507
	CodeTransactionWaitTimeout      = 508
	CodeInvalidBlockReceived        = 509
	CodeCanNotCheckBlockShard       = 510
	CodeBlockNotFound               = 511
	CodeInvalidData                 = 512
	CodeExternalSignerMustNotBeUsed = 513
	CodeMessageRejected             = 514
	CodeInvalidRempStatus           = 515
	CodeNextRempStatusTimeout       = 516

	CodeNetQueryFailed             = 601
	CodeNetSubscribeFailed         = 602
	CodeNetWaitForFailed           = 603
	CodeNetGetSubscriptionFailed   = 604
	CodeNetInvalidServerResponse   = 605
	CodeNetClockOutOfSync          = 606
	CodeNetWaitForTimeout          = 607
	CodeNetGraphqlError            = 608
	CodeNetModuleNotInit           = 609
	CodeNetNotSupported            = 610
	CodeNetNoEndpointsProvided     = 612
	CodeNetGraphqlWebsocketInitErr = 613
	CodeNetNetworkModuleResumed    = 614
)

var transientCodes = map[int]struct{}{
	CodeMessageAlreadyExpired:    {},
	CodeFetchBlockFailed:         {},
	CodeSendMessageFailed:        {},
	CodeMessageExpired:           {},
	CodeTransactionWaitTimeout:   {},
	CodeInvalidBlockReceived:     {},
	CodeCanNotCheckBlockShard:    {},
	CodeBlockNotFound:            {},
	CodeNextRempStatusTimeout:    {},
	CodeNetQueryFailed:           {},
	CodeNetSubscribeFailed:       {},
	CodeNetWaitForFailed:         {},
	CodeNetGetSubscriptionFailed: {},
	CodeNetInvalidServerResponse: {},
	CodeNetWaitForTimeout:        {},
	CodeNetNotSupported:          {},
	CodeNetNetworkModuleResumed:  {},
}

// Error is an error reported by the collaborator.
type Error struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("tonclient error %d: %s", e.Code, e.Message)
}

// Transient reports whether the failure may succeed when the operation is repeated.
func (e *Error) Transient() bool {
	_, ok := transientCodes[e.Code]

	return ok
}

// IsTransient classifies err for the retry policy. Coded collaborator errors are classified by
// code. Cancellation, deadline and input errors are permanent. Anything else is assumed to be a
// transport failure and therefore transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrInvalidAddress) || errors.Is(err, ErrUnsupported) {
		return false
	}

	var perm interface{ Permanent() bool }
	if errors.As(err, &perm) && perm.Permanent() {
		return false
	}

	var terr *Error
	if errors.As(err, &terr) {
		return terr.Transient()
	}

	return true
}
