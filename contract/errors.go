package contract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotDeployed is returned by operations that need a confirmed address.
	ErrNotDeployed = errors.New("contract is not deployed")
	// ErrAlreadyDeployed is returned when deploying or re-attaching a deployed contract.
	ErrAlreadyDeployed = errors.New("contract is already deployed")
	// ErrAccountNotFound is returned when the account of a deployed contract does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNoAccountState is returned when a local run finds the account without serialized state.
	ErrNoAccountState = errors.New("account has no serialized state")
	// ErrFundingTimeout is returned when the future address never receives a positive balance.
	ErrFundingTimeout = errors.New("funding timed out")
	// ErrNoGiver is returned when funding is requested without a configured giver.
	ErrNoGiver = errors.New("giver is not configured")
	// ErrReverted is the cause of a TransactionError for an aborted transaction.
	ErrReverted = errors.New("transaction aborted")
	// ErrAddressDrift is returned when a rebuilt deploy message derives another address.
	ErrAddressDrift = errors.New("derived address changed between attempts")
	// ErrNoOutput is returned when a local run yields no decoded output.
	ErrNoOutput = errors.New("run produced no decoded output")
)

// Stage is the step of message processing that failed.
type Stage string

const (
	StageSend Stage = "send"
	StageWait Stage = "wait"
)

// TransactionError is returned when submitting a message or waiting for its transaction fails.
type TransactionError struct {
	Stage    Stage
	Address  string
	Reverted bool
	Err      error
}

func (e *TransactionError) Error() string {
	if e.Reverted {
		return fmt.Sprintf("transaction on %s reverted: %v", e.Address, e.Err)
	}

	return fmt.Sprintf("failed to %s message to %s: %v", e.Stage, e.Address, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// Permanent reports whether repeating the message cannot succeed. A reverted transaction is
// permanent.
func (e *TransactionError) Permanent() bool {
	return e.Reverted
}

// RetryExhaustedError is returned when every attempt of an operation failed. Err is the last
// failure and History holds every failure in attempt order.
type RetryExhaustedError struct {
	Op       string
	Attempts uint
	Err      error
	History  []error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// Summary returns one line per failed attempt.
func (e *RetryExhaustedError) Summary() string {
	var b strings.Builder
	for i, err := range e.History {
		fmt.Fprintf(&b, "attempt %d: %v\n", i+1, err)
	}

	return b.String()
}
