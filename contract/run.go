package contract

import (
	"context"
	"fmt"
	"maps"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

// answerIDFields are inputs defaulted to 1 on local runs when declared and not supplied.
var answerIDFields = []string{"_answer_id", "answerId"}

// Run calls fn on the deployed contract, retrying transient failures up to the session's run
// attempts.
func (c *Contract) Run(ctx context.Context, fn string, input map[string]any, opts ...CallOption) (tonclient.TransactionStatus, error) {
	address, err := c.deployedAddress()
	if err != nil {
		return tonclient.TransactionStatus{}, err
	}
	if _, err = c.abi.Function(fn); err != nil {
		return tonclient.TransactionStatus{}, err
	}

	s := c.session
	kp := s.signer(opts)

	status, err := s.withRetry(ctx, "Run "+fn, s.cfg.RunAttempts, func(ctx context.Context, _ uint) (tonclient.TransactionStatus, error) {
		msg, err := s.builder.BuildRun(ctx, address, c.abi, fn, input, kp)
		if err != nil {
			return tonclient.TransactionStatus{}, err
		}

		return s.waiter.Await(ctx, msg, c.abi)
	})
	if err != nil {
		return tonclient.TransactionStatus{}, err
	}

	s.lggr.Debugw("Run confirmed", "contract", c.name, "function", fn, "transactionID", status.Transaction.ID)

	if err = s.settle(ctx); err != nil {
		return status, err
	}

	return status, nil
}

// RunLocal executes fn against the current account state without broadcasting and returns the
// decoded output. Single output functions yield the bare value.
func (c *Contract) RunLocal(ctx context.Context, fn string, input map[string]any) (any, error) {
	address, err := c.deployedAddress()
	if err != nil {
		return nil, err
	}
	function, err := c.abi.Function(fn)
	if err != nil {
		return nil, err
	}

	s := c.session
	msg, err := s.builder.BuildRun(ctx, address, c.abi, fn, withAnswerID(function, input), nil)
	if err != nil {
		return nil, err
	}

	acc, err := s.client.QueryAccount(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to query account of %s: %w", c.name, err)
	}
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if acc.BOC == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoAccountState, address)
	}

	contractAbi := tonclient.ContractAbi(c.abi)
	result, err := s.client.RunTvm(ctx, tonclient.RunTvmParams{
		Message: msg.Message,
		Account: acc.BOC,
		Abi:     &contractAbi,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run %s locally: %w", fn, err)
	}
	if result.Decoded == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoOutput, c.name, fn)
	}

	return abi.NewOutputDecoder(result.Decoded.Output, function).Decode()
}

// withAnswerID returns input with declared answer id inputs defaulted to 1. input is never
// modified.
func withAnswerID(fn abi.Function, input map[string]any) map[string]any {
	out := input
	copied := false
	for _, field := range answerIDFields {
		if !fn.HasInput(field) {
			continue
		}
		if _, ok := input[field]; ok {
			continue
		}
		if !copied {
			out = make(map[string]any, len(input)+1)
			maps.Copy(out, input)
			copied = true
		}
		out[field] = 1
	}

	return out
}
