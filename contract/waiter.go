package contract

import (
	"context"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

// Waiter submits messages and blocks until their transaction is final.
type Waiter struct {
	proc tonclient.Processor
	lggr logger.Logger
}

// NewWaiter returns a Waiter processing with proc.
func NewWaiter(proc tonclient.Processor, lggr logger.Logger) *Waiter {
	return &Waiter{proc: proc, lggr: lggr}
}

// Await submits msg and waits for its transaction, matching it with the ABI a. Any failure,
// including an aborted transaction, is returned as a *TransactionError.
func (w *Waiter) Await(ctx context.Context, msg tonclient.EncodedMessage, a *abi.ABI) (tonclient.TransactionStatus, error) {
	contractAbi := tonclient.ContractAbi(a)

	sent, err := w.proc.SendMessage(ctx, tonclient.SendMessageParams{
		Message: msg.Message,
		Abi:     &contractAbi,
	})
	if err != nil {
		return tonclient.TransactionStatus{}, &TransactionError{Stage: StageSend, Address: msg.Address, Err: err}
	}

	w.lggr.Debugw("Message sent", "address", msg.Address, "messageID", msg.MessageID, "shardBlockID", sent.ShardBlockID)

	status, err := w.proc.WaitForTransaction(ctx, tonclient.WaitForTransactionParams{
		Message:      msg.Message,
		ShardBlockID: sent.ShardBlockID,
		Abi:          &contractAbi,
	})
	if err != nil {
		return tonclient.TransactionStatus{}, &TransactionError{Stage: StageWait, Address: msg.Address, Err: err}
	}
	if status.Transaction.Aborted {
		return status, &TransactionError{Stage: StageWait, Address: msg.Address, Reverted: true, Err: ErrReverted}
	}

	w.lggr.Debugw("Transaction confirmed", "address", msg.Address, "transactionID", status.Transaction.ID)

	return status, nil
}
