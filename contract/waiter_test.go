package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

func TestWaiter_Await(t *testing.T) {
	t.Parallel()

	msg := tonclient.EncodedMessage{Message: "boc", Address: futureAddr, MessageID: "id"}

	tests := []struct {
		name         string
		setup        func(m *mockClient)
		wantStatus   tonclient.TransactionStatus
		wantStage    Stage
		wantReverted bool
		wantErr      error
	}{
		{
			name: "confirmed",
			setup: func(m *mockClient) {
				m.On("SendMessage", mock.Anything, mock.Anything).Return(sentOK(), nil)
				m.On("WaitForTransaction", mock.Anything, mock.MatchedBy(func(p tonclient.WaitForTransactionParams) bool {
					return p.Message == "boc" && p.ShardBlockID == "shard" && p.Abi != nil
				})).Return(confirmed("tx"), nil)
			},
			wantStatus: confirmed("tx"),
		},
		{
			name: "send failure",
			setup: func(m *mockClient) {
				m.On("SendMessage", mock.Anything, mock.Anything).Return(tonclient.SendMessageResult{}, errTransient)
			},
			wantStage: StageSend,
			wantErr:   errTransient,
		},
		{
			name: "wait failure",
			setup: func(m *mockClient) {
				m.On("SendMessage", mock.Anything, mock.Anything).Return(sentOK(), nil)
				m.On("WaitForTransaction", mock.Anything, mock.Anything).Return(tonclient.TransactionStatus{}, errTransient)
			},
			wantStage: StageWait,
			wantErr:   errTransient,
		},
		{
			name: "aborted",
			setup: func(m *mockClient) {
				m.On("SendMessage", mock.Anything, mock.Anything).Return(sentOK(), nil)
				m.On("WaitForTransaction", mock.Anything, mock.Anything).Return(tonclient.TransactionStatus{
					Transaction: tonclient.Transaction{ID: "tx", Aborted: true},
				}, nil)
			},
			wantStatus:   tonclient.TransactionStatus{Transaction: tonclient.Transaction{ID: "tx", Aborted: true}},
			wantStage:    StageWait,
			wantReverted: true,
			wantErr:      ErrReverted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := &mockClient{}
			tt.setup(m)

			status, err := NewWaiter(m, logger.Test(t)).Await(t.Context(), msg, storeABI(t))
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
			var txErr *TransactionError
			require.ErrorAs(t, err, &txErr)
			assert.Equal(t, tt.wantStage, txErr.Stage)
			assert.Equal(t, tt.wantReverted, txErr.Reverted)
			assert.Equal(t, futureAddr, txErr.Address)
		})
	}
}

func TestTransactionError(t *testing.T) {
	t.Parallel()

	sendErr := &TransactionError{Stage: StageSend, Address: futureAddr, Err: errTransient}
	assert.Equal(t, "failed to send message to "+futureAddr+": tonclient error 507: message expired", sendErr.Error())
	assert.False(t, sendErr.Permanent())

	reverted := &TransactionError{Stage: StageWait, Address: futureAddr, Reverted: true, Err: ErrReverted}
	assert.Equal(t, "transaction on "+futureAddr+" reverted: transaction aborted", reverted.Error())
	assert.True(t, reverted.Permanent())
	assert.False(t, tonclient.IsTransient(reverted))
}
