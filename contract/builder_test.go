package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

func TestRandomNonce(t *testing.T) {
	t.Parallel()

	a, err := RandomNonce()
	require.NoError(t, err)
	b, err := RandomNonce()
	require.NoError(t, err)

	assert.Len(t, a, 34)
	assert.Regexp(t, "^0x[0-9a-f]{32}$", a)
	assert.NotEqual(t, a, b)
}

func TestWithRandomNonce(t *testing.T) {
	t.Parallel()

	init := map[string]any{"owner": "0x01"}

	got, err := WithRandomNonce(init)
	require.NoError(t, err)

	assert.Equal(t, "0x01", got["owner"])
	assert.Contains(t, got, NonceField)
	assert.NotContains(t, init, NonceField)

	nilInit, err := WithRandomNonce(nil)
	require.NoError(t, err)
	assert.Len(t, nilInit, 1)
}

func TestMessageBuilder_BuildDeploy(t *testing.T) {
	t.Parallel()

	kp := testKeys(t, 1)[0]
	a := storeABI(t)

	tests := []struct {
		name       string
		signed     bool
		wantSigner tonclient.SignerType
	}{
		{name: "signed", signed: true, wantSigner: tonclient.SignerKeys},
		{name: "unsigned", signed: false, wantSigner: tonclient.SignerNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			enc := &mockClient{}
			enc.On("EncodeMessage", mock.Anything, mock.MatchedBy(func(p tonclient.EncodeMessageParams) bool {
				return p.DeploySet.Tvc == "tvc" &&
					p.DeploySet.InitialData["k"] == "v" &&
					p.CallSet.FunctionName == ConstructorFunction &&
					p.CallSet.Input["owner"] == "0x01" &&
					p.Signer.Type == tt.wantSigner &&
					p.Abi.Value == a
			})).Return(tonclient.EncodedMessage{Message: "boc", Address: futureAddr}, nil).Once()

			signer := &kp
			if !tt.signed {
				signer = nil
			}

			msg, err := NewMessageBuilder(enc).BuildDeploy(t.Context(), a, "tvc",
				map[string]any{"owner": "0x01"}, map[string]any{"k": "v"}, signer)
			require.NoError(t, err)

			assert.Equal(t, futureAddr, msg.Address)
			enc.AssertExpectations(t)
		})
	}
}

func TestMessageBuilder_BuildDeploy_Error(t *testing.T) {
	t.Parallel()

	enc := &mockClient{}
	enc.On("EncodeMessage", mock.Anything, mock.Anything).
		Return(tonclient.EncodedMessage{}, &tonclient.Error{Code: tonclient.CodeInvalidData, Message: "bad"})

	_, err := NewMessageBuilder(enc).BuildDeploy(t.Context(), storeABI(t), "tvc", nil, nil, nil)

	var clientErr *tonclient.Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, tonclient.CodeInvalidData, clientErr.Code)
}

func TestMessageBuilder_BuildRun(t *testing.T) {
	t.Parallel()

	a := storeABI(t)

	tests := []struct {
		name        string
		fn          string
		encoded     tonclient.EncodedMessage
		wantAddress string
		wantErr     error
	}{
		{
			name:        "fills missing address",
			fn:          "setValue",
			encoded:     tonclient.EncodedMessage{Message: "boc"},
			wantAddress: futureAddr,
		},
		{
			name:        "keeps encoded address",
			fn:          "setValue",
			encoded:     tonclient.EncodedMessage{Message: "boc", Address: otherAddr},
			wantAddress: otherAddr,
		},
		{
			name:    "unknown function",
			fn:      "missing",
			wantErr: abi.ErrFunctionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			enc := &mockClient{}
			enc.On("EncodeMessage", mock.Anything, mock.MatchedBy(func(p tonclient.EncodeMessageParams) bool {
				return p.Address == futureAddr && p.DeploySet == nil && p.CallSet.FunctionName == tt.fn
			})).Return(tt.encoded, nil)

			msg, err := NewMessageBuilder(enc).BuildRun(t.Context(), futureAddr, a, tt.fn, map[string]any{"value": 1}, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				enc.AssertNotCalled(t, "EncodeMessage", mock.Anything, mock.Anything)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddress, msg.Address)
		})
	}
}

func TestMessageBuilder_Deterministic(t *testing.T) {
	t.Parallel()

	b := NewMessageBuilder(&mockClient{encode: hashEncoder})
	a := storeABI(t)
	init := map[string]any{"k": "v"}

	first, err := b.BuildDeploy(t.Context(), a, "tvc", nil, init, nil)
	require.NoError(t, err)
	second, err := b.BuildDeploy(t.Context(), a, "tvc", nil, init, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	randomized, err := WithRandomNonce(init)
	require.NoError(t, err)
	third, err := b.BuildDeploy(t.Context(), a, "tvc", nil, randomized, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Address, third.Address)
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		give error
		want bool
	}{
		{name: "transient", give: errTransient, want: true},
		{name: "transient behind transaction error", give: &TransactionError{Stage: StageSend, Err: errTransient}, want: true},
		{name: "reverted", give: &TransactionError{Stage: StageWait, Reverted: true, Err: ErrReverted}, want: false},
		{name: "schema mismatch", give: abi.ErrSchemaMismatch, want: false},
		{name: "function not found", give: abi.ErrFunctionNotFound, want: false},
		{name: "address drift", give: ErrAddressDrift, want: false},
		{name: "rejected", give: &tonclient.Error{Code: tonclient.CodeMessageRejected}, want: false},
		{name: "unclassified", give: errors.New("boom"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, retryable(tt.give))
		})
	}
}
