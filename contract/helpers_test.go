package contract

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
	"github.com/smartcontractkit/ton-deployments-kit/keys"
	"github.com/smartcontractkit/ton-deployments-kit/pkg/logger"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

const storeABIJSON = `{
	"ABI version": 2,
	"version": "2.2",
	"header": ["time", "expire"],
	"functions": [
		{"name": "constructor", "inputs": [{"name": "owner", "type": "uint256"}], "outputs": []},
		{"name": "setValue", "inputs": [{"name": "value", "type": "uint128"}], "outputs": []},
		{"name": "getValue", "inputs": [{"name": "answerId", "type": "uint32"}], "outputs": [{"name": "value", "type": "uint128"}]},
		{"name": "getLegacy", "inputs": [{"name": "_answer_id", "type": "uint32"}, {"name": "key", "type": "uint8"}], "outputs": [{"name": "value", "type": "bool"}]},
		{"name": "getPair", "inputs": [], "outputs": [{"name": "a", "type": "uint8"}, {"name": "b", "type": "bool"}]}
	],
	"events": [{"name": "ValueChanged", "inputs": [{"name": "value", "type": "uint128"}]}],
	"data": []
}`

const (
	futureAddr = "0:1111111111111111111111111111111111111111111111111111111111111111"
	otherAddr  = "0:2222222222222222222222222222222222222222222222222222222222222222"
	giverAddr  = "0:841288ed3b55d9cdafa806807f02a0ae0c169aa5edfe88a789a6482429756a94"
)

var errTransient = &tonclient.Error{Code: tonclient.CodeMessageExpired, Message: "message expired"}

func storeABI(t *testing.T) *abi.ABI {
	t.Helper()

	a, err := abi.Parse([]byte(storeABIJSON))
	require.NoError(t, err)

	return a
}

// testTVC returns a base64 code image with a small code and data cell.
func testTVC(t *testing.T) string {
	t.Helper()

	root, err := tlb.ToCell(&tlb.StateInit{
		Code: cell.BeginCell().MustStoreUInt(0xC0DE, 16).EndCell(),
		Data: cell.BeginCell().MustStoreUInt(0xDA7A, 16).EndCell(),
	})
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(root.ToBOC())
}

func testKeys(t *testing.T, n int) []keys.KeyPair {
	t.Helper()

	set := make([]keys.KeyPair, n)
	for i := range set {
		kp, err := keys.Generate(keys.FromRaw(strings.Repeat(fmt.Sprintf("%02x", i+1), 32)))
		require.NoError(t, err)
		set[i] = kp
	}

	return set
}

// noSleep records settle pauses without sleeping.
type noSleep struct {
	calls []time.Duration
}

func (n *noSleep) sleep(_ context.Context, d time.Duration) error {
	n.calls = append(n.calls, d)

	return nil
}

func newTestSession(t *testing.T, client tonclient.Client, cfg SessionConfig, opts ...SessionOption) (*Session, *noSleep) {
	t.Helper()

	ns := &noSleep{}
	opts = append([]SessionOption{
		WithLogger(logger.Test(t)),
		WithKeySet(testKeys(t, 2)),
		withSleep(ns.sleep),
	}, opts...)

	s, err := NewSession(client, cfg, opts...)
	require.NoError(t, err)

	return s, ns
}

func newStore(t *testing.T, s *Session) *Contract {
	t.Helper()

	c, err := New(s, "Store", storeABI(t), testTVC(t))
	require.NoError(t, err)

	return c
}

func deployedStore(t *testing.T, s *Session) *Contract {
	t.Helper()

	c := newStore(t, s)
	require.NoError(t, c.Attach(futureAddr))

	return c
}

var _ tonclient.Client = (*mockClient)(nil)

type mockClient struct {
	mock.Mock

	// encode, when set, replaces the EncodeMessage expectation.
	encode func(params tonclient.EncodeMessageParams) (tonclient.EncodedMessage, error)
}

func (m *mockClient) EncodeMessage(ctx context.Context, params tonclient.EncodeMessageParams) (tonclient.EncodedMessage, error) {
	if m.encode != nil {
		return m.encode(params)
	}
	args := m.Called(ctx, params)

	return args.Get(0).(tonclient.EncodedMessage), args.Error(1)
}

func (m *mockClient) SendMessage(ctx context.Context, params tonclient.SendMessageParams) (tonclient.SendMessageResult, error) {
	args := m.Called(ctx, params)

	return args.Get(0).(tonclient.SendMessageResult), args.Error(1)
}

func (m *mockClient) WaitForTransaction(ctx context.Context, params tonclient.WaitForTransactionParams) (tonclient.TransactionStatus, error) {
	args := m.Called(ctx, params)

	return args.Get(0).(tonclient.TransactionStatus), args.Error(1)
}

func (m *mockClient) QueryAccount(ctx context.Context, address string) (*tonclient.Account, error) {
	args := m.Called(ctx, address)

	acc, _ := args.Get(0).(*tonclient.Account)

	return acc, args.Error(1)
}

func (m *mockClient) WaitForAccount(ctx context.Context, address string, filter tonclient.AccountFilter) (*tonclient.Account, error) {
	args := m.Called(ctx, address, filter)

	acc, _ := args.Get(0).(*tonclient.Account)

	return acc, args.Error(1)
}

func (m *mockClient) RunTvm(ctx context.Context, params tonclient.RunTvmParams) (tonclient.RunTvmResult, error) {
	args := m.Called(ctx, params)

	return args.Get(0).(tonclient.RunTvmResult), args.Error(1)
}

func (m *mockClient) DecodeMessageBody(ctx context.Context, params tonclient.DecodeMessageBodyParams) (tonclient.DecodedMessageBody, error) {
	args := m.Called(ctx, params)

	return args.Get(0).(tonclient.DecodedMessageBody), args.Error(1)
}

func (m *mockClient) QueryMessages(ctx context.Context, filter tonclient.MessageFilter) ([]tonclient.Message, error) {
	args := m.Called(ctx, filter)

	msgs, _ := args.Get(0).([]tonclient.Message)

	return msgs, args.Error(1)
}

// isDeploy matches deploy encodings.
func isDeploy(p tonclient.EncodeMessageParams) bool {
	return p.DeploySet != nil
}

// isCall matches call encodings of fn.
func isCall(fn string) func(tonclient.EncodeMessageParams) bool {
	return func(p tonclient.EncodeMessageParams) bool {
		return p.DeploySet == nil && p.CallSet != nil && p.CallSet.FunctionName == fn
	}
}

// hashEncoder derives the message address from a hash of the encoded params.
func hashEncoder(params tonclient.EncodeMessageParams) (tonclient.EncodedMessage, error) {
	raw, err := json.Marshal(struct {
		Deploy *tonclient.DeploySet
		Call   *tonclient.CallSet
		Signer tonclient.Signer
	}{params.DeploySet, params.CallSet, params.Signer})
	if err != nil {
		return tonclient.EncodedMessage{}, err
	}
	sum := sha256.Sum256(raw)

	return tonclient.EncodedMessage{
		Message:   base64.StdEncoding.EncodeToString(raw),
		Address:   "0:" + hex.EncodeToString(sum[:]),
		MessageID: hex.EncodeToString(sum[:8]),
	}, nil
}

func sentOK() tonclient.SendMessageResult {
	return tonclient.SendMessageResult{ShardBlockID: "shard"}
}

func confirmed(id string) tonclient.TransactionStatus {
	return tonclient.TransactionStatus{Transaction: tonclient.Transaction{ID: id}}
}
