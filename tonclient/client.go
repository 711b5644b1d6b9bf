// Package tonclient defines the boundary with the network collaborator: message encoding,
// submission, confirmation, account queries, local execution and message body decoding.
package tonclient

import (
	"context"
	"math/big"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
	"github.com/smartcontractkit/ton-deployments-kit/keys"
)

// Abi wraps a contract ABI in the form the collaborator accepts.
type Abi struct {
	Type  string   `json:"type"`
	Value *abi.ABI `json:"value"`
}

// ContractAbi returns the Contract form of a.
func ContractAbi(a *abi.ABI) Abi {
	return Abi{Type: "Contract", Value: a}
}

// DeploySet groups the parameters of a contract creation message.
type DeploySet struct {
	// Tvc is the base64 encoded code image.
	Tvc         string         `json:"tvc"`
	InitialData map[string]any `json:"initial_data,omitempty"`
}

// CallSet groups the parameters of a method invocation message.
type CallSet struct {
	FunctionName string         `json:"function_name"`
	Input        map[string]any `json:"input,omitempty"`
}

// SignerType is the signing mode of a message.
type SignerType string

const (
	SignerNone SignerType = "None"
	SignerKeys SignerType = "Keys"
)

// Signer selects how a message is signed.
type Signer struct {
	Type SignerType    `json:"type"`
	Keys *keys.KeyPair `json:"keys,omitempty"`
}

// SignerFor returns a Keys signer when kp is set and a None signer otherwise.
func SignerFor(kp *keys.KeyPair) Signer {
	if kp == nil {
		return Signer{Type: SignerNone}
	}

	return Signer{Type: SignerKeys, Keys: kp}
}

type EncodeMessageParams struct {
	Abi       Abi        `json:"abi"`
	Address   string     `json:"address,omitempty"`
	DeploySet *DeploySet `json:"deploy_set,omitempty"`
	CallSet   *CallSet   `json:"call_set,omitempty"`
	Signer    Signer     `json:"signer"`
}

// EncodedMessage is an opaque encoded message and the address it targets. For deploy messages the
// address is the derived future address.
type EncodedMessage struct {
	Message   string `json:"message"`
	Address   string `json:"address"`
	MessageID string `json:"message_id"`
}

type SendMessageParams struct {
	Message    string `json:"message"`
	Abi        *Abi   `json:"abi,omitempty"`
	SendEvents bool   `json:"send_events"`
}

type SendMessageResult struct {
	ShardBlockID string `json:"shard_block_id"`
}

type WaitForTransactionParams struct {
	Message      string `json:"message"`
	ShardBlockID string `json:"shard_block_id"`
	Abi          *Abi   `json:"abi,omitempty"`
	SendEvents   bool   `json:"send_events"`
}

type Transaction struct {
	ID      string `json:"id"`
	InMsg   string `json:"in_msg"`
	Aborted bool   `json:"aborted"`
}

// DecodedOutput is the raw decoded result of a processed or locally executed message.
type DecodedOutput struct {
	OutMessages []string       `json:"out_messages"`
	Output      map[string]any `json:"output"`
}

// TransactionStatus is the finalized result of a processed message.
type TransactionStatus struct {
	Transaction Transaction    `json:"transaction"`
	OutMessages []string       `json:"out_messages"`
	Fees        map[string]any `json:"fees,omitempty"`
	Decoded     *DecodedOutput `json:"decoded,omitempty"`
}

type RunTvmParams struct {
	Message string `json:"message"`
	Account string `json:"account"`
	Abi     *Abi   `json:"abi,omitempty"`
}

type RunTvmResult struct {
	OutMessages []string       `json:"out_messages"`
	Decoded     *DecodedOutput `json:"decoded,omitempty"`
	Account     string         `json:"account"`
}

type DecodeMessageBodyParams struct {
	Abi        Abi    `json:"abi"`
	Body       string `json:"body"`
	IsInternal bool   `json:"is_internal"`
}

// BodyType is the kind of a decoded message body.
type BodyType string

const (
	BodyInput    BodyType = "Input"
	BodyOutput   BodyType = "Output"
	BodyInternal BodyType = "InternalOutput"
	BodyEvent    BodyType = "Event"
)

type DecodedMessageBody struct {
	BodyType BodyType       `json:"body_type"`
	Name     string         `json:"name"`
	Value    map[string]any `json:"value,omitempty"`
}

// Account is an account state snapshot.
type Account struct {
	ID      string
	Balance *big.Int
	// BOC is the serialized account snapshot executed against by RunTvm.
	BOC string
}

// AccountFilter is a predicate over account state. A zero filter matches any existing account.
type AccountFilter struct {
	BalanceGT *big.Int
}

// Match reports whether acc satisfies f.
func (f AccountFilter) Match(acc *Account) bool {
	if acc == nil {
		return false
	}
	if f.BalanceGT != nil {
		if acc.Balance == nil || acc.Balance.Cmp(f.BalanceGT) <= 0 {
			return false
		}
	}

	return true
}

// MessageType is the on-chain message kind.
type MessageType int

const (
	MessageInternal MessageType = 0
	MessageExtIn    MessageType = 1
	MessageExtOut   MessageType = 2
)

func (t MessageType) String() string {
	switch t {
	case MessageInternal:
		return "internal"
	case MessageExtIn:
		return "ext-in"
	case MessageExtOut:
		return "ext-out"
	default:
		return "unknown"
	}
}

// MessageFilter selects messages by endpoint and type. Empty fields match anything.
type MessageFilter struct {
	Src  string
	Dst  string
	Type *MessageType
}

type Message struct {
	ID   string      `json:"id"`
	Body string      `json:"body"`
	Src  string      `json:"src"`
	Dst  string      `json:"dst"`
	Type MessageType `json:"msg_type"`
}

// Encoder encodes messages. The returned address is derived deterministically from the input.
type Encoder interface {
	EncodeMessage(ctx context.Context, params EncodeMessageParams) (EncodedMessage, error)
}

// Processor submits messages and waits for their finality.
type Processor interface {
	SendMessage(ctx context.Context, params SendMessageParams) (SendMessageResult, error)
	WaitForTransaction(ctx context.Context, params WaitForTransactionParams) (TransactionStatus, error)
}

// AccountQuerier queries account state.
type AccountQuerier interface {
	// QueryAccount returns the account at address or nil when it does not exist.
	QueryAccount(ctx context.Context, address string) (*Account, error)
	// WaitForAccount blocks until the account at address matches filter.
	WaitForAccount(ctx context.Context, address string, filter AccountFilter) (*Account, error)
}

// Executor runs messages against an account snapshot without broadcasting.
type Executor interface {
	RunTvm(ctx context.Context, params RunTvmParams) (RunTvmResult, error)
}

// BodyDecoder decodes historical message bodies.
type BodyDecoder interface {
	DecodeMessageBody(ctx context.Context, params DecodeMessageBodyParams) (DecodedMessageBody, error)
}

// MessageQuerier lists messages.
type MessageQuerier interface {
	QueryMessages(ctx context.Context, filter MessageFilter) ([]Message, error)
}

// SDK is the part of the collaborator bound to its native library: encoding, processing, local
// execution and body decoding.
type SDK interface {
	Encoder
	Processor
	Executor
	BodyDecoder
}

// Client is the full collaborator surface consumed by the contract session.
type Client interface {
	SDK
	AccountQuerier
	MessageQuerier
}

var _ Client = (*composite)(nil)

type composite struct {
	SDK
	AccountQuerier
	MessageQuerier
}

// Compose binds an SDK with account and message queriers into a Client. A nil messages querier
// yields a Client whose QueryMessages fails with ErrUnsupported.
func Compose(sdk SDK, accounts AccountQuerier, messages MessageQuerier) Client {
	if messages == nil {
		messages = unsupportedMessages{}
	}

	return &composite{SDK: sdk, AccountQuerier: accounts, MessageQuerier: messages}
}

type unsupportedMessages struct{}

func (unsupportedMessages) QueryMessages(context.Context, MessageFilter) ([]Message, error) {
	return nil, ErrUnsupported
}
