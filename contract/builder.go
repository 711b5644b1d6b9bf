package contract

import (
	"context"
	"encoding/hex"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
	"github.com/smartcontractkit/ton-deployments-kit/keys"
	"github.com/smartcontractkit/ton-deployments-kit/tonclient"
)

const (
	// NonceField is the reserved init param holding the random nonce.
	NonceField = "_randomNonce"
	// ConstructorFunction is the function called by deploy messages.
	ConstructorFunction = "constructor"
)

// RandomNonce returns a fresh 128 bit nonce as a hex string.
func RandomNonce() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	return "0x" + hex.EncodeToString(id[:]), nil
}

// WithRandomNonce returns a copy of init with a fresh NonceField. init is not modified.
func WithRandomNonce(init map[string]any) (map[string]any, error) {
	nonce, err := RandomNonce()
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(init)+1)
	maps.Copy(out, init)
	out[NonceField] = nonce

	return out, nil
}

// MessageBuilder assembles deploy and call messages and delegates their encoding.
type MessageBuilder struct {
	enc tonclient.Encoder
}

// NewMessageBuilder returns a MessageBuilder encoding with enc.
func NewMessageBuilder(enc tonclient.Encoder) *MessageBuilder {
	return &MessageBuilder{enc: enc}
}

// BuildDeploy builds the deploy message of the code image tvc. The message address is the derived
// future address. The message is signed with kp when set.
func (b *MessageBuilder) BuildDeploy(
	ctx context.Context,
	a *abi.ABI,
	tvc string,
	constructor, init map[string]any,
	kp *keys.KeyPair,
) (tonclient.EncodedMessage, error) {
	msg, err := b.enc.EncodeMessage(ctx, tonclient.EncodeMessageParams{
		Abi: tonclient.ContractAbi(a),
		DeploySet: &tonclient.DeploySet{
			Tvc:         tvc,
			InitialData: init,
		},
		CallSet: &tonclient.CallSet{
			FunctionName: ConstructorFunction,
			Input:        constructor,
		},
		Signer: tonclient.SignerFor(kp),
	})
	if err != nil {
		return tonclient.EncodedMessage{}, fmt.Errorf("failed to encode deploy message: %w", err)
	}

	return msg, nil
}

// BuildRun builds a call of fn on the contract at address. The message is signed with kp when
// set.
func (b *MessageBuilder) BuildRun(
	ctx context.Context,
	address string,
	a *abi.ABI,
	fn string,
	input map[string]any,
	kp *keys.KeyPair,
) (tonclient.EncodedMessage, error) {
	if _, err := a.Function(fn); err != nil {
		return tonclient.EncodedMessage{}, err
	}

	msg, err := b.enc.EncodeMessage(ctx, tonclient.EncodeMessageParams{
		Abi:     tonclient.ContractAbi(a),
		Address: address,
		CallSet: &tonclient.CallSet{
			FunctionName: fn,
			Input:        input,
		},
		Signer: tonclient.SignerFor(kp),
	})
	if err != nil {
		return tonclient.EncodedMessage{}, fmt.Errorf("failed to encode %s message: %w", fn, err)
	}
	if msg.Address == "" {
		msg.Address = address
	}

	return msg, nil
}
