// Package keys provides the ed25519 key material used to sign deploy and call messages.
package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/ton/wallet"
)

// KeyPair is a hex encoded ed25519 keypair in the shape the network collaborator expects. Secret
// holds the 32 byte seed of the private key.
//
// WARNING: Secret is sensitive and must not be logged.
type KeyPair struct {
	Public string `json:"public"`
	Secret string `json:"secret"`
}

// FromPrivateKey returns the KeyPair of an ed25519 private key.
func FromPrivateKey(pk ed25519.PrivateKey) KeyPair {
	return KeyPair{
		Public: hex.EncodeToString(pk.Public().(ed25519.PublicKey)),
		Secret: hex.EncodeToString(pk.Seed()),
	}
}

// PrivateKey decodes the secret back into an ed25519 private key and checks it matches Public.
func (k KeyPair) PrivateKey() (ed25519.PrivateKey, error) {
	pk, err := FromRaw(k.Secret).Generate()
	if err != nil {
		return nil, err
	}
	if got := FromPrivateKey(pk).Public; !strings.EqualFold(got, k.Public) {
		return nil, errors.New("public key does not match secret")
	}

	return pk, nil
}

// String returns the public key only.
func (k KeyPair) String() string {
	return k.Public
}

// Generator generates ed25519 private keys.
type Generator interface {
	Generate() (ed25519.PrivateKey, error)
}

var (
	_ Generator = (*rawGenerator)(nil)
	_ Generator = (*randomGenerator)(nil)
	_ Generator = (*mnemonicGenerator)(nil)
)

// FromRaw returns a generator for a hex encoded private key. Both the 64 byte expanded form and the
// 32 byte seed are accepted.
func FromRaw(privateKey string) Generator {
	return &rawGenerator{privateKey: privateKey}
}

type rawGenerator struct {
	privateKey string
}

func (g *rawGenerator) Generate() (ed25519.PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(g.privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	switch len(b) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(b), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(b), nil
	default:
		return nil, fmt.Errorf("invalid key len: %d, must be %d or %d", len(b), ed25519.SeedSize, ed25519.PrivateKeySize)
	}
}

// Random returns a generator for fresh random keys.
func Random() Generator {
	return &randomGenerator{}
}

type randomGenerator struct{}

func (g *randomGenerator) Generate() (ed25519.PrivateKey, error) {
	seed := wallet.NewSeed()
	pk, err := wallet.SeedToPrivateKey(seed, "", false)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random private key: %w", err)
	}

	return pk, nil
}

// FromTONMnemonic returns a generator for the key of a native 24 word TON wallet mnemonic.
func FromTONMnemonic(phrase string) Generator {
	return &mnemonicGenerator{words: strings.Fields(phrase)}
}

type mnemonicGenerator struct {
	words []string
}

func (g *mnemonicGenerator) Generate() (ed25519.PrivateKey, error) {
	pk, err := wallet.SeedToPrivateKey(g.words, "", false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key from mnemonic: %w", err)
	}

	return pk, nil
}

// Generate runs gen and returns the resulting KeyPair.
func Generate(gen Generator) (KeyPair, error) {
	pk, err := gen.Generate()
	if err != nil {
		return KeyPair{}, err
	}

	return FromPrivateKey(pk), nil
}
