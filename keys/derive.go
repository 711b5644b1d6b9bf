package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cosmos/go-bip39"
)

// coinType is the registered SLIP-44 coin type of TON.
const coinType uint32 = 396

// ErrInvalidMnemonic is returned when a phrase fails BIP39 checksum validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// NewMnemonic returns a fresh 12 word BIP39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}

	return bip39.NewMnemonic(entropy)
}

// DerivationPath returns the path of the i-th key of a set, m/44'/396'/0'/0/i.
func DerivationPath(i uint32) string {
	return fmt.Sprintf("m/44'/%d'/0'/0/%d", coinType, i)
}

// derivationIndexes returns DerivationPath(i) as BIP32 child indexes.
func derivationIndexes(i uint32) []uint32 {
	return []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + coinType,
		hdkeychain.HardenedKeyStart,
		0,
		i,
	}
}

// DeriveSet derives count keypairs from a BIP39 mnemonic along DerivationPath. Each key is derived
// with BIP32 and its 32 byte private key is used as the ed25519 seed.
func DeriveSet(mnemonic string, count int) ([]KeyPair, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	if count < 0 {
		return nil, fmt.Errorf("invalid key count %d", count)
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	out := make([]KeyPair, count)
	for i := range out {
		key, err := deriveKey(master, uint32(i)) //nolint:gosec // count is bounded by the caller
		if err != nil {
			return nil, err
		}
		out[i] = FromPrivateKey(ed25519.NewKeyFromSeed(key))
	}

	return out, nil
}

// deriveKey returns the private key at DerivationPath(i) below master.
func deriveKey(master *hdkeychain.ExtendedKey, i uint32) ([]byte, error) {
	child := master
	for _, index := range derivationIndexes(i) {
		var err error
		if child, err = child.Derive(index); err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", DerivationPath(i), err)
		}
	}

	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive %s: %w", DerivationPath(i), err)
	}

	return priv.Serialize(), nil
}
