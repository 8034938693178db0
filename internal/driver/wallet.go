package driver

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Wallet is the signing identity a run executes under. Address lookup and
// transaction signing are the minimum surface; the optional capabilities
// below are discovered by interface assertion.
type Wallet interface {
	Address() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// MessageSigner is the optional capability the per mode requires: signing a
// raw challenge nonce outside any transaction.
type MessageSigner interface {
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// TransactionSender is the optional combined sign-and-submit capability.
// Wallets exposing it submit through their own transport; the driver then
// only confirms the returned signature.
type TransactionSender interface {
	SignAndSend(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// KeypairWallet signs with a local private key. It supports message signing,
// so it works in both execution modes.
type KeypairWallet struct {
	key solana.PrivateKey
}

// NewKeypairWallet wraps an in-memory private key.
func NewKeypairWallet(key solana.PrivateKey) *KeypairWallet {
	return &KeypairWallet{key: key}
}

// LoadKeypairWallet reads a solana keygen JSON file.
func LoadKeypairWallet(path string) (*KeypairWallet, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", path, err)
	}
	return &KeypairWallet{key: key}, nil
}

// Address implements Wallet.
func (w *KeypairWallet) Address() solana.PublicKey { return w.key.PublicKey() }

// SignTransaction implements Wallet.
func (w *KeypairWallet) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}

// SignMessage implements MessageSigner.
func (w *KeypairWallet) SignMessage(_ context.Context, message []byte) ([]byte, error) {
	sig, err := w.key.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	return sig[:], nil
}
