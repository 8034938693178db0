// Package driver walks an ordered, context-resolved plan and turns each step
// into a signed, submitted, confirmed transaction. Steps run strictly in
// sequence: later steps may reference state produced by earlier ones, so
// nothing is pipelined. There are no retries; on any failure the caller
// receives the signatures accumulated so far plus the triggering error.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"resty.dev/v3"

	"github.com/flaek-labs/flaek-go/internal/graph"
	"github.com/flaek-labs/flaek-go/internal/ix"
	"github.com/flaek-labs/flaek-go/internal/netconfig"
)

// Mode selects the connection/authentication path.
type Mode string

const (
	// ModeER talks directly to an ephemeral rollup validator, no handshake.
	ModeER Mode = "er"
	// ModePER authenticates against a TEE-fronted endpoint before
	// submitting anything.
	ModePER Mode = "per"
)

// ChainClient is the transaction transport a run submits through.
type ChainClient interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	ConfirmSignature(ctx context.Context, sig solana.Signature) error
}

// Options configures one run.
type Options struct {
	Mode      Mode
	Validator string
	// VerifyIntegrity enables the TEE attestation probe in per mode.
	VerifyIntegrity bool
	Config          *netconfig.Config
	// OnLog receives the user-facing log stream, one line per call.
	OnLog func(message string)
	// NewChain overrides transport construction; tests use it to inject a
	// fake. Nil means an RPC client against the resolved endpoint.
	NewChain func(rpcURL string) ChainClient
}

// Result is the outcome of a run. On failure the partial signature list is
// still returned alongside the error so the caller can record exactly how
// much on-chain progress occurred.
type Result struct {
	Signatures []string
	// AuthToken is the per-mode session token, useful for follow-up
	// authenticated reads. Empty in er mode.
	AuthToken string
}

// Execute runs every step of the plan in order. The returned Result is
// non-nil even on error once execution has started.
func Execute(ctx context.Context, plan *graph.Plan, wallet Wallet, opts Options) (*Result, error) {
	if wallet == nil {
		return nil, &RunError{Code: WalletUnavailable, Err: errors.New("no wallet supplied")}
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = netconfig.Default()
	}

	result := &Result{Signatures: []string{}}

	rpcURL := cfg.ErRPCURL
	if opts.Mode == ModePER {
		signer, ok := wallet.(MessageSigner)
		if !ok {
			return nil, &RunError{Code: WalletCapabilityMissing,
				Err: errors.New("wallet does not support message signing (required for per auth)")}
		}

		client := resty.New().SetBaseURL(cfg.TeeRPCURL)
		defer client.Close()

		if opts.VerifyIntegrity {
			if err := verifyIntegrity(ctx, client); err != nil {
				return nil, &RunError{Code: IntegrityCheckFailed, Err: err}
			}
		}
		token, err := authenticate(ctx, client, wallet.Address(), signer)
		if err != nil {
			return nil, &RunError{Code: AuthFailed, Err: err}
		}
		result.AuthToken = token
		rpcURL = cfg.TeeRPCURL + "?token=" + token
	}

	chain := newRPCChain(rpcURL)
	if opts.NewChain != nil {
		chain = opts.NewChain(rpcURL)
	}

	params := ix.Params{
		Wallet:    wallet.Address(),
		Validator: opts.Validator,
		Config:    cfg,
	}
	if params.Validator == "" {
		params.Validator = cfg.DefaultValidator
	}

	log := opts.OnLog
	if log == nil {
		log = func(string) {}
	}

	for _, step := range plan.Steps {
		inst, err := ix.Synthesize(step, params)
		if err != nil {
			return result, err
		}
		log(fmt.Sprintf("Building %s", step.BlockID))

		sig, err := submitStep(ctx, chain, wallet, inst)
		if err != nil {
			return result, &RunError{Code: TransactionFailed, Step: step.NodeID, Err: err}
		}
		result.Signatures = append(result.Signatures, sig.String())
		log(fmt.Sprintf("Submitted %s: %s", step.BlockID, sig))
	}

	return result, nil
}

// submitStep wraps one instruction in a single-instruction transaction,
// stamps it with a fresh blockhash and the wallet as fee payer, signs,
// submits, and waits for confirmation.
func submitStep(ctx context.Context, chain ChainClient, wallet Wallet, inst *ix.Instruction) (solana.Signature, error) {
	blockhash, err := chain.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{inst},
		blockhash,
		solana.TransactionPayer(wallet.Address()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	var sig solana.Signature
	if sender, ok := wallet.(TransactionSender); ok {
		sig, err = sender.SignAndSend(ctx, tx)
		if err != nil {
			return solana.Signature{}, err
		}
	} else {
		if err := wallet.SignTransaction(ctx, tx); err != nil {
			return solana.Signature{}, err
		}
		sig, err = chain.SendTransaction(ctx, tx)
		if err != nil {
			return solana.Signature{}, err
		}
	}

	if err := chain.ConfirmSignature(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// rpcChain is the production ChainClient backed by a JSON-RPC endpoint.
type rpcChain struct {
	client *rpc.Client
}

func newRPCChain(rpcURL string) ChainClient {
	return &rpcChain{client: rpc.New(rpcURL)}
}

func (c *rpcChain) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Hash{}, err
	}
	return out.Value.Blockhash, nil
}

func (c *rpcChain) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return c.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
}

// ConfirmSignature polls the signature status until it reaches confirmed
// depth or the context is done.
func (c *rpcChain) ConfirmSignature(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		out, err := c.client.GetSignatureStatuses(ctx, false, sig)
		if err == nil && len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on-chain: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirm %s: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}
