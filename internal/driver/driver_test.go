package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaek-labs/flaek-go/internal/graph"
	"github.com/flaek-labs/flaek-go/internal/ix"
	"github.com/flaek-labs/flaek-go/internal/netconfig"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeChain struct {
	sent        int
	failSendAt  int // fail the nth submission (1-based), 0 = never
	confirmFail bool
}

func (c *fakeChain) LatestBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}

func (c *fakeChain) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	c.sent++
	if c.failSendAt != 0 && c.sent == c.failSendAt {
		return solana.Signature{}, errors.New("rpc rejected transaction")
	}
	var sig solana.Signature
	sig[0] = byte(c.sent)
	return sig, nil
}

func (c *fakeChain) ConfirmSignature(context.Context, solana.Signature) error {
	if c.confirmFail {
		return errors.New("confirmation timed out")
	}
	return nil
}

// txOnlyWallet strips the message-signing capability from a keypair wallet.
type txOnlyWallet struct {
	inner *KeypairWallet
}

func (w *txOnlyWallet) Address() solana.PublicKey { return w.inner.Address() }

func (w *txOnlyWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	return w.inner.SignTransaction(ctx, tx)
}

func newTestWallet(t *testing.T) *KeypairWallet {
	t.Helper()
	return NewKeypairWallet(solana.NewWallet().PrivateKey)
}

func topUpStep(nodeID string, amount any) graph.Step {
	return graph.Step{
		NodeID:  nodeID,
		BlockID: "mb_topup_escrow",
		Inputs: map[string]any{
			"escrow":           "7S3P4HxJpyyigGzodYwHtCxZyUQe9JiBMHyRWXArAaKv",
			"escrow_authority": "$wallet",
			"payer":            "$wallet",
			"amount":           amount,
		},
	}
}

func erOptions(chain ChainClient, logs *[]string) Options {
	return Options{
		Mode:   ModeER,
		Config: netconfig.Default(),
		OnLog: func(msg string) {
			if logs != nil {
				*logs = append(*logs, msg)
			}
		},
		NewChain: func(string) ChainClient { return chain },
	}
}

// =============================================================================
// Preconditions
// =============================================================================

func TestExecuteNoWallet(t *testing.T) {
	_, err := Execute(context.Background(), &graph.Plan{}, nil, Options{Mode: ModeER})

	re, ok := AsRunError(err)
	require.True(t, ok)
	assert.Equal(t, WalletUnavailable, re.Code)
}

func TestExecutePerRequiresMessageSigning(t *testing.T) {
	wallet := &txOnlyWallet{inner: newTestWallet(t)}
	plan := &graph.Plan{Steps: []graph.Step{topUpStep("a", float64(10))}}

	_, err := Execute(context.Background(), plan, wallet, Options{Mode: ModePER})

	re, ok := AsRunError(err)
	require.True(t, ok)
	assert.Equal(t, WalletCapabilityMissing, re.Code)
}

// =============================================================================
// Sequential Execution
// =============================================================================

func TestExecuteTwoStepsInOrder(t *testing.T) {
	chain := &fakeChain{}
	var logs []string
	plan := &graph.Plan{Steps: []graph.Step{
		topUpStep("a", float64(10)),
		{NodeID: "b", BlockID: "mb_magic_commit", Inputs: map[string]any{
			"accounts": []any{"$wallet"},
		}},
	}}

	result, err := Execute(context.Background(), plan, newTestWallet(t), erOptions(chain, &logs))
	require.NoError(t, err)

	require.Len(t, result.Signatures, 2)
	assert.Equal(t, 2, chain.sent)
	assert.Empty(t, result.AuthToken, "er mode carries no auth token")

	require.Len(t, logs, 4)
	assert.Equal(t, "Building mb_topup_escrow", logs[0])
	assert.Contains(t, logs[1], "Submitted mb_topup_escrow: ")
	assert.Equal(t, "Building mb_magic_commit", logs[2])
	assert.Contains(t, logs[3], "Submitted mb_magic_commit: ")
}

func TestExecuteFieldValidationAbortsWithPartialResult(t *testing.T) {
	chain := &fakeChain{}
	plan := &graph.Plan{Steps: []graph.Step{
		topUpStep("a", float64(10)),
		topUpStep("b", "not-a-number"),
		topUpStep("c", float64(30)),
	}}

	result, err := Execute(context.Background(), plan, newTestWallet(t), erOptions(chain, nil))
	require.Error(t, err)

	fe, ok := ix.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "amount", fe.Field)

	// Step 1 confirmed before the abort; step 3 never attempted.
	require.NotNil(t, result)
	assert.Len(t, result.Signatures, 1)
	assert.Equal(t, 1, chain.sent)
}

func TestExecuteUnsupportedBlockAborts(t *testing.T) {
	chain := &fakeChain{}
	plan := &graph.Plan{Steps: []graph.Step{
		{NodeID: "a", BlockID: "mystery_block"},
	}}

	result, err := Execute(context.Background(), plan, newTestWallet(t), erOptions(chain, nil))

	var ube *ix.UnsupportedBlockError
	require.ErrorAs(t, err, &ube)
	assert.Empty(t, result.Signatures)
	assert.Zero(t, chain.sent)
}

func TestExecuteSubmissionFailure(t *testing.T) {
	chain := &fakeChain{failSendAt: 2}
	plan := &graph.Plan{Steps: []graph.Step{
		topUpStep("a", float64(10)),
		topUpStep("b", float64(20)),
	}}

	result, err := Execute(context.Background(), plan, newTestWallet(t), erOptions(chain, nil))

	re, ok := AsRunError(err)
	require.True(t, ok)
	assert.Equal(t, TransactionFailed, re.Code)
	assert.Equal(t, "b", re.Step)
	assert.Len(t, result.Signatures, 1)
}

func TestExecuteConfirmationFailure(t *testing.T) {
	chain := &fakeChain{confirmFail: true}
	plan := &graph.Plan{Steps: []graph.Step{topUpStep("a", float64(10))}}

	result, err := Execute(context.Background(), plan, newTestWallet(t), erOptions(chain, nil))

	re, ok := AsRunError(err)
	require.True(t, ok)
	assert.Equal(t, TransactionFailed, re.Code)
	assert.Empty(t, result.Signatures, "unconfirmed signature is not accumulated")
}

// =============================================================================
// PER Authentication
// =============================================================================

func newTeeServer(t *testing.T, attestationStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/attestation", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(attestationStatus)
		fmt.Fprint(w, `{"quote":"ok"}`)
	})
	mux.HandleFunc("/auth/challenge", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pubkey") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"challenge": "nonce-1"})
	})
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["pubkey"] == "" || body["signature"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestExecutePerHandshake(t *testing.T) {
	srv := newTeeServer(t, http.StatusOK)
	chain := &fakeChain{}
	cfg := netconfig.Default()
	cfg.TeeRPCURL = srv.URL

	var gotRPCURL string
	opts := Options{
		Mode:            ModePER,
		VerifyIntegrity: true,
		Config:          cfg,
		NewChain: func(rpcURL string) ChainClient {
			gotRPCURL = rpcURL
			return chain
		},
	}
	plan := &graph.Plan{Steps: []graph.Step{topUpStep("a", float64(10))}}

	result, err := Execute(context.Background(), plan, newTestWallet(t), opts)
	require.NoError(t, err)

	assert.Equal(t, "tok-123", result.AuthToken)
	assert.Equal(t, srv.URL+"?token=tok-123", gotRPCURL)
	assert.Len(t, result.Signatures, 1)
}

func TestExecuteIntegrityFailsClosed(t *testing.T) {
	srv := newTeeServer(t, http.StatusInternalServerError)
	chain := &fakeChain{}
	cfg := netconfig.Default()
	cfg.TeeRPCURL = srv.URL

	opts := Options{
		Mode:            ModePER,
		VerifyIntegrity: true,
		Config:          cfg,
		NewChain:        func(string) ChainClient { return chain },
	}
	plan := &graph.Plan{Steps: []graph.Step{topUpStep("a", float64(10))}}

	_, err := Execute(context.Background(), plan, newTestWallet(t), opts)

	re, ok := AsRunError(err)
	require.True(t, ok)
	assert.Equal(t, IntegrityCheckFailed, re.Code)
	assert.Zero(t, chain.sent, "nothing is signed or submitted after a failed probe")
}
