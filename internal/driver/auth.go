package driver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"resty.dev/v3"
)

// PER authentication against a TEE-fronted endpoint: an optional attestation
// probe, then a challenge/response handshake that trades a signed nonce for
// a bearer token. The token is appended as ?token= to both the RPC and
// event-stream endpoints.

type challengeResponse struct {
	Challenge string `json:"challenge"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// verifyIntegrity probes the TEE attestation endpoint. Any transport error,
// non-2xx status, or empty body fails the check; the caller aborts before
// signing anything.
func verifyIntegrity(ctx context.Context, client *resty.Client) error {
	res, err := client.R().SetContext(ctx).Get("/attestation")
	if err != nil {
		return fmt.Errorf("attestation probe: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("attestation probe: %s", res.Status())
	}
	if strings.TrimSpace(res.String()) == "" {
		return errors.New("attestation probe: empty response")
	}
	return nil
}

// authenticate performs the challenge/response handshake and returns the
// bearer token.
func authenticate(ctx context.Context, client *resty.Client, wallet solana.PublicKey, signer MessageSigner) (string, error) {
	var challenge challengeResponse
	res, err := client.R().
		SetContext(ctx).
		SetQueryParam("pubkey", wallet.String()).
		SetResult(&challenge).
		Get("/auth/challenge")
	if err != nil {
		return "", fmt.Errorf("fetch challenge: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("fetch challenge: %s", res.Status())
	}
	if challenge.Challenge == "" {
		return "", errors.New("fetch challenge: empty challenge")
	}

	signature, err := signer.SignMessage(ctx, []byte(challenge.Challenge))
	if err != nil {
		return "", fmt.Errorf("sign challenge: %w", err)
	}

	var token tokenResponse
	res, err = client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"pubkey":    wallet.String(),
			"signature": base64.StdEncoding.EncodeToString(signature),
		}).
		SetResult(&token).
		Post("/auth/token")
	if err != nil {
		return "", fmt.Errorf("exchange token: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("exchange token: %s", res.Status())
	}
	if token.Token == "" {
		return "", errors.New("exchange token: empty token")
	}
	return token.Token, nil
}
