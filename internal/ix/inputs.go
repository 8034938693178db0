package ix

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// addressSource classifies how an address-typed input names its account:
// either a literal base58 value or one of the wallet sentinels that stand in
// for the active wallet's own address.
type addressSource int

const (
	addressLiteral addressSource = iota
	addressWallet
)

func classifyAddress(s string) addressSource {
	switch strings.ToLower(s) {
	case "$wallet", "$payer", "$authority":
		return addressWallet
	}
	return addressLiteral
}

// builder carries one step's inputs plus the execution parameters through
// the per-block synthesis arms, so every parse failure can name both the
// block and the offending field.
type builder struct {
	block  string
	inputs map[string]any
	params Params
}

func (b *builder) fail(field, format string, args ...any) error {
	return &FieldError{Block: b.block, Field: field, Message: fmt.Sprintf(format, args...)}
}

// input returns the first non-empty value among the given field names.
// Several blocks accept aliases (name_hash/nameHash, seeds/pda_seeds).
func (b *builder) input(names ...string) any {
	for _, name := range names {
		v, ok := b.inputs[name]
		if !ok || v == nil || v == "" {
			continue
		}
		return v
	}
	return nil
}

// pubkey parses a required address input. Wallet sentinels resolve to the
// active wallet.
func (b *builder) pubkey(field string, value any) (solana.PublicKey, error) {
	s, ok := value.(string)
	if !ok || s == "" {
		return solana.PublicKey{}, b.fail(field, "is required")
	}
	if classifyAddress(s) == addressWallet {
		return b.params.Wallet, nil
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, b.fail(field, "malformed address %q", s)
	}
	return pk, nil
}

// pubkeyOrWallet parses an address input that defaults to the wallet when
// absent.
func (b *builder) pubkeyOrWallet(field string, value any) (solana.PublicKey, error) {
	if value == nil {
		return b.params.Wallet, nil
	}
	return b.pubkey(field, value)
}

func (b *builder) optionalPubkey(field string, value any) (*solana.PublicKey, error) {
	if value == nil {
		return nil, nil
	}
	pk, err := b.pubkey(field, value)
	if err != nil {
		return nil, err
	}
	return &pk, nil
}

// configPubkey parses an address from the network configuration. These are
// deployment errors rather than per-step input mistakes, but they surface
// the same way so the caller sees which block tripped over them.
func (b *builder) configPubkey(field, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, b.fail(field, "not configured")
	}
	pk, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, b.fail(field, "malformed address %q", value)
	}
	return pk, nil
}

// validator resolves the optional validator address: the step input wins,
// then the run-level default, else none.
func (b *builder) validator() (*solana.PublicKey, error) {
	if v := b.input("validator"); v != nil {
		return b.optionalPubkey("validator", v)
	}
	if b.params.Validator == "" {
		return nil, nil
	}
	return b.optionalPubkey("validator", b.params.Validator)
}

// signerPubkey parses an address that may carry an explicit signer flag,
// either as [address, isSigner], as {pubkey, isSigner}, or via a companion
// <field>_is_signer input. Bare addresses take the block's default.
func (b *builder) signerPubkey(field string, value any, defaultSigner bool) (solana.PublicKey, bool, error) {
	signer := defaultSigner
	if flag, ok := b.inputs[field+"_is_signer"].(bool); ok {
		signer = flag
	}

	switch v := value.(type) {
	case []any:
		if len(v) >= 2 {
			pk, err := b.pubkey(field, v[0])
			if err != nil {
				return solana.PublicKey{}, false, err
			}
			flag, _ := v[1].(bool)
			return pk, flag, nil
		}
		return solana.PublicKey{}, false, b.fail(field, "expected [address, isSigner]")
	case map[string]any:
		pk, err := b.pubkey(field, v["pubkey"])
		if err != nil {
			return solana.PublicKey{}, false, err
		}
		if flag, ok := v["isSigner"].(bool); ok {
			signer = flag
		} else if flag, ok := v["signer"].(bool); ok {
			signer = flag
		}
		return pk, signer, nil
	default:
		pk, err := b.pubkeyOrWallet(field, value)
		if err != nil {
			return solana.PublicKey{}, false, err
		}
		return pk, signer, nil
	}
}

// members parses an optional permission member list. Entries may be bare
// addresses or {pubkey, flags} objects.
func (b *builder) members(field string, value any) ([]Member, error) {
	if value == nil {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, b.fail(field, "must be an array")
	}
	members := make([]Member, 0, len(list))
	for i, entry := range list {
		var (
			addr  any
			flags float64
		)
		switch e := entry.(type) {
		case map[string]any:
			addr = e["pubkey"]
			if addr == nil {
				addr = e["key"]
			}
			if f, ok := e["flags"].(float64); ok {
				flags = f
			} else if f, ok := e["flag"].(float64); ok {
				flags = f
			}
		default:
			addr = entry
		}
		pk, err := b.pubkey(fmt.Sprintf("%s[%d]", field, i), addr)
		if err != nil {
			return nil, err
		}
		if flags < 0 || flags > 255 {
			return nil, b.fail(fmt.Sprintf("%s[%d]", field, i), "flags out of range")
		}
		members = append(members, Member{Pubkey: pk, Flags: byte(flags)})
	}
	return members, nil
}

// pubkeyList parses a required non-empty list of addresses.
func (b *builder) pubkeyList(field string, value any) ([]solana.PublicKey, error) {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return nil, b.fail(field, "is required")
	}
	keys := make([]solana.PublicKey, 0, len(list))
	for i, entry := range list {
		pk, err := b.pubkey(fmt.Sprintf("%s[%d]", field, i), entry)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk)
	}
	return keys, nil
}

// accountMetas parses an explicit account list for raw program instructions.
// Entries may be bare addresses (read-only non-signers) or objects carrying
// pubkey/address plus isSigner/isWritable flags.
func (b *builder) accountMetas(field string, value any) ([]*solana.AccountMeta, error) {
	if value == nil {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, b.fail(field, "must be an array")
	}
	metas := make([]*solana.AccountMeta, 0, len(list))
	for i, entry := range list {
		label := fmt.Sprintf("%s[%d]", field, i)
		switch e := entry.(type) {
		case string:
			pk, err := b.pubkey(label, e)
			if err != nil {
				return nil, err
			}
			metas = append(metas, solana.NewAccountMeta(pk, false, false))
		case map[string]any:
			addr := e["pubkey"]
			if addr == nil {
				addr = e["address"]
			}
			pk, err := b.pubkey(label, addr)
			if err != nil {
				return nil, err
			}
			signer := boolField(e, "isSigner", "signer")
			writable := boolField(e, "isWritable", "writable")
			metas = append(metas, solana.NewAccountMeta(pk, writable, signer))
		default:
			return nil, b.fail(label, "expected address or account object")
		}
	}
	return metas, nil
}

func boolField(m map[string]any, names ...string) bool {
	for _, name := range names {
		if v, ok := m[name].(bool); ok {
			return v
		}
	}
	return false
}

// number parses a required numeric input; JSON numbers and numeric strings
// both qualify.
func (b *builder) number(field string, value any) (float64, error) {
	n, ok := asNumber(value)
	if !ok {
		return 0, b.fail(field, "must be a number")
	}
	return n, nil
}

// optionalNumber parses a numeric input that may be absent; non-numeric
// values are treated as absent rather than rejected.
func (b *builder) optionalNumber(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	return asNumber(value)
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// hash32 parses a required 32-byte hash input.
func (b *builder) hash32(field string, value any) ([]byte, error) {
	if value == nil {
		return nil, b.fail(field, "is required")
	}
	h, err := decodeHash32(value)
	if err != nil {
		return nil, b.fail(field, "%v", err)
	}
	return h, nil
}

// optionalHash32 parses a 32-byte hash that may be absent.
func (b *builder) optionalHash32(field string, value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return b.hash32(field, value)
}

// data parses an instruction-data input into raw bytes.
func (b *builder) data(field string, value any) ([]byte, error) {
	d, err := decodeDataValue(value)
	if err != nil {
		return nil, b.fail(field, "%v", err)
	}
	return d, nil
}

// seeds parses an optional PDA seed list.
func (b *builder) seeds(field string, value any) ([][]byte, error) {
	if value == nil {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, b.fail(field, "must be an array")
	}
	seeds := make([][]byte, 0, len(list))
	for i, entry := range list {
		s, err := decodeSeed(entry)
		if err != nil {
			return nil, b.fail(fmt.Sprintf("%s[%d]", field, i), "%v", err)
		}
		seeds = append(seeds, s)
	}
	return seeds, nil
}
