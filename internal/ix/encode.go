package ix

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Member is one entry of a permission member list: an address plus its
// permission flags byte.
type Member struct {
	Pubkey solana.PublicKey
	Flags  byte
}

// Anchor-generated discriminators for the flaek program, taken verbatim from
// its IDL. The permission-program methods derive theirs at init instead.
var (
	discCreateState                = []byte{214, 211, 209, 79, 107, 105, 247, 222}
	discUpdateState                = []byte{135, 112, 215, 75, 247, 185, 53, 176}
	discAppendState                = []byte{117, 27, 130, 11, 65, 184, 88, 92}
	discCloseState                 = []byte{25, 1, 184, 101, 200, 245, 210, 246}
	discDelegateState              = []byte{47, 115, 98, 67, 249, 81, 123, 119}
	discCreatePermission           = []byte{190, 182, 26, 164, 156, 221, 8, 0}
	discUpdatePermission           = []byte{1, 120, 111, 126, 237, 61, 41, 61}
	discCommitPermission           = []byte{173, 8, 171, 138, 163, 171, 62, 223}
	discCommitUndelegatePermission = []byte{67, 87, 223, 139, 187, 5, 93, 241}
	discClosePermission            = []byte{17, 241, 212, 43, 238, 201, 203, 210}
)

var (
	mbDiscCreatePermission           = anchorDiscriminator("create_permission")
	mbDiscUpdatePermission           = anchorDiscriminator("update_permission")
	mbDiscDelegatePermission         = anchorDiscriminator("delegate_permission")
	mbDiscCommitPermission           = anchorDiscriminator("commit_permission")
	mbDiscCommitUndelegatePermission = anchorDiscriminator("commit_and_undelegate_permission")
	mbDiscClosePermission            = anchorDiscriminator("close_permission")
	mbDiscUndelegatePermission       = anchorDiscriminator("undelegate_permission")
	mbDiscDelegate                   = anchorDiscriminator("delegate")
	mbDiscTopUpEscrow                = anchorDiscriminator("top_up_escrow")
	mbDiscCloseEscrow                = anchorDiscriminator("close_escrow")
)

// The magic program dispatches on a u32 little-endian opcode rather than an
// 8-byte discriminator.
var (
	magicCommitData           = []byte{1, 0, 0, 0}
	magicCommitUndelegateData = []byte{2, 0, 0, 0}
)

// anchorDiscriminator derives the 8-byte method discriminator anchor-style
// programs use: sha256("global:<method>") truncated to 8 bytes. Derived once
// per method, independent of inputs.
func anchorDiscriminator(method string) []byte {
	sum := sha256.Sum256([]byte("global:" + method))
	return sum[:8]
}

func appendU32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func appendU64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

// appendVec writes a u32 little-endian length followed by the raw bytes.
func appendVec(buf, b []byte) []byte {
	buf = appendU32(buf, uint32(len(b)))
	return append(buf, b...)
}

// appendOptionPubkey writes a presence byte, then the 32 key bytes when set.
func appendOptionPubkey(buf []byte, pk *solana.PublicKey) []byte {
	if pk == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return append(buf, pk.Bytes()...)
}

// appendAccountType writes the flaek AccountType enum: tag 0 plus the owner
// key for static accounts, tag 1 plus owner and name hash for keyed ones.
func appendAccountType(buf []byte, owner solana.PublicKey, nameHash []byte) []byte {
	if nameHash == nil {
		buf = append(buf, 0)
		return append(buf, owner.Bytes()...)
	}
	buf = append(buf, 1)
	buf = append(buf, owner.Bytes()...)
	return append(buf, nameHash...)
}

// appendMembers writes an optional member vector: a zero byte when empty,
// otherwise presence byte, u32 count, then flags(1) ++ pubkey(32) per member.
func appendMembers(buf []byte, members []Member) []byte {
	if len(members) == 0 {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	buf = appendU32(buf, uint32(len(members)))
	for _, m := range members {
		buf = append(buf, m.Flags)
		buf = append(buf, m.Pubkey.Bytes()...)
	}
	return buf
}

// appendSeeds writes an optional seed list: presence byte, u32 count, then
// each seed as a length-prefixed byte vector.
func appendSeeds(buf []byte, seeds [][]byte) []byte {
	if len(seeds) == 0 {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	buf = appendU32(buf, uint32(len(seeds)))
	for _, s := range seeds {
		buf = appendVec(buf, s)
	}
	return buf
}

var (
	base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
	hex64Pattern  = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
)

// decodeDataValue turns an instruction-data input into raw bytes. Strings are
// checked for an explicit "base64:" prefix, then "hex:", then a bare value
// that both looks like and decodes as base64, else raw UTF-8. Non-string
// values serialize to their JSON text.
func decodeDataValue(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return decodeDataString(v)
	case float64:
		return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case bool:
		return []byte(strconv.FormatBool(v)), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("not serializable: %w", err)
		}
		return b, nil
	}
}

func decodeDataString(s string) ([]byte, error) {
	switch {
	case s == "":
		return nil, nil
	case strings.HasPrefix(s, "base64:"):
		b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, "base64:"))
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
		return b, nil
	case strings.HasPrefix(s, "hex:"):
		b, err := hex.DecodeString(strings.TrimPrefix(s, "hex:"))
		if err != nil {
			return nil, fmt.Errorf("invalid hex: %w", err)
		}
		return b, nil
	case base64Pattern.MatchString(s):
		// Bare base64 heuristic. Values matching the charset but failing to
		// decode (bad padding) fall through to raw UTF-8.
		if b, err := base64.StdEncoding.DecodeString(s); err == nil {
			return b, nil
		}
		return []byte(s), nil
	default:
		return []byte(s), nil
	}
}

// decodeHash32 accepts a 32-byte hash as a prefixed base64/hex string, a bare
// 64-char hex string, bare base64, or a JSON array of byte values.
func decodeHash32(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		var (
			b   []byte
			err error
		)
		switch {
		case strings.HasPrefix(v, "base64:"):
			b, err = base64.StdEncoding.DecodeString(strings.TrimPrefix(v, "base64:"))
		case strings.HasPrefix(v, "hex:"):
			b, err = hex.DecodeString(strings.TrimPrefix(v, "hex:"))
		case hex64Pattern.MatchString(v):
			b, err = hex.DecodeString(v)
		case base64Pattern.MatchString(v):
			b, err = base64.StdEncoding.DecodeString(v)
		default:
			return nil, fmt.Errorf("must be a 32-byte hex or base64 string")
		}
		if err != nil {
			return nil, err
		}
		if len(b) != 32 {
			return nil, fmt.Errorf("must be 32 bytes, got %d", len(b))
		}
		return b, nil
	case []any:
		if len(v) != 32 {
			return nil, fmt.Errorf("must be 32 bytes, got %d", len(v))
		}
		b := make([]byte, 32)
		for i, elem := range v {
			n, ok := elem.(float64)
			if !ok || n < 0 || n > 255 {
				return nil, fmt.Errorf("byte %d out of range", i)
			}
			b[i] = byte(n)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("must be a 32-byte hex or base64 string")
	}
}

// decodeSeed turns one PDA seed input into raw bytes: prefixed base64/hex
// strings decode, other strings are UTF-8, arrays are byte values.
func decodeSeed(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		switch {
		case strings.HasPrefix(v, "base64:"):
			return base64.StdEncoding.DecodeString(strings.TrimPrefix(v, "base64:"))
		case strings.HasPrefix(v, "hex:"):
			return hex.DecodeString(strings.TrimPrefix(v, "hex:"))
		default:
			return []byte(v), nil
		}
	case []any:
		b := make([]byte, len(v))
		for i, elem := range v {
			n, ok := elem.(float64)
			if !ok || n < 0 || n > 255 {
				return nil, fmt.Errorf("seed byte %d out of range", i)
			}
			b[i] = byte(n)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("seed must be a string or byte array")
	}
}
