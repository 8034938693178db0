// Package ix maps resolved plan steps to signable ledger instructions. Each
// block id has one synthesis arm that resolves its accounts (wallet
// sentinels, PDA derivation), assembles the ordered account list with
// signer/writable flags, and serializes the binary payload.
//
// Instructions are produced fresh per step at execution time and never
// cached: account resolution can depend on the live wallet identity.
package ix

import (
	"github.com/gagliardetto/solana-go"

	"github.com/flaek-labs/flaek-go/internal/graph"
	"github.com/flaek-labs/flaek-go/internal/netconfig"
)

// Params is the per-run execution context a step is synthesized against.
type Params struct {
	// Wallet is the active wallet's address; it substitutes for the
	// $wallet/$payer/$authority sentinels.
	Wallet solana.PublicKey
	// Validator optionally names the default rollup validator used when a
	// step does not pin one.
	Validator string
	Config    *netconfig.Config
}

// Instruction is one fully resolved ledger instruction.
type Instruction struct {
	Program solana.PublicKey
	Keys    []*solana.AccountMeta
	Payload []byte
}

// ProgramID implements solana.Instruction.
func (ix *Instruction) ProgramID() solana.PublicKey { return ix.Program }

// Accounts implements solana.Instruction.
func (ix *Instruction) Accounts() []*solana.AccountMeta { return ix.Keys }

// Data implements solana.Instruction.
func (ix *Instruction) Data() ([]byte, error) { return ix.Payload, nil }

// Synthesize builds the instruction for one plan step. A block id without a
// synthesis arm yields UnsupportedBlockError; bad inputs yield FieldError.
func Synthesize(step graph.Step, params Params) (*Instruction, error) {
	b := &builder{block: step.BlockID, inputs: step.Inputs, params: params}
	if b.inputs == nil {
		b.inputs = map[string]any{}
	}

	switch step.BlockID {
	case "flaek_create_state":
		return b.flaekCreateState()
	case "flaek_update_state":
		return b.flaekWriteState(discUpdateState)
	case "flaek_append_state":
		return b.flaekWriteState(discAppendState)
	case "flaek_close_state":
		return b.flaekCloseState()
	case "flaek_delegate_state":
		return b.flaekDelegateState()
	case "flaek_create_permission":
		return b.flaekCreatePermission()
	case "flaek_update_permission":
		return b.flaekUpdatePermission()
	case "flaek_commit_permission":
		return b.flaekCommitPermission(discCommitPermission)
	case "flaek_commit_undelegate_permission":
		return b.flaekCommitPermission(discCommitUndelegatePermission)
	case "flaek_close_permission":
		return b.flaekClosePermission()
	case "mb_create_permission":
		return b.mbCreatePermission()
	case "mb_update_permission":
		return b.mbUpdatePermission()
	case "mb_delegate_permission":
		return b.mbDelegatePermission()
	case "mb_commit_permission":
		return b.mbCommitPermission(mbDiscCommitPermission)
	case "mb_commit_undelegate_permission":
		return b.mbCommitPermission(mbDiscCommitUndelegatePermission)
	case "mb_undelegate_permission":
		return b.mbUndelegatePermission()
	case "mb_close_permission":
		return b.mbClosePermission()
	case "mb_delegate_pda":
		return b.mbDelegatePDA()
	case "mb_topup_escrow":
		return b.mbTopUpEscrow()
	case "mb_close_escrow":
		return b.mbCloseEscrow()
	case "mb_magic_commit":
		return b.mbMagicCommit(magicCommitData)
	case "mb_magic_commit_undelegate":
		return b.mbMagicCommit(magicCommitUndelegateData)
	case "mb_program_instruction":
		return b.mbProgramInstruction()
	default:
		return nil, &UnsupportedBlockError{Block: step.BlockID}
	}
}
