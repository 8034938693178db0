package ix

import "github.com/gagliardetto/solana-go"

// PDA derivation helpers. Same seeds always yield the same address, so
// callers can predict an account's location before anything exists on-chain.

// StateAddress derives a flaek state account: ("state", owner) for the
// owner's default state, ("state", owner, nameHash) for a named one.
func StateAddress(program, owner solana.PublicKey, nameHash []byte) (solana.PublicKey, error) {
	seeds := [][]byte{[]byte("state"), owner.Bytes()}
	if nameHash != nil {
		seeds = append(seeds, nameHash)
	}
	addr, _, err := solana.FindProgramAddress(seeds, program)
	return addr, err
}

// BufferAddress derives the delegation staging buffer for a state account,
// owned by the state's program.
func BufferAddress(program, state solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("buffer"), state.Bytes()}, program)
	return addr, err
}

// PermissionAddress derives the permission record guarding an account.
func PermissionAddress(permissionProgram, account solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("permission"), account.Bytes()}, permissionProgram)
	return addr, err
}

// DelegationRecordAddress derives the delegation record for an account under
// the delegation program.
func DelegationRecordAddress(delegationProgram, account solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("delegation"), account.Bytes()}, delegationProgram)
	return addr, err
}

// DelegationMetadataAddress derives the delegation metadata sibling of the
// delegation record.
func DelegationMetadataAddress(delegationProgram, account solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("delegation-metadata"), account.Bytes()}, delegationProgram)
	return addr, err
}

// UndelegateBufferAddress derives the buffer the delegation program uses
// while undelegating an account.
func UndelegateBufferAddress(delegationProgram, delegated solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("buffer"), delegated.Bytes()}, delegationProgram)
	return addr, err
}
