package ix

import "github.com/gagliardetto/solana-go"

// Synthesis arms that talk to the MagicBlock programs directly: the
// permission program, the delegation program, and the magic program.

func (b *builder) mbCreatePermission() (*Instruction, error) {
	permissionProgram, err := b.configPubkey("permission_program_id", b.params.Config.PermissionProgramID)
	if err != nil {
		return nil, err
	}
	permissionedAccount, err := b.pubkeyOrWallet("permissioned_account", b.input("permissioned_account"))
	if err != nil {
		return nil, err
	}
	payer, err := b.pubkeyOrWallet("payer", b.input("payer"))
	if err != nil {
		return nil, err
	}
	members, err := b.members("members", b.inputs["members"])
	if err != nil {
		return nil, err
	}
	permission, err := PermissionAddress(permissionProgram, permissionedAccount)
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, mbDiscCreatePermission...)
	payload = appendMembers(payload, members)

	return &Instruction{
		Program: permissionProgram,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(permission, true, false),
			solana.NewAccountMeta(permissionedAccount, false, false),
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		Payload: payload,
	}, nil
}

func (b *builder) mbUpdatePermission() (*Instruction, error) {
	permissionProgram, err := b.configPubkey("permission_program_id", b.params.Config.PermissionProgramID)
	if err != nil {
		return nil, err
	}
	authority, authoritySigns, err := b.signerPubkey("authority", b.input("authority"), true)
	if err != nil {
		return nil, err
	}
	permissionedAccount, accountSigns, err := b.signerPubkey("permissioned_account", b.input("permissioned_account"), false)
	if err != nil {
		return nil, err
	}
	members, err := b.members("members", b.inputs["members"])
	if err != nil {
		return nil, err
	}
	permission, err := PermissionAddress(permissionProgram, permissionedAccount)
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, mbDiscUpdatePermission...)
	payload = appendMembers(payload, members)

	return &Instruction{
		Program: permissionProgram,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(permission, true, false),
			solana.NewAccountMeta(permissionedAccount, false, accountSigns),
			solana.NewAccountMeta(authority, false, authoritySigns),
		},
		Payload: payload,
	}, nil
}

func (b *builder) mbDelegatePermission() (*Instruction, error) {
	permissionProgram, err := b.configPubkey("permission_program_id", b.params.Config.PermissionProgramID)
	if err != nil {
		return nil, err
	}
	delegationProgram, err := b.configPubkey("delegation_program_id", b.params.Config.DelegationProgramID)
	if err != nil {
		return nil, err
	}
	payer, err := b.pubkeyOrWallet("payer", b.input("payer"))
	if err != nil {
		return nil, err
	}
	authority, authoritySigns, err := b.signerPubkey("authority", b.input("authority"), true)
	if err != nil {
		return nil, err
	}
	permissionedAccount, accountSigns, err := b.signerPubkey("permissioned_account", b.input("permissioned_account"), false)
	if err != nil {
		return nil, err
	}
	ownerProgram := permissionProgram
	if v := b.input("owner_program"); v != nil {
		ownerProgram, err = b.pubkey("owner_program", v)
		if err != nil {
			return nil, err
		}
	}
	validator, err := b.validator()
	if err != nil {
		return nil, err
	}

	permission, err := PermissionAddress(permissionProgram, permissionedAccount)
	if err != nil {
		return nil, err
	}
	buffer, err := BufferAddress(permissionProgram, permission)
	if err != nil {
		return nil, err
	}
	record, err := DelegationRecordAddress(delegationProgram, permission)
	if err != nil {
		return nil, err
	}
	metadata, err := DelegationMetadataAddress(delegationProgram, permission)
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, mbDiscDelegatePermission...)
	payload = appendOptionPubkey(payload, validator)

	return &Instruction{
		Program: permissionProgram,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(authority, false, authoritySigns),
			solana.NewAccountMeta(permissionedAccount, false, accountSigns),
			solana.NewAccountMeta(permission, true, false),
			solana.NewAccountMeta(ownerProgram, false, false),
			solana.NewAccountMeta(buffer, true, false),
			solana.NewAccountMeta(record, true, false),
			solana.NewAccountMeta(metadata, true, false),
			solana.NewAccountMeta(delegationProgram, false, false),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		Payload: payload,
	}, nil
}

// mbCommitPermission covers commit and commit-and-undelegate against a
// delegated permission record.
func (b *builder) mbCommitPermission(disc []byte) (*Instruction, error) {
	permissionProgram, err := b.configPubkey("permission_program_id", b.params.Config.PermissionProgramID)
	if err != nil {
		return nil, err
	}
	magicProgram, err := b.configPubkey("magic_program_id", b.params.Config.MagicProgramID)
	if err != nil {
		return nil, err
	}
	magicContext, err := b.configPubkey("magic_context_id", b.params.Config.MagicContextID)
	if err != nil {
		return nil, err
	}
	authority, authoritySigns, err := b.signerPubkey("authority", b.input("authority"), true)
	if err != nil {
		return nil, err
	}
	permissionedAccount, accountSigns, err := b.signerPubkey("permissioned_account", b.input("permissioned_account"), false)
	if err != nil {
		return nil, err
	}
	permission, err := PermissionAddress(permissionProgram, permissionedAccount)
	if err != nil {
		return nil, err
	}

	return &Instruction{
		Program: permissionProgram,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(authority, false, authoritySigns),
			solana.NewAccountMeta(permissionedAccount, false, accountSigns),
			solana.NewAccountMeta(permission, true, false),
			solana.NewAccountMeta(magicProgram, false, false),
			solana.NewAccountMeta(magicContext, true, false),
		},
		Payload: append([]byte{}, disc...),
	}, nil
}

func (b *builder) mbClosePermission() (*Instruction, error) {
	permissionProgram, err := b.configPubkey("permission_program_id", b.params.Config.PermissionProgramID)
	if err != nil {
		return nil, err
	}
	payer, err := b.pubkeyOrWallet("payer", b.input("payer"))
	if err != nil {
		return nil, err
	}
	authority, authoritySigns, err := b.signerPubkey("authority", b.input("authority"), true)
	if err != nil {
		return nil, err
	}
	permissionedAccount, accountSigns, err := b.signerPubkey("permissioned_account", b.input("permissioned_account"), false)
	if err != nil {
		return nil, err
	}
	permission, err := PermissionAddress(permissionProgram, permissionedAccount)
	if err != nil {
		return nil, err
	}

	return &Instruction{
		Program: permissionProgram,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(authority, true, authoritySigns),
			solana.NewAccountMeta(permissionedAccount, false, accountSigns),
			solana.NewAccountMeta(permission, true, false),
		},
		Payload: append([]byte{}, mbDiscClosePermission...),
	}, nil
}

func (b *builder) mbUndelegatePermission() (*Instruction, error) {
	permissionProgram, err := b.configPubkey("permission_program_id", b.params.Config.PermissionProgramID)
	if err != nil {
		return nil, err
	}
	delegationProgram, err := b.configPubkey("delegation_program_id", b.params.Config.DelegationProgramID)
	if err != nil {
		return nil, err
	}

	// The delegated permission is named directly or derived from the
	// permissioned account; one of the two must be present.
	var delegatedPermission solana.PublicKey
	switch {
	case b.input("permission") != nil:
		delegatedPermission, err = b.pubkey("permission", b.input("permission"))
	case b.input("permissioned_account") != nil:
		var account solana.PublicKey
		account, err = b.pubkey("permissioned_account", b.input("permissioned_account"))
		if err == nil {
			delegatedPermission, err = PermissionAddress(permissionProgram, account)
		}
	default:
		err = b.fail("permission", "permission or permissioned_account is required")
	}
	if err != nil {
		return nil, err
	}

	validator, err := b.validator()
	if err != nil {
		return nil, err
	}
	if validator == nil {
		return nil, b.fail("validator", "is required")
	}

	delegationBuffer, err := b.optionalPubkey("delegation_buffer", b.input("delegation_buffer"))
	if err != nil {
		return nil, err
	}
	if delegationBuffer == nil {
		buf, err := UndelegateBufferAddress(delegationProgram, delegatedPermission)
		if err != nil {
			return nil, err
		}
		delegationBuffer = &buf
	}

	seeds, err := b.seeds("pda_seeds", b.input("pda_seeds", "seeds"))
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, mbDiscUndelegatePermission...)
	payload = appendSeeds(payload, seeds)

	return &Instruction{
		Program: permissionProgram,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(*validator, true, true),
			solana.NewAccountMeta(delegatedPermission, true, false),
			solana.NewAccountMeta(*delegationBuffer, true, false),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		Payload: payload,
	}, nil
}

func (b *builder) mbDelegatePDA() (*Instruction, error) {
	delegationProgram, err := b.configPubkey("delegation_program_id", b.params.Config.DelegationProgramID)
	if err != nil {
		return nil, err
	}
	payer, err := b.pubkeyOrWallet("payer", b.input("payer"))
	if err != nil {
		return nil, err
	}
	delegatedAccount, err := b.pubkey("delegated_account", b.input("delegated_account"))
	if err != nil {
		return nil, err
	}
	ownerProgram, err := b.pubkey("owner_program", b.input("owner_program"))
	if err != nil {
		return nil, err
	}
	validator, err := b.validator()
	if err != nil {
		return nil, err
	}
	seeds, err := b.seeds("seeds", b.input("seeds", "pda_seeds"))
	if err != nil {
		return nil, err
	}
	commitFrequencyMs, hasFrequency := b.optionalNumber(b.inputs["commit_frequency_ms"])

	buffer, err := BufferAddress(ownerProgram, delegatedAccount)
	if err != nil {
		return nil, err
	}
	record, err := DelegationRecordAddress(delegationProgram, delegatedAccount)
	if err != nil {
		return nil, err
	}
	metadata, err := DelegationMetadataAddress(delegationProgram, delegatedAccount)
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, mbDiscDelegate...)
	if hasFrequency {
		payload = append(payload, 1)
		payload = appendU32(payload, uint32(commitFrequencyMs))
	} else {
		payload = append(payload, 0)
	}
	payload = appendSeeds(payload, seeds)
	payload = appendOptionPubkey(payload, validator)

	return &Instruction{
		Program: delegationProgram,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(delegatedAccount, true, false),
			solana.NewAccountMeta(ownerProgram, false, false),
			solana.NewAccountMeta(buffer, true, false),
			solana.NewAccountMeta(record, true, false),
			solana.NewAccountMeta(metadata, true, false),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		Payload: payload,
	}, nil
}

func (b *builder) mbTopUpEscrow() (*Instruction, error) {
	delegationProgram, err := b.configPubkey("delegation_program_id", b.params.Config.DelegationProgramID)
	if err != nil {
		return nil, err
	}
	escrow, err := b.pubkey("escrow", b.input("escrow"))
	if err != nil {
		return nil, err
	}
	escrowAuthority, err := b.pubkeyOrWallet("escrow_authority", b.input("escrow_authority"))
	if err != nil {
		return nil, err
	}
	payer, err := b.pubkeyOrWallet("payer", b.input("payer"))
	if err != nil {
		return nil, err
	}
	amount, err := b.number("amount", b.input("amount"))
	if err != nil {
		return nil, err
	}
	index, hasIndex := b.optionalNumber(b.inputs["index"])

	payload := append([]byte{}, mbDiscTopUpEscrow...)
	payload = appendU64(payload, uint64(amount))
	if hasIndex {
		payload = append(payload, 1, byte(index))
	} else {
		payload = append(payload, 0)
	}

	return &Instruction{
		Program: delegationProgram,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(escrow, true, false),
			solana.NewAccountMeta(escrowAuthority, false, true),
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		Payload: payload,
	}, nil
}

func (b *builder) mbCloseEscrow() (*Instruction, error) {
	delegationProgram, err := b.configPubkey("delegation_program_id", b.params.Config.DelegationProgramID)
	if err != nil {
		return nil, err
	}
	escrow, err := b.pubkey("escrow", b.input("escrow"))
	if err != nil {
		return nil, err
	}
	escrowAuthority, err := b.pubkeyOrWallet("escrow_authority", b.input("escrow_authority"))
	if err != nil {
		return nil, err
	}
	index, hasIndex := b.optionalNumber(b.inputs["index"])

	payload := append([]byte{}, mbDiscCloseEscrow...)
	if hasIndex {
		payload = append(payload, 1, byte(index))
	} else {
		payload = append(payload, 0)
	}

	return &Instruction{
		Program: delegationProgram,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(escrow, true, false),
			solana.NewAccountMeta(escrowAuthority, true, true),
		},
		Payload: payload,
	}, nil
}

// mbMagicCommit covers commit and commit-and-undelegate through the magic
// program, which takes a u32 opcode and the accounts to commit.
func (b *builder) mbMagicCommit(opcode []byte) (*Instruction, error) {
	magicProgram, err := b.configPubkey("magic_program_id", b.params.Config.MagicProgramID)
	if err != nil {
		return nil, err
	}
	magicContext, err := b.configPubkey("magic_context_id", b.params.Config.MagicContextID)
	if err != nil {
		return nil, err
	}
	payer, err := b.pubkeyOrWallet("payer", b.input("payer"))
	if err != nil {
		return nil, err
	}
	accounts, err := b.pubkeyList("accounts", b.input("accounts", "accounts_to_commit"))
	if err != nil {
		return nil, err
	}

	keys := []*solana.AccountMeta{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(magicContext, true, false),
	}
	for _, account := range accounts {
		keys = append(keys, solana.NewAccountMeta(account, true, false))
	}

	return &Instruction{
		Program: magicProgram,
		Keys:    keys,
		Payload: append([]byte{}, opcode...),
	}, nil
}

// mbProgramInstruction builds a raw instruction against an arbitrary
// program from explicit accounts and data.
func (b *builder) mbProgramInstruction() (*Instruction, error) {
	program, err := b.pubkey("program_id", b.input("program_id"))
	if err != nil {
		return nil, err
	}
	keys, err := b.accountMetas("accounts", b.inputs["accounts"])
	if err != nil {
		return nil, err
	}
	data, err := b.data("data", b.inputs["data"])
	if err != nil {
		return nil, err
	}

	return &Instruction{Program: program, Keys: keys, Payload: data}, nil
}
