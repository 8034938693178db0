package ix

import "github.com/gagliardetto/solana-go"

// Synthesis arms for permission management routed through the flaek program,
// which CPIs into the permission program. The permissioned account is the
// owner's state PDA; its permission record lives under the permission
// program at ("permission", state).

// permissionTarget is the shared prelude of every flaek permission arm: the
// owner, the optional name hash, the state PDA they select, and that state's
// permission record.
type permissionTarget struct {
	program           solana.PublicKey
	permissionProgram solana.PublicKey
	state             solana.PublicKey
	permission        solana.PublicKey
	owner             solana.PublicKey
	nameHash          []byte
}

func (b *builder) flaekPermissionTarget() (*permissionTarget, error) {
	program, err := b.configPubkey("flaek_program_id", b.params.Config.FlaekProgramID)
	if err != nil {
		return nil, err
	}
	permissionProgram, err := b.configPubkey("permission_program_id", b.params.Config.PermissionProgramID)
	if err != nil {
		return nil, err
	}
	owner, err := b.pubkeyOrWallet("owner", b.input("owner"))
	if err != nil {
		return nil, err
	}
	nameHash, err := b.optionalHash32("name_hash", b.input("name_hash", "nameHash"))
	if err != nil {
		return nil, err
	}
	state, err := StateAddress(program, owner, nameHash)
	if err != nil {
		return nil, err
	}
	permission, err := PermissionAddress(permissionProgram, state)
	if err != nil {
		return nil, err
	}
	return &permissionTarget{
		program:           program,
		permissionProgram: permissionProgram,
		state:             state,
		permission:        permission,
		owner:             owner,
		nameHash:          nameHash,
	}, nil
}

func (b *builder) flaekCreatePermission() (*Instruction, error) {
	target, err := b.flaekPermissionTarget()
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

	payload := append([]byte{}, discCreatePermission...)
	payload = appendAccountType(payload, target.owner, target.nameHash)
	payload = appendMembers(payload, members)

	return &Instruction{
		Program: target.program,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(target.state, false, false),
			solana.NewAccountMeta(target.permission, true, false),
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(target.permissionProgram, false, false),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		Payload: payload,
	}, nil
}

func (b *builder) flaekUpdatePermission() (*Instruction, error) {
	target, err := b.flaekPermissionTarget()
	if err != nil {
		return nil, err
	}
	authority, err := b.pubkeyOrWallet("authority", b.input("authority"))
	if err != nil {
		return nil, err
	}
	members, err := b.members("members", b.inputs["members"])
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, discUpdatePermission...)
	payload = appendAccountType(payload, target.owner, target.nameHash)
	payload = appendMembers(payload, members)

	return &Instruction{
		Program: target.program,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(target.state, false, false),
			solana.NewAccountMeta(target.permission, true, false),
			solana.NewAccountMeta(authority, true, true),
			solana.NewAccountMeta(target.permissionProgram, false, false),
		},
		Payload: payload,
	}, nil
}

// flaekCommitPermission covers commit and commit-and-undelegate; the magic
// program records the commit intent through the magic context account.
func (b *builder) flaekCommitPermission(disc []byte) (*Instruction, error) {
	target, err := b.flaekPermissionTarget()
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
	authority, err := b.pubkeyOrWallet("authority", b.input("authority"))
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, disc...)
	payload = appendAccountType(payload, target.owner, target.nameHash)

	return &Instruction{
		Program: target.program,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(target.state, false, false),
			solana.NewAccountMeta(target.permission, true, false),
			solana.NewAccountMeta(authority, true, true),
			solana.NewAccountMeta(target.permissionProgram, false, false),
			solana.NewAccountMeta(magicProgram, false, false),
			solana.NewAccountMeta(magicContext, true, false),
		},
		Payload: payload,
	}, nil
}

func (b *builder) flaekClosePermission() (*Instruction, error) {
	target, err := b.flaekPermissionTarget()
	if err != nil {
		return nil, err
	}
	payer, err := b.pubkeyOrWallet("payer", b.input("payer"))
	if err != nil {
		return nil, err
	}
	authority, err := b.pubkeyOrWallet("authority", b.input("authority"))
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, discClosePermission...)
	payload = appendAccountType(payload, target.owner, target.nameHash)

	return &Instruction{
		Program: target.program,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(target.state, false, false),
			solana.NewAccountMeta(target.permission, true, false),
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(authority, true, true),
			solana.NewAccountMeta(target.permissionProgram, false, false),
		},
		Payload: payload,
	}, nil
}
