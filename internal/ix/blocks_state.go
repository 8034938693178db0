package ix

import "github.com/gagliardetto/solana-go"

// Synthesis arms for the flaek program's state accounts. State lives at the
// PDA ("state", owner, nameHash); the owner signs every mutation.

func (b *builder) flaekCreateState() (*Instruction, error) {
	program, err := b.configPubkey("flaek_program_id", b.params.Config.FlaekProgramID)
	if err != nil {
		return nil, err
	}
	owner, err := b.pubkeyOrWallet("owner", b.input("owner", "payer"))
	if err != nil {
		return nil, err
	}
	nameHash, err := b.hash32("name_hash", b.input("name_hash", "nameHash"))
	if err != nil {
		return nil, err
	}
	maxLen, err := b.number("max_len", b.input("max_len", "maxLen"))
	if err != nil {
		return nil, err
	}
	data, err := b.data("data", b.inputs["data"])
	if err != nil {
		return nil, err
	}
	state, err := StateAddress(program, owner, nameHash)
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, discCreateState...)
	payload = append(payload, nameHash...)
	payload = appendU32(payload, uint32(maxLen))
	payload = appendVec(payload, data)

	return &Instruction{
		Program: program,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(state, true, false),
			solana.NewAccountMeta(owner, true, true),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		Payload: payload,
	}, nil
}

// flaekWriteState covers update and append; they share accounts and layout
// and differ only in the method discriminator.
func (b *builder) flaekWriteState(disc []byte) (*Instruction, error) {
	program, err := b.configPubkey("flaek_program_id", b.params.Config.FlaekProgramID)
	if err != nil {
		return nil, err
	}
	owner, err := b.pubkeyOrWallet("owner", b.input("owner", "payer"))
	if err != nil {
		return nil, err
	}
	nameHash, err := b.hash32("name_hash", b.input("name_hash", "nameHash"))
	if err != nil {
		return nil, err
	}
	data, err := b.data("data", b.inputs["data"])
	if err != nil {
		return nil, err
	}
	state, err := StateAddress(program, owner, nameHash)
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, disc...)
	payload = append(payload, nameHash...)
	payload = appendVec(payload, data)

	return &Instruction{
		Program: program,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(state, true, false),
			solana.NewAccountMeta(owner, false, true),
		},
		Payload: payload,
	}, nil
}

func (b *builder) flaekCloseState() (*Instruction, error) {
	program, err := b.configPubkey("flaek_program_id", b.params.Config.FlaekProgramID)
	if err != nil {
		return nil, err
	}
	owner, err := b.pubkeyOrWallet("owner", b.input("owner", "payer"))
	if err != nil {
		return nil, err
	}
	nameHash, err := b.hash32("name_hash", b.input("name_hash", "nameHash"))
	if err != nil {
		return nil, err
	}
	state, err := StateAddress(program, owner, nameHash)
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, discCloseState...)
	payload = append(payload, nameHash...)

	return &Instruction{
		Program: program,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(state, true, false),
			solana.NewAccountMeta(owner, true, true),
		},
		Payload: payload,
	}, nil
}

func (b *builder) flaekDelegateState() (*Instruction, error) {
	program, err := b.configPubkey("flaek_program_id", b.params.Config.FlaekProgramID)
	if err != nil {
		return nil, err
	}
	delegationProgram, err := b.configPubkey("delegation_program_id", b.params.Config.DelegationProgramID)
	if err != nil {
		return nil, err
	}
	owner, err := b.pubkeyOrWallet("owner", b.input("owner"))
	if err != nil {
		return nil, err
	}
	payer := owner
	if v := b.input("payer"); v != nil {
		payer, err = b.pubkey("payer", v)
		if err != nil {
			return nil, err
		}
	}
	nameHash, err := b.hash32("name_hash", b.input("name_hash", "nameHash"))
	if err != nil {
		return nil, err
	}
	validator, err := b.validator()
	if err != nil {
		return nil, err
	}

	state, err := StateAddress(program, owner, nameHash)
	if err != nil {
		return nil, err
	}
	buffer, err := BufferAddress(program, state)
	if err != nil {
		return nil, err
	}
	record, err := DelegationRecordAddress(delegationProgram, state)
	if err != nil {
		return nil, err
	}
	metadata, err := DelegationMetadataAddress(delegationProgram, state)
	if err != nil {
		return nil, err
	}

	payload := append([]byte{}, discDelegateState...)
	payload = append(payload, nameHash...)
	payload = appendOptionPubkey(payload, validator)

	return &Instruction{
		Program: program,
		Keys: []*solana.AccountMeta{
			solana.NewAccountMeta(buffer, true, false),
			solana.NewAccountMeta(record, true, false),
			solana.NewAccountMeta(metadata, true, false),
			solana.NewAccountMeta(state, true, false),
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(owner, false, true),
			solana.NewAccountMeta(program, false, false),
			solana.NewAccountMeta(delegationProgram, false, false),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		Payload: payload,
	}, nil
}
