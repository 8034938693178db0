package catalog

// registry is the built-in block set. Definitions are created once at
// process start and never mutated.
var registry = []Definition{
	{
		ID:          "flaek_create_state",
		Name:        "Create State",
		Category:    CategoryState,
		Description: "Create a Flaek-owned state PDA",
		Inputs: []Input{
			{Name: "owner", Type: InputPubkey, Description: "State owner (defaults to wallet)", Required: false},
			{Name: "name_hash", Type: InputString, Description: "32-byte hash (hex/base64) of state name", Required: true},
			{Name: "max_len", Type: InputNumber, Description: "Max bytes for state data", Required: true, Min: f64(1)},
			{Name: "data", Type: InputString, Description: "Initial data (utf8/base64/hex)", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"state", "flaek"},
	},
	{
		ID:          "flaek_update_state",
		Name:        "Update State",
		Category:    CategoryState,
		Description: "Overwrite data for a Flaek state PDA",
		Inputs: []Input{
			{Name: "owner", Type: InputPubkey, Description: "State owner (defaults to wallet)", Required: false},
			{Name: "name_hash", Type: InputString, Description: "32-byte hash (hex/base64) of state name", Required: true},
			{Name: "data", Type: InputString, Description: "New data (utf8/base64/hex)", Required: true},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"state", "flaek"},
	},
	{
		ID:          "flaek_append_state",
		Name:        "Append State",
		Category:    CategoryState,
		Description: "Append bytes to a Flaek state PDA",
		Inputs: []Input{
			{Name: "owner", Type: InputPubkey, Description: "State owner (defaults to wallet)", Required: false},
			{Name: "name_hash", Type: InputString, Description: "32-byte hash (hex/base64) of state name", Required: true},
			{Name: "data", Type: InputString, Description: "Data to append (utf8/base64/hex)", Required: true},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"state", "flaek"},
	},
	{
		ID:          "flaek_close_state",
		Name:        "Close State",
		Category:    CategoryState,
		Description: "Close a Flaek state PDA and reclaim rent",
		Inputs: []Input{
			{Name: "owner", Type: InputPubkey, Description: "State owner (defaults to wallet)", Required: false},
			{Name: "name_hash", Type: InputString, Description: "32-byte hash (hex/base64) of state name", Required: true},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"state", "flaek"},
	},
	{
		ID:          "flaek_delegate_state",
		Name:        "Delegate State",
		Category:    CategoryState,
		Description: "Delegate Flaek state PDA to ER/PER",
		Inputs: []Input{
			{Name: "owner", Type: InputPubkey, Description: "State owner (defaults to wallet)", Required: false},
			{Name: "payer", Type: InputPubkey, Description: "Fee payer (defaults to wallet)", Required: false},
			{Name: "name_hash", Type: InputString, Description: "32-byte hash (hex/base64) of state name", Required: true},
			{Name: "validator", Type: InputPubkey, Description: "ER validator public key", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"state", "flaek", "delegation"},
	},
	{
		ID:          "flaek_create_permission",
		Name:        "Create Permission (Flaek)",
		Category:    CategoryPermission,
		Description: "Create a Permission account for a Flaek-owned state PDA",
		Inputs: []Input{
			{Name: "owner", Type: InputPubkey, Description: "State owner (defaults to wallet)", Required: false},
			{Name: "name_hash", Type: InputString, Description: "32-byte hash (hex/base64) of state name (optional for static state)", Required: false},
			{Name: "payer", Type: InputPubkey, Description: "Fee payer (defaults to wallet)", Required: false},
			{Name: "members", Type: InputJSON, Description: "Members array with flags and pubkeys", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "flaek"},
	},
	{
		ID:          "flaek_update_permission",
		Name:        "Update Permission (Flaek)",
		Category:    CategoryPermission,
		Description: "Update permission members for a Flaek-owned state PDA",
		Inputs: []Input{
			{Name: "owner", Type: InputPubkey, Description: "State owner (defaults to wallet)", Required: false},
			{Name: "name_hash", Type: InputString, Description: "32-byte hash (hex/base64) of state name (optional for static state)", Required: false},
			{Name: "authority", Type: InputPubkey, Description: "Authority signer (defaults to wallet)", Required: false},
			{Name: "members", Type: InputJSON, Description: "Members array with flags and pubkeys", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "flaek"},
	},
	{
		ID:          "flaek_commit_permission",
		Name:        "Commit Permission (Flaek)",
		Category:    CategoryPermission,
		Description: "Commit permission state to base for a Flaek-owned state PDA",
		Inputs: []Input{
			{Name: "owner", Type: InputPubkey, Description: "State owner (defaults to wallet)", Required: false},
			{Name: "name_hash", Type: InputString, Description: "32-byte hash (hex/base64) of state name (optional for static state)", Required: false},
			{Name: "authority", Type: InputPubkey, Description: "Authority signer (defaults to wallet)", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "flaek", "magic"},
	},
	{
		ID:          "flaek_commit_undelegate_permission",
		Name:        "Commit + Undelegate Permission (Flaek)",
		Category:    CategoryPermission,
		Description: "Commit permission state and undelegate for a Flaek-owned state PDA",
		Inputs: []Input{
			{Name: "owner", Type: InputPubkey, Description: "State owner (defaults to wallet)", Required: false},
			{Name: "name_hash", Type: InputString, Description: "32-byte hash (hex/base64) of state name (optional for static state)", Required: false},
			{Name: "authority", Type: InputPubkey, Description: "Authority signer (defaults to wallet)", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "flaek", "magic"},
	},
	{
		ID:          "flaek_close_permission",
		Name:        "Close Permission (Flaek)",
		Category:    CategoryPermission,
		Description: "Close permission account for a Flaek-owned state PDA",
		Inputs: []Input{
			{Name: "owner", Type: InputPubkey, Description: "State owner (defaults to wallet)", Required: false},
			{Name: "name_hash", Type: InputString, Description: "32-byte hash (hex/base64) of state name (optional for static state)", Required: false},
			{Name: "payer", Type: InputPubkey, Description: "Fee payer (defaults to wallet)", Required: false},
			{Name: "authority", Type: InputPubkey, Description: "Authority signer (defaults to wallet)", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "flaek"},
	},
	{
		ID:          "mb_create_permission",
		Name:        "Create Permission",
		Category:    CategoryPermission,
		Description: "Create a Permission account for a permissioned account",
		Inputs: []Input{
			{Name: "permissioned_account", Type: InputPubkey, Description: "Account to permission", Required: true},
			{Name: "permission", Type: InputPubkey, Description: "Permission account PDA or keypair", Required: false},
			{Name: "payer", Type: InputPubkey, Description: "Fee payer", Required: true},
			{Name: "members", Type: InputJSON, Description: "Members array with flags and pubkeys", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "access-control"},
	},
	{
		ID:          "mb_update_permission",
		Name:        "Update Permission",
		Category:    CategoryPermission,
		Description: "Update members or make permissioned account visible in PER",
		Inputs: []Input{
			{Name: "authority", Type: InputPubkey, Description: "Authority in permission members", Required: true},
			{Name: "authority_is_signer", Type: InputBool, Description: "Whether authority signs", Required: false},
			{Name: "permissioned_account", Type: InputPubkey, Description: "Account to permission", Required: true},
			{Name: "permissioned_account_is_signer", Type: InputBool, Description: "Whether permissioned account signs", Required: false},
			{Name: "permission", Type: InputPubkey, Description: "Permission account (optional)", Required: false},
			{Name: "members", Type: InputJSON, Description: "New members array (or empty)", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "update"},
	},
	{
		ID:          "mb_delegate_permission",
		Name:        "Delegate Permission",
		Category:    CategoryPermission,
		Description: "Delegate permission and permissioned account to PER validator",
		Inputs: []Input{
			{Name: "payer", Type: InputPubkey, Description: "Fee payer", Required: true},
			{Name: "authority", Type: InputPubkey, Description: "Authority in permission members", Required: true},
			{Name: "authority_is_signer", Type: InputBool, Description: "Whether authority signs", Required: false},
			{Name: "permissioned_account", Type: InputPubkey, Description: "Account to permission", Required: true},
			{Name: "permissioned_account_is_signer", Type: InputBool, Description: "Whether permissioned account signs", Required: false},
			{Name: "permission", Type: InputPubkey, Description: "Permission account (optional)", Required: false},
			{Name: "owner_program", Type: InputPubkey, Description: "Permission program ID", Required: true},
			{Name: "validator", Type: InputPubkey, Description: "ER validator public key", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "delegation"},
	},
	{
		ID:          "mb_commit_permission",
		Name:        "Commit Permission",
		Category:    CategoryPermission,
		Description: "Commit permissioned state to L1 without undelegation",
		Inputs: []Input{
			{Name: "authority", Type: InputPubkey, Description: "Authority in permission members", Required: true},
			{Name: "authority_is_signer", Type: InputBool, Description: "Whether authority signs", Required: false},
			{Name: "permissioned_account", Type: InputPubkey, Description: "Permissioned account", Required: true},
			{Name: "permissioned_account_is_signer", Type: InputBool, Description: "Whether permissioned account signs", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "commit"},
	},
	{
		ID:          "mb_commit_undelegate_permission",
		Name:        "Commit & Undelegate",
		Category:    CategoryPermission,
		Description: "Commit state and undelegate permission to Solana L1",
		Inputs: []Input{
			{Name: "authority", Type: InputPubkey, Description: "Authority in permission members", Required: true},
			{Name: "authority_is_signer", Type: InputBool, Description: "Whether authority signs", Required: false},
			{Name: "permissioned_account", Type: InputPubkey, Description: "Account to permission", Required: true},
			{Name: "permission", Type: InputPubkey, Description: "Permission account", Required: false},
			{Name: "permissioned_account_is_signer", Type: InputBool, Description: "Whether permissioned account signs", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "commit"},
	},
	{
		ID:          "mb_undelegate_permission",
		Name:        "Undelegate Permission",
		Category:    CategoryPermission,
		Description: "Undelegate a permission PDA back to L1",
		Inputs: []Input{
			{Name: "permission", Type: InputPubkey, Description: "Permission PDA", Required: false},
			{Name: "permissioned_account", Type: InputPubkey, Description: "Permissioned account (to derive PDA)", Required: false},
			{Name: "delegation_buffer", Type: InputPubkey, Description: "Delegation buffer PDA (optional)", Required: false},
			{Name: "validator", Type: InputPubkey, Description: "ER validator public key", Required: true},
			{Name: "pda_seeds", Type: InputArray, Description: "Optional PDA seeds for undelegation", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "undelegate"},
	},
	{
		ID:          "mb_close_permission",
		Name:        "Close Permission",
		Category:    CategoryPermission,
		Description: "Close permission account and reclaim deposit",
		Inputs: []Input{
			{Name: "payer", Type: InputPubkey, Description: "Fee payer", Required: true},
			{Name: "authority", Type: InputPubkey, Description: "Authority in permission members", Required: true},
			{Name: "authority_is_signer", Type: InputBool, Description: "Whether authority signs", Required: false},
			{Name: "permissioned_account", Type: InputPubkey, Description: "Account to permission", Required: true},
			{Name: "permission", Type: InputPubkey, Description: "Permission account", Required: false},
			{Name: "permissioned_account_is_signer", Type: InputBool, Description: "Whether permissioned account signs", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"permission", "close"},
	},
	{
		ID:          "mb_delegate_pda",
		Name:        "Delegate Account",
		Category:    CategoryDelegation,
		Description: "Delegate an account to ER/PER using the delegation program",
		Inputs: []Input{
			{Name: "payer", Type: InputPubkey, Description: "Fee payer", Required: true},
			{Name: "delegated_account", Type: InputPubkey, Description: "Account to delegate", Required: true},
			{Name: "owner_program", Type: InputPubkey, Description: "Owner program of the delegated account", Required: true},
			{Name: "validator", Type: InputPubkey, Description: "ER validator public key", Required: false},
			{Name: "commit_frequency_ms", Type: InputNumber, Description: "Commit frequency in ms", Required: false, Min: f64(0)},
			{Name: "seeds", Type: InputArray, Description: "Optional PDA seeds (utf8/base64)", Required: false},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"delegation", "delegate"},
	},
	{
		ID:          "mb_topup_escrow",
		Name:        "Top-up Ephemeral Balance",
		Category:    CategoryDelegation,
		Description: "Top up an ephemeral balance escrow for ER",
		Inputs: []Input{
			{Name: "escrow", Type: InputPubkey, Description: "Escrow account", Required: true},
			{Name: "escrow_authority", Type: InputPubkey, Description: "Escrow authority", Required: true},
			{Name: "payer", Type: InputPubkey, Description: "Fee payer", Required: true},
			{Name: "amount", Type: InputNumber, Description: "Lamports to top up", Required: true, Min: f64(1)},
			{Name: "index", Type: InputNumber, Description: "Escrow index (optional)", Required: false, Min: f64(0), Max: f64(255)},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"delegation", "balance"},
	},
	{
		ID:          "mb_close_escrow",
		Name:        "Close Ephemeral Balance",
		Category:    CategoryDelegation,
		Description: "Close an ephemeral balance escrow and reclaim funds",
		Inputs: []Input{
			{Name: "escrow", Type: InputPubkey, Description: "Escrow account", Required: true},
			{Name: "escrow_authority", Type: InputPubkey, Description: "Escrow authority", Required: true},
			{Name: "index", Type: InputNumber, Description: "Escrow index (optional)", Required: false, Min: f64(0), Max: f64(255)},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"delegation", "balance"},
	},
	{
		ID:          "mb_magic_commit",
		Name:        "Magic Commit",
		Category:    CategoryMagic,
		Description: "Schedule commit for delegated accounts via Magic Program",
		Inputs: []Input{
			{Name: "payer", Type: InputPubkey, Description: "Fee payer", Required: true},
			{Name: "accounts", Type: InputArray, Description: "Accounts to commit", Required: true},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"magic", "commit"},
	},
	{
		ID:          "mb_magic_commit_undelegate",
		Name:        "Magic Commit & Undelegate",
		Category:    CategoryMagic,
		Description: "Schedule commit and undelegate via Magic Program",
		Inputs: []Input{
			{Name: "payer", Type: InputPubkey, Description: "Fee payer", Required: true},
			{Name: "accounts", Type: InputArray, Description: "Accounts to commit & undelegate", Required: true},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"magic", "commit"},
	},
	{
		ID:          "mb_program_instruction",
		Name:        "Program Instruction",
		Category:    CategoryProgram,
		Description: "Call a custom program instruction (user-provided program)",
		Inputs: []Input{
			{Name: "program_id", Type: InputPubkey, Description: "Program ID", Required: true},
			{Name: "accounts", Type: InputJSON, Description: "Account metas and signers", Required: true},
			{Name: "data", Type: InputString, Description: "Instruction data (base64)", Required: true},
		},
		Outputs: []Output{txOutput},
		Tags:    []string{"program", "custom"},
	},
}

var txOutput = Output{Name: "tx", Type: "string", Description: "Transaction signature"}

func f64(v float64) *float64 { return &v }
