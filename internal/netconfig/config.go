// Package netconfig holds the endpoint and program configuration used to
// reach the base chain and MagicBlock ephemeral rollup validators.
package netconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config names every endpoint and on-chain program the instruction
// synthesizer and execution driver need. All values are base58 addresses or
// URLs; parsing happens at the point of use so a bad address surfaces as a
// field error on the block that needs it.
type Config struct {
	TeeRPCURL string `yaml:"tee_rpc_url"`
	TeeWSURL  string `yaml:"tee_ws_url"`
	ErRPCURL  string `yaml:"er_rpc_url"`
	ErWSURL   string `yaml:"er_ws_url"`

	DefaultValidator string `yaml:"default_validator"`

	PermissionProgramID string `yaml:"permission_program_id"`
	DelegationProgramID string `yaml:"delegation_program_id"`
	MagicProgramID      string `yaml:"magic_program_id"`
	MagicContextID      string `yaml:"magic_context_id"`
	FlaekProgramID      string `yaml:"flaek_program_id"`
}

// Default returns the devnet configuration.
func Default() *Config {
	return &Config{
		TeeRPCURL:           "https://tee.magicblock.app",
		TeeWSURL:            "wss://tee.magicblock.app",
		ErRPCURL:            "https://devnet-router.magicblock.app",
		ErWSURL:             "wss://devnet.magicblock.app",
		DefaultValidator:    "MAS1Dt9qreoRMQ14YQuhg8UTZMMzDdKhmkZMECCzk57",
		PermissionProgramID: "ACLseoPoyC3cBqoUtkbjZ4aDrkurZW86v19pXz2XQnp1",
		DelegationProgramID: "DELeGGvXpWV2fqJUhqcF5ZSYMS4JTLjteaAMARRSaeSh",
		MagicProgramID:      "Magic11111111111111111111111111111111111111",
		MagicContextID:      "MagicContext1111111111111111111111111111111",
		FlaekProgramID:      "9H2L2RwoURMv9pVaW2TWx6uasFuHg4PYW92jaVVDaicW",
	}
}

// Load reads a YAML configuration file over the defaults. Keys absent from
// the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
