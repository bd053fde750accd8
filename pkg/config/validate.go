// Package config loads and validates service configuration.
package config

import (
	"fmt"
	"strings"
)

// ValidateCore ensures the settings required by the selected backends are present.
func (c *Config) ValidateCore() error {
	var missing []string
	var invalid []string

	switch c.Prover.Backend {
	case "noop", "groth16":
	case "remote":
		if strings.TrimSpace(c.Prover.URL) == "" {
			missing = append(missing, "PROVER_URL")
		}
	default:
		invalid = append(invalid, "PROVER_BACKEND="+c.Prover.Backend)
	}

	switch c.Storage.Backend {
	case "memory":
	case "leveldb":
		if strings.TrimSpace(c.Storage.Path) == "" {
			missing = append(missing, "STORAGE_PATH")
		}
	case "redis":
		if strings.TrimSpace(c.Redis.URL) == "" {
			missing = append(missing, "REDIS_URL")
		}
	case "postgres":
		if strings.TrimSpace(c.Database.URL) == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		invalid = append(invalid, "STORAGE_BACKEND="+c.Storage.Backend)
	}

	if key := c.Storage.EncryptionKey; key != "" && len(key) != 64 {
		invalid = append(invalid, "STORAGE_ENCRYPTION_KEY (want 64 hex chars)")
	}
	if strings.TrimSpace(c.Audit.CredentialSecret) == "" || c.Audit.CredentialSecret == "change-this-secret" {
		missing = append(missing, "AUDIT_CREDENTIAL_SECRET")
	}
	if strings.TrimSpace(c.Network.RPCURL) == "" {
		missing = append(missing, "SOLANA_RPC_URL")
	}
	if !c.Compliance.USDDivisor.IsPositive() {
		invalid = append(invalid, "COMPLIANCE_USD_DIVISOR")
	}
	if len(c.Compliance.KYCTierLimits) != 3 {
		invalid = append(invalid, "COMPLIANCE_KYC_TIERS (want 3 values)")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, ", "))
	}

	return nil
}
