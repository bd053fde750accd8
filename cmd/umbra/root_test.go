package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbra/internal/commitment"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STORAGE_BACKEND", "leveldb")
	t.Setenv("STORAGE_PATH", filepath.Join(t.TempDir(), "umbra.db"))
	t.Setenv("STORAGE_ENCRYPTION_KEY", "")
	t.Setenv("PROVER_BACKEND", "noop")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--env", filepath.Join(t.TempDir(), "missing.env")))
	err := root.Execute()
	return out.String(), err
}

func decode(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m), s)
	return m
}

func TestCommitCommand(t *testing.T) {
	isolateEnv(t)

	out, err := run(t, "", "commit", "--amount", "1000")
	require.NoError(t, err)
	m := decode(t, out)
	assert.NotEmpty(t, m["commitment"])
	assert.NotEmpty(t, m["nullifier"])
	assert.Len(t, m["salt"], 2*commitment.SaltSize)

	_, err = run(t, "", "commit", "--amount", "abc")
	assert.Error(t, err)

	_, err = run(t, "", "commit", "--amount", "0")
	assert.Error(t, err)
}

func TestKYCLevelCommand(t *testing.T) {
	isolateEnv(t)

	cases := map[string]float64{
		"500":    0,
		"5000":   1,
		"50000":  2,
		"500000": 3,
	}
	for usd, want := range cases {
		out, err := run(t, "", "kyc-level", "--usd", usd)
		require.NoError(t, err)
		assert.Equal(t, want, decode(t, out)["requiredLevel"], usd)
	}
}

func TestThresholdCommand(t *testing.T) {
	isolateEnv(t)

	out, err := run(t, "", "threshold", "--amount", "500000000000", "--kyc-level", "1", "--kyc-verified", "--daily-limit", "1000")
	require.NoError(t, err)
	assert.Equal(t, true, decode(t, out)["allowed"])

	out, err = run(t, "", "threshold", "--amount", "500000000000")
	require.NoError(t, err)
	m := decode(t, out)
	assert.Equal(t, false, m["allowed"])
	assert.Equal(t, true, m["requiresKyc"])
}

func TestViewKeyAndAuditTokenCommands(t *testing.T) {
	isolateEnv(t)
	address := solana.NewWallet().PublicKey().String()

	out, err := run(t, "", "viewkey", "--address", address, "--type", "INCOMING")
	require.NoError(t, err)
	vk := decode(t, out)
	assert.Equal(t, "INCOMING", vk["type"])
	assert.NotEmpty(t, vk["key"])

	_, err = run(t, "", "viewkey", "--address", address, "--type", "EVERYTHING")
	assert.Error(t, err)

	out, err = run(t, "", "audit-token", "--address", address, "--auditor", "auditor-1", "--scope", "transfers,balances")
	require.NoError(t, err)
	m := decode(t, out)
	assert.NotEmpty(t, m["credential"])
	token := m["token"].(map[string]interface{})
	assert.Equal(t, "auditor-1", token["recipient"])
	assert.NotNil(t, token["expiresAt"])
}

func TestTravelRuleRoundTrip(t *testing.T) {
	isolateEnv(t)

	out, err := run(t, "", "travelrule", "keygen")
	require.NoError(t, err)
	keys := decode(t, out)

	sealed, err := run(t, "", "travelrule", "encrypt",
		"--recipient-key", keys["publicKey"].(string),
		"--originator-name", "Alice",
		"--originator-address", "addr-a",
		"--beneficiary-name", "Bob",
		"--beneficiary-address", "addr-b",
		"--amount", "42",
	)
	require.NoError(t, err)

	out, err = run(t, sealed, "travelrule", "decrypt", "--private-key", keys["privateKey"].(string))
	require.NoError(t, err)
	data := decode(t, out)
	assert.Equal(t, "Alice", data["originatorName"])
	assert.Equal(t, "Bob", data["beneficiaryName"])

	_, err = run(t, "", "travelrule", "encrypt", "--recipient-key", keys["publicKey"].(string), "--amount", "42")
	assert.Error(t, err)
}

func TestBuildDepositCommand(t *testing.T) {
	isolateEnv(t)
	from := solana.NewWallet().PublicKey().String()

	out, err := run(t, "", "build", "deposit", "--from", from, "--amount", "1000000", "--fee-level", "low")
	require.NoError(t, err)
	m := decode(t, out)
	assert.NotEmpty(t, m["commitment"])
	assert.NotEmpty(t, m["message"])

	_, err = run(t, "", "build", "deposit", "--from", from, "--amount", "1000000", "--fee-level", "urgent")
	assert.Error(t, err)
}

func TestBuildTransferRespectsLimits(t *testing.T) {
	isolateEnv(t)
	to := solana.NewWallet().PublicKey().String()

	out, err := run(t, "", "commit", "--amount", "1000000")
	require.NoError(t, err)
	input := decode(t, out)["commitment"].(string)

	_, err = run(t, "", "build", "transfer", "--to", to, "--amount", "1000000", "--input", input)
	assert.Error(t, err)

	out, err = run(t, "", "build", "transfer", "--to", to, "--amount", "1000000", "--input", input, "--kyc-level", "1", "--kyc-verified")
	require.NoError(t, err)
	assert.NotEmpty(t, decode(t, out)["nullifier"])

	_, err = run(t, "", "build", "withdrawal", "--to", to, "--amount", "1000000", "--input", input, "--kyc-level", "1", "--kyc-verified")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOUBLE_SPEND")

	_, err = run(t, "", "build", "transfer", "--to", to, "--amount", "1000000", "--kyc-level", "1", "--kyc-verified")
	assert.Error(t, err)
}

func TestWalletSettingsPersist(t *testing.T) {
	isolateEnv(t)

	_, err := run(t, "", "wallet", "settings", "--theme", "dark", "--network", "testnet")
	require.NoError(t, err)

	out, err := run(t, "", "wallet", "status")
	require.NoError(t, err)
	m := decode(t, out)
	assert.Equal(t, false, m["hasWallet"])
	settings := m["settings"].(map[string]interface{})
	assert.Equal(t, "dark", settings["theme"])
	assert.Equal(t, "testnet", settings["network"])

	_, err = run(t, "", "wallet", "settings", "--theme", "neon")
	assert.Error(t, err)

	_, err = run(t, "", "wallet", "delete", "--yes")
	require.NoError(t, err)

	out, err = run(t, "", "wallet", "status")
	require.NoError(t, err)
	settings = decode(t, out)["settings"].(map[string]interface{})
	assert.Equal(t, "system", settings["theme"])
}
