package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

func TestIssueAndVerifyCredential(t *testing.T) {
	m, clock := newTestManager(t)
	exp := clock.Now().Add(time.Hour)
	token, err := m.CreateAuditToken("alice", "auditor", []string{"shielded_transfer", "shielded_withdrawal"}, &exp)
	require.NoError(t, err)

	cred, err := m.IssueCredential(token.ID)
	require.NoError(t, err)

	claims, err := m.VerifyCredential(cred)
	require.NoError(t, err)
	assert.Equal(t, token.ID, claims.ID)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "umbra", claims.Issuer)
	assert.Equal(t, []string{"auditor"}, []string(claims.Audience))
	assert.Equal(t, token.Scope, claims.Scope)
	assert.Equal(t, token.ViewKey, claims.ViewKey)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyCredential_FailsAfterRevocation(t *testing.T) {
	m, _ := newTestManager(t)
	token, err := m.CreateAuditToken("alice", "auditor", nil, nil)
	require.NoError(t, err)
	cred, err := m.IssueCredential(token.ID)
	require.NoError(t, err)

	require.NoError(t, m.RevokeAuditToken(token.ID))
	_, err = m.VerifyCredential(cred)
	assert.ErrorIs(t, err, errors.ErrInvalidCredential)

	_, err = m.IssueCredential(token.ID)
	assert.ErrorIs(t, err, errors.ErrInvalidCredential)
}

func TestVerifyCredential_Expired(t *testing.T) {
	m, clock := newTestManager(t)
	exp := clock.Now().Add(time.Hour)
	token, err := m.CreateAuditToken("alice", "auditor", nil, &exp)
	require.NoError(t, err)
	cred, err := m.IssueCredential(token.ID)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = m.VerifyCredential(cred)
	assert.ErrorIs(t, err, errors.ErrInvalidCredential)
}

func TestVerifyCredential_WrongSecret(t *testing.T) {
	m, _ := newTestManager(t)
	token, err := m.CreateAuditToken("alice", "auditor", nil, nil)
	require.NoError(t, err)
	cred, err := m.IssueCredential(token.ID)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.CredentialSecret = []byte("other-secret")
	other, err := NewManager(cfg, logger.NewNop())
	require.NoError(t, err)

	_, err = other.VerifyCredential(cred)
	assert.ErrorIs(t, err, errors.ErrInvalidCredential)

	_, err = m.VerifyCredential("not.a.jwt")
	assert.ErrorIs(t, err, errors.ErrInvalidCredential)
}

func TestIssueCredential_UnknownToken(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.IssueCredential("missing")
	assert.ErrorIs(t, err, errors.ErrAuditTokenNotFound)
}
