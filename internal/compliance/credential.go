package compliance

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"umbra/pkg/errors"
)

// CredentialClaims is the JWT body of an audit credential. The subject is
// the audited address and the audience the auditor.
type CredentialClaims struct {
	Scope   []string `json:"scope"`
	ViewKey string   `json:"vk"`
	jwt.RegisteredClaims
}

// IssueCredential signs a bearer credential for an active audit token. It
// expires with the token.
func (m *Manager) IssueCredential(tokenID string) (string, error) {
	token, ok := m.GetAuditToken(tokenID)
	if !ok {
		return "", errors.Newf(errors.CodeAuditTokenNotFound, "audit token %s not found", tokenID)
	}
	now := m.cfg.Clock()
	if !token.ActiveAt(now) {
		return "", errors.New(errors.CodeInvalidCredential, "audit token is revoked or expired")
	}

	claims := CredentialClaims{
		Scope:   token.Scope,
		ViewKey: token.ViewKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       token.ID,
			Issuer:   m.cfg.CredentialIssuer,
			Subject:  token.Address,
			Audience: jwt.ClaimStrings{token.Recipient},
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if token.ExpiresAt != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*token.ExpiresAt)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.CredentialSecret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign credential")
	}
	return signed, nil
}

// VerifyCredential checks the signature and expiry of a credential and that
// its audit token is still active.
func (m *Manager) VerifyCredential(credential string) (*CredentialClaims, error) {
	claims := &CredentialClaims{}
	_, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		return m.cfg.CredentialSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.CredentialIssuer),
		jwt.WithTimeFunc(func() time.Time { return m.cfg.Clock() }),
	)
	if err != nil {
		return nil, errors.WithCause(errors.CodeInvalidCredential, "credential rejected", err)
	}
	if !m.VerifyAuditToken(claims.ID) {
		return nil, errors.New(errors.CodeInvalidCredential, "audit token is no longer active")
	}
	return claims, nil
}
