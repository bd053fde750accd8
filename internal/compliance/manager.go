// ==============================================================================
// COMPLIANCE MANAGER - internal/compliance/manager.go
// ==============================================================================
// Package compliance issues view keys and audit tokens, evaluates KYC
// thresholds and builds compliance reports.
package compliance

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"umbra/pkg/config"
	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

const viewKeyNonceSize = 16

// Config carries the policy the manager enforces.
type Config struct {
	Converter USDConverter
	// KYCTiers are the USD upper bounds of levels 0, 1 and 2.
	KYCTiers        []decimal.Decimal
	UnverifiedLimit decimal.Decimal
	// DefaultKYC is the snapshot used by reports when none is supplied.
	DefaultKYC domain.KYCLevel
	FlagRule   FlagRule

	CredentialSecret []byte
	CredentialIssuer string

	Clock func() time.Time
	Rand  io.Reader
}

// ConfigFrom maps process configuration onto manager policy.
func ConfigFrom(cfg *config.Config) Config {
	c := cfg.Compliance
	return Config{
		Converter:       NewFixedRateConverter(c.USDDivisor),
		KYCTiers:        c.KYCTierLimits,
		UnverifiedLimit: c.UnverifiedLimit,
		DefaultKYC: domain.KYCLevel{
			Level:        0,
			Verified:     false,
			DailyLimit:   c.DefaultDailyLimit,
			MonthlyLimit: c.DefaultMonthlyLimit,
		},
		CredentialSecret: []byte(cfg.Audit.CredentialSecret),
		CredentialIssuer: cfg.Audit.Issuer,
	}
}

// DefaultConfig is the built-in policy: 1e9 divisor, 1000/10000/100000 tiers.
func DefaultConfig() Config {
	return Config{
		Converter:       NewFixedRateConverter(decimal.New(1, 9)),
		KYCTiers:        []decimal.Decimal{decimal.NewFromInt(1000), decimal.NewFromInt(10000), decimal.NewFromInt(100000)},
		UnverifiedLimit: decimal.NewFromInt(1000),
		DefaultKYC: domain.KYCLevel{
			DailyLimit:   decimal.NewFromInt(1000),
			MonthlyLimit: decimal.NewFromInt(10000),
		},
		CredentialIssuer: "umbra",
	}
}

// Manager owns every view key and audit token it issues. Records handed to
// callers are copies.
type Manager struct {
	mu         sync.RWMutex
	viewKeys   map[string]*domain.ViewKey
	keyOrder   []string
	tokens     map[string]*domain.AuditToken
	tokenOrder []string
	counter    uint64

	secret []byte
	cfg    Config
	logger logger.Logger
}

func NewManager(cfg Config, log logger.Logger) (*Manager, error) {
	if cfg.Converter == nil {
		cfg.Converter = DefaultConfig().Converter
	}
	if len(cfg.KYCTiers) == 0 {
		cfg.KYCTiers = DefaultConfig().KYCTiers
	}
	if cfg.UnverifiedLimit.IsZero() {
		cfg.UnverifiedLimit = DefaultConfig().UnverifiedLimit
	}
	if cfg.DefaultKYC.DailyLimit.IsZero() && cfg.DefaultKYC.MonthlyLimit.IsZero() {
		cfg.DefaultKYC = DefaultConfig().DefaultKYC
	}
	if cfg.FlagRule == nil {
		cfg.FlagRule = OverDailyLimit
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}

	secret := make([]byte, 32)
	if _, err := io.ReadFull(cfg.Rand, secret); err != nil {
		return nil, errors.Wrap(err, "failed to seed view key secret")
	}
	if len(cfg.CredentialSecret) == 0 {
		cfg.CredentialSecret = secret
	}

	return &Manager{
		viewKeys: make(map[string]*domain.ViewKey),
		tokens:   make(map[string]*domain.AuditToken),
		secret:   secret,
		cfg:      cfg,
		logger:   log,
	}, nil
}

// GenerateViewKey mints and stores a view key. The key string is an
// HMAC over address, type, a process-wide counter and a random nonce.
func (m *Manager) GenerateViewKey(address string, keyType domain.ViewKeyType, description string, expiresAt *time.Time) (domain.ViewKey, error) {
	if !keyType.Valid() {
		return domain.ViewKey{}, errors.Newf(errors.CodeInvalidCredential, "unknown view key type %q", keyType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateViewKeyLocked(address, keyType, description, expiresAt)
}

func (m *Manager) generateViewKeyLocked(address string, keyType domain.ViewKeyType, description string, expiresAt *time.Time) (domain.ViewKey, error) {
	nonce := make([]byte, viewKeyNonceSize)
	if _, err := io.ReadFull(m.cfg.Rand, nonce); err != nil {
		return domain.ViewKey{}, errors.Wrap(err, "failed to read view key nonce")
	}
	m.counter++

	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(address))
	mac.Write([]byte{'|'})
	mac.Write([]byte(keyType))
	mac.Write([]byte{'|'})
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], m.counter)
	mac.Write(ctr[:])
	mac.Write(nonce)

	vk := &domain.ViewKey{
		Type:        keyType,
		Key:         base64.RawURLEncoding.EncodeToString(mac.Sum(nil)),
		Address:     address,
		CreatedAt:   m.cfg.Clock(),
		ExpiresAt:   copyTime(expiresAt),
		Description: description,
	}
	m.viewKeys[vk.Key] = vk
	m.keyOrder = append(m.keyOrder, vk.Key)

	m.logger.Info("View key generated", map[string]interface{}{
		"address": address,
		"type":    string(keyType),
	})
	return copyViewKey(vk), nil
}

// CreateAuditToken grants auditor a FULL view key over address's activity.
func (m *Manager) CreateAuditToken(address, auditor string, scope []string, expiresAt *time.Time) (domain.AuditToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vk, err := m.generateViewKeyLocked(address, domain.ViewKeyFull, "audit token", expiresAt)
	if err != nil {
		return domain.AuditToken{}, err
	}

	token := &domain.AuditToken{
		ID:        uuid.NewString(),
		Address:   address,
		ViewKey:   vk.Key,
		Scope:     append([]string{}, scope...),
		CreatedAt: m.cfg.Clock(),
		ExpiresAt: copyTime(expiresAt),
		Issuer:    address,
		Recipient: auditor,
	}
	m.tokens[token.ID] = token
	m.tokenOrder = append(m.tokenOrder, token.ID)

	m.logger.Info("Audit token created", map[string]interface{}{
		"token_id": token.ID,
		"address":  address,
		"auditor":  auditor,
	})
	return copyToken(token), nil
}

// RevokeAuditToken marks a token revoked. Revoking twice is a no-op.
func (m *Manager) RevokeAuditToken(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.tokens[id]
	if !ok {
		return errors.Newf(errors.CodeAuditTokenNotFound, "audit token %s not found", id)
	}
	if !token.Revoked {
		token.Revoked = true
		m.logger.Info("Audit token revoked", map[string]interface{}{"token_id": id})
	}
	return nil
}

// VerifyAuditToken is true iff the token exists, is unrevoked and has not
// expired.
func (m *Manager) VerifyAuditToken(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[id]
	if !ok {
		return false
	}
	return token.ActiveAt(m.cfg.Clock())
}

// GetAuditToken returns a copy of the token with id.
func (m *Manager) GetAuditToken(id string) (domain.AuditToken, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[id]
	if !ok {
		return domain.AuditToken{}, false
	}
	return copyToken(token), true
}

// GetViewKeys lists address's view keys in issue order.
func (m *Manager) GetViewKeys(address string) []domain.ViewKey {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.ViewKey{}
	for _, k := range m.keyOrder {
		if vk := m.viewKeys[k]; vk.Address == address {
			out = append(out, copyViewKey(vk))
		}
	}
	return out
}

// GetAuditTokens lists address's unrevoked tokens in issue order.
func (m *Manager) GetAuditTokens(address string) []domain.AuditToken {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.AuditToken{}
	for _, id := range m.tokenOrder {
		if t := m.tokens[id]; t.Address == address && !t.Revoked {
			out = append(out, copyToken(t))
		}
	}
	return out
}

// GenerateDisclosure attests that the holder of viewKey was shown
// transactionID. Field decryption is not implemented here, so only the
// owner's address is filled in. The proof is an HMAC binding the pair.
func (m *Manager) GenerateDisclosure(transactionID, viewKey string) (domain.TransactionDisclosure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vk, ok := m.viewKeys[viewKey]
	if !ok {
		return domain.TransactionDisclosure{}, errors.New(errors.CodeInvalidCredential, "unknown view key")
	}
	now := m.cfg.Clock()
	if vk.ExpiresAt != nil && vk.ExpiresAt.Before(now) {
		return domain.TransactionDisclosure{}, errors.New(errors.CodeInvalidCredential, "view key expired")
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(transactionID))
	mac.Write([]byte{'|'})
	mac.Write([]byte(viewKey))

	return domain.TransactionDisclosure{
		TransactionID:     transactionID,
		From:              vk.Address,
		Amount:            big.NewInt(0),
		Token:             domain.NativeMint,
		Timestamp:         now,
		ProofOfCompliance: hex.EncodeToString(mac.Sum(nil)),
	}, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyViewKey(vk *domain.ViewKey) domain.ViewKey {
	c := *vk
	c.ExpiresAt = copyTime(vk.ExpiresAt)
	return c
}

func copyToken(t *domain.AuditToken) domain.AuditToken {
	c := *t
	c.Scope = append([]string{}, t.Scope...)
	c.ExpiresAt = copyTime(t.ExpiresAt)
	return c
}
