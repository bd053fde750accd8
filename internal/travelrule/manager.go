// Package travelrule prepares, validates and seals the originator and
// beneficiary record exchanged between VASPs.
package travelrule

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"math/big"
	"time"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"umbra/pkg/config"
	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
	"umbra/pkg/validator"
)

// KeySize is the length of X25519 keys.
const KeySize = 32

type Manager struct {
	vaspOrigin      string
	vaspBeneficiary string
	validate        *validator.Validator
	clock           func() time.Time
	rand            io.Reader
	logger          logger.Logger
}

func NewManager(cfg config.TravelRuleConfig, log logger.Logger) *Manager {
	return &Manager{
		vaspOrigin:      cfg.VASPOrigin,
		vaspBeneficiary: cfg.VASPBeneficiary,
		validate:        validator.New(),
		clock:           time.Now,
		rand:            rand.Reader,
		logger:          log,
	}
}

// Prepare builds a record stamped with the current time and the configured
// VASP identifiers.
func (m *Manager) Prepare(originatorName, originatorAddress, beneficiaryName, beneficiaryAddress string, amount *big.Int, token string) domain.TravelRuleData {
	var amt *big.Int
	if amount != nil {
		amt = new(big.Int).Set(amount)
	}
	return domain.TravelRuleData{
		OriginatorName:     originatorName,
		OriginatorAddress:  originatorAddress,
		BeneficiaryName:    beneficiaryName,
		BeneficiaryAddress: beneficiaryAddress,
		Amount:             amt,
		Token:              token,
		Timestamp:          m.clock().UTC(),
		VASPOrigin:         m.vaspOrigin,
		VASPBeneficiary:    m.vaspBeneficiary,
	}
}

// Validate is true when both parties are named with an address and the
// amount is positive.
func (m *Manager) Validate(data domain.TravelRuleData) bool {
	if err := m.validate.Validate(data); err != nil {
		m.logger.Debug("Travel rule record rejected", map[string]interface{}{
			"fields": m.validate.FailedFields(data),
		})
		return false
	}
	return true
}

// GenerateKeyPair returns a base64 X25519 key pair for a VASP.
func (m *Manager) GenerateKeyPair() (publicKey, privateKey string, err error) {
	pub, priv, err := box.GenerateKey(m.rand)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to generate travel rule key pair")
	}
	return base64.StdEncoding.EncodeToString(pub[:]), base64.StdEncoding.EncodeToString(priv[:]), nil
}

// Encrypt seals data to the recipient VASP's public key with an anonymous
// NaCl box. Only the holder of the matching private key can open it.
func (m *Manager) Encrypt(data domain.TravelRuleData, recipientPublicKey string) (string, error) {
	pub, err := decodeKey(recipientPublicKey)
	if err != nil {
		return "", errors.WithCause(errors.CodeInvalidCredential, "invalid recipient public key", err)
	}
	plain, err := json.Marshal(data)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode travel rule data")
	}
	sealed, err := box.SealAnonymous(nil, plain, pub, m.rand)
	if err != nil {
		return "", errors.Wrap(err, "failed to seal travel rule data")
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a payload produced by Encrypt. The public key is derived
// from privateKey.
func (m *Manager) Decrypt(ciphertext, privateKey string) (domain.TravelRuleData, error) {
	priv, err := decodeKey(privateKey)
	if err != nil {
		return domain.TravelRuleData{}, errors.WithCause(errors.CodeInvalidCredential, "invalid private key", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return domain.TravelRuleData{}, errors.WithCause(errors.CodeDecryptionFailed, "ciphertext is not base64", err)
	}

	pubRaw, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return domain.TravelRuleData{}, errors.WithCause(errors.CodeInvalidCredential, "invalid private key", err)
	}
	var pub [KeySize]byte
	copy(pub[:], pubRaw)

	plain, ok := box.OpenAnonymous(nil, sealed, &pub, priv)
	if !ok {
		return domain.TravelRuleData{}, errors.New(errors.CodeDecryptionFailed, "travel rule payload could not be opened")
	}

	var data domain.TravelRuleData
	if err := json.Unmarshal(plain, &data); err != nil {
		return domain.TravelRuleData{}, errors.WithCause(errors.CodeDecryptionFailed, "invalid travel rule payload", err)
	}
	return data, nil
}

func decodeKey(s string) (*[KeySize]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != KeySize {
		return nil, errors.Newf(errors.CodeInvalidCredential, "key must be %d bytes, got %d", KeySize, len(raw))
	}
	var key [KeySize]byte
	copy(key[:], raw)
	return &key, nil
}
