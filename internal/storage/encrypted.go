package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"io"

	"umbra/pkg/errors"
)

// Encrypted seals values with AES-256-GCM before handing them to the
// wrapped store. Keys stay in the clear so listing still works.
type Encrypted struct {
	Store
	aead cipher.AEAD
}

// NewEncrypted wraps inner with a 32 byte key given as 64 hex characters.
func NewEncrypted(inner Store, hexKey string) (*Encrypted, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != 32 {
		return nil, errors.New(errors.CodeStorageError, "invalid encryption key format")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, storageErr("init cipher", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, storageErr("init gcm", err)
	}
	return &Encrypted{Store: inner, aead: aead}, nil
}

func (e *Encrypted) Set(ctx context.Context, key string, value []byte) error {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return storageErr("read nonce", err)
	}
	// the key is bound as associated data so values cannot be swapped
	sealed := e.aead.Seal(nonce, nonce, value, []byte(key))
	return e.Store.Set(ctx, key, sealed)
}

func (e *Encrypted) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := e.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New(errors.CodeDecryptionFailed, "ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plain, err := e.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, errors.WithCause(errors.CodeDecryptionFailed, "open "+key, err)
	}
	return plain, nil
}
