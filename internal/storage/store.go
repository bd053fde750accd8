// Package storage is the key/value capability used for wallet settings,
// spent nullifiers and other small records. Backends are selected by
// configuration and every one of them scopes its keys to a namespace.
package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"umbra/pkg/errors"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = stderrors.New("storage: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Clear removes every key of the store's namespace.
	Clear(ctx context.Context) error
	HasKey(ctx context.Context, key string) (bool, error)
	// ListKeys returns the namespace's keys, without prefix, sorted.
	ListKeys(ctx context.Context) ([]string, error)
	Close() error
}

// GetJSON reads key and decodes it into dest.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.WithCause(errors.CodeStorageError, "decode "+key, err)
	}
	return nil
}

// SetJSON encodes value and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.WithCause(errors.CodeStorageError, "encode "+key, err)
	}
	return s.Set(ctx, key, data)
}

type prefixer struct {
	namespace string
}

func (p prefixer) key(k string) string {
	return p.namespace + ":" + k
}

func (p prefixer) prefix() string {
	return p.namespace + ":"
}

func (p prefixer) strip(k string) string {
	return strings.TrimPrefix(k, p.prefix())
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithCause(errors.CodeStorageError, op, err)
}
