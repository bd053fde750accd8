package storage

import (
	"context"

	"umbra/pkg/config"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

// New opens the backend named by cfg.Storage.Backend, wrapped in Encrypted
// when an encryption key is configured.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	sc := cfg.Storage
	var (
		s   Store
		err error
	)

	switch sc.Backend {
	case "memory", "":
		s = NewMemory(sc.Namespace)
	case "leveldb":
		s, err = NewLevelDB(sc.Path, sc.Namespace, sc.SyncWrites)
	case "redis":
		s, err = NewRedis(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, sc.Namespace)
	case "postgres":
		db, dbErr := OpenPostgres(ctx, cfg.Database)
		if dbErr != nil {
			return nil, dbErr
		}
		s = NewPostgres(db, sc.Namespace)
	default:
		return nil, errors.Newf(errors.CodeInvalidStorageType, "unknown storage backend %q", sc.Backend)
	}
	if err != nil {
		return nil, err
	}

	if sc.EncryptionKey != "" {
		enc, err := NewEncrypted(s, sc.EncryptionKey)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s = enc
	}

	log.Info("Storage opened", map[string]interface{}{
		"backend":   sc.Backend,
		"namespace": sc.Namespace,
		"encrypted": sc.EncryptionKey != "",
	})
	return s, nil
}
