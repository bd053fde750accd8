package storage

import (
	"context"
	stderrors "errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB persists values in a local goleveldb database.
type LevelDB struct {
	db     *leveldb.DB
	prefix prefixer
	write  *opt.WriteOptions
}

func NewLevelDB(path, namespace string, syncWrites bool) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, storageErr("open leveldb", err)
	}
	return &LevelDB{
		db:     db,
		prefix: prefixer{namespace: namespace},
		write:  &opt.WriteOptions{Sync: syncWrites},
	}, nil
}

func (l *LevelDB) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := l.db.Get([]byte(l.prefix.key(key)), nil)
	if stderrors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("leveldb get", err)
	}
	return v, nil
}

func (l *LevelDB) Set(ctx context.Context, key string, value []byte) error {
	return storageErr("leveldb put", l.db.Put([]byte(l.prefix.key(key)), value, l.write))
}

func (l *LevelDB) Remove(ctx context.Context, key string) error {
	return storageErr("leveldb delete", l.db.Delete([]byte(l.prefix.key(key)), l.write))
}

func (l *LevelDB) Clear(ctx context.Context) error {
	iter := l.db.NewIterator(util.BytesPrefix([]byte(l.prefix.prefix())), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return storageErr("leveldb iterate", err)
	}
	return storageErr("leveldb clear", l.db.Write(batch, l.write))
}

func (l *LevelDB) HasKey(ctx context.Context, key string) (bool, error) {
	ok, err := l.db.Has([]byte(l.prefix.key(key)), nil)
	if err != nil {
		return false, storageErr("leveldb has", err)
	}
	return ok, nil
}

// ListKeys relies on leveldb's ordered iteration, so keys come back sorted.
func (l *LevelDB) ListKeys(ctx context.Context) ([]string, error) {
	iter := l.db.NewIterator(util.BytesPrefix([]byte(l.prefix.prefix())), nil)
	defer iter.Release()
	keys := []string{}
	for iter.Next() {
		keys = append(keys, l.prefix.strip(string(iter.Key())))
	}
	if err := iter.Error(); err != nil {
		return nil, storageErr("leveldb iterate", err)
	}
	return keys, nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
