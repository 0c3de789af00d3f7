package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

// LevelStore keeps compressed chunks in a LevelDB database shared by all
// worlds under the data root, keyed "<world>/<x>.<z>".
type LevelStore struct {
	db    *leveldb.DB
	world string
	codec *Codec
	log   *slog.Logger
}

// NewLevelStore opens (or creates) <dataRoot>/.yavafg/chunks.ldb.
func NewLevelStore(dataRoot, world string, codec *Codec, log *slog.Logger) (*LevelStore, error) {
	dir := filepath.Join(dataRoot, Namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, "chunks.ldb")
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	log.Info("opened chunk database", "path", path, "world", world)
	return &LevelStore{db: db, world: world, codec: codec, log: log}, nil
}

func (s *LevelStore) dbKey(key voxel.ChunkKey) []byte {
	return []byte(fmt.Sprintf("%s/%d.%d", s.world, key.X, key.Z))
}

// Save stores buf under key.
func (s *LevelStore) Save(ctx context.Context, buf *voxel.Buffer, key voxel.ChunkKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.codec.Encode(buf)
	if err != nil {
		return err
	}
	if err := s.db.Put(s.dbKey(key), data, nil); err != nil {
		return fmt.Errorf("put chunk %s: %w", key, err)
	}
	return nil
}

// Load reads the chunk at key, or returns nil if it was never saved.
func (s *LevelStore) Load(ctx context.Context, key voxel.ChunkKey) (*voxel.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.db.Get(s.dbKey(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chunk %s: %w", key, err)
	}
	buf, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse chunk %s: %w", key, err)
	}
	return buf, nil
}

// Close closes the database and the codec.
func (s *LevelStore) Close() error {
	s.codec.Close()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close leveldb: %w", err)
	}
	return nil
}
