package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

// FileStore keeps one compressed file per chunk under
// <dataRoot>/.yavafg/saved_worlds/<world>/<x>.<z>.chunk.
type FileStore struct {
	dir   string
	codec *Codec
	log   *slog.Logger
}

// WorldDir returns the directory holding the chunk files of world.
func WorldDir(dataRoot, world string) string {
	return filepath.Join(dataRoot, Namespace, "saved_worlds", world)
}

// NewFileStore creates the world directory if needed.
func NewFileStore(dataRoot, world string, codec *Codec, log *slog.Logger) (*FileStore, error) {
	dir := WorldDir(dataRoot, world)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, codec: codec, log: log}, nil
}

// Dir returns the world directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file that stores the chunk at key.
func (s *FileStore) Path(key voxel.ChunkKey) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.%d.chunk", key.X, key.Z))
}

// Save writes buf atomically, replacing any previous file for key.
func (s *FileStore) Save(ctx context.Context, buf *voxel.Buffer, key voxel.ChunkKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.codec.Encode(buf)
	if err != nil {
		return err
	}
	return s.atomicWrite(s.Path(key), data)
}

// Load reads the chunk at key, or returns nil if it was never saved.
func (s *FileStore) Load(ctx context.Context, key voxel.ChunkKey) (*voxel.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read chunk %s: %w", key, err)
	}
	buf, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse chunk %s: %w", key, err)
	}
	return buf, nil
}

// Close releases the codec.
func (s *FileStore) Close() error {
	s.codec.Close()
	return nil
}

// atomicWrite writes data to a temp file in the same directory and renames it over path.
// Each write gets its own temp file so concurrent saves of one chunk do not collide.
func (s *FileStore) atomicWrite(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
