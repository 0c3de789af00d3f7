// Package storage persists chunk buffers per world.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

// Namespace is the application directory under the platform data root.
const Namespace = ".yavafg"

// ErrInvalidWorldName is returned for world names that are not a single path element.
var ErrInvalidWorldName = errors.New("invalid world name")

// ValidateWorldName rejects names that would escape the saved_worlds directory.
func ValidateWorldName(name string) error {
	switch {
	case name == "", name == ".", strings.Contains(name, ".."):
		return fmt.Errorf("%w %q", ErrInvalidWorldName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w %q: contains a path separator", ErrInvalidWorldName, name)
	}
	return nil
}

// Store saves and loads chunk buffers for one world.
// Load returns (nil, nil) when no chunk was saved at key.
type Store interface {
	Save(ctx context.Context, buf *voxel.Buffer, key voxel.ChunkKey) error
	Load(ctx context.Context, key voxel.ChunkKey) (*voxel.Buffer, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile    = "file"
	BackendLevelDB = "leveldb"
)

// Open creates the store for backend rooted at dataRoot.
func Open(backend, dataRoot, world string, shape voxel.Shape, log *slog.Logger) (Store, error) {
	if err := ValidateWorldName(world); err != nil {
		return nil, err
	}
	codec, err := NewCodec(shape)
	if err != nil {
		return nil, err
	}

	var s Store
	switch backend {
	case BackendFile, "":
		s, err = NewFileStore(dataRoot, world, codec, log)
	case BackendLevelDB:
		s, err = NewLevelStore(dataRoot, world, codec, log)
	default:
		err = fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		codec.Close()
		return nil, err
	}
	return s, nil
}
