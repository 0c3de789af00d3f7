// Package worldfetch imports saved worlds from local or remote sources.
package worldfetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"

	"github.com/go-theft-craft/worldgen/internal/voxel"
	"github.com/go-theft-craft/worldgen/internal/world/storage"
)

// ErrWorldExists is returned when the target world is present and replace was not requested.
var ErrWorldExists = errors.New("world already exists")

// Fetcher downloads a directory of chunk files into the saved_worlds tree.
type Fetcher struct {
	dataRoot string
	log      *slog.Logger

	// Getters overrides the go-getter protocol table; nil means the defaults.
	Getters map[string]getter.Getter
}

// New creates a Fetcher writing under dataRoot.
func New(dataRoot string, log *slog.Logger) *Fetcher {
	return &Fetcher{dataRoot: dataRoot, log: log}
}

// Fetch downloads src (any go-getter URL: local path, git::, s3::, http archive)
// and installs it as world. Every chunk file is decoded before the world is
// installed. It returns the number of chunks imported.
func (f *Fetcher) Fetch(ctx context.Context, src, world string, replace bool) (int, error) {
	if err := storage.ValidateWorldName(world); err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	dest := storage.WorldDir(f.dataRoot, world)
	if _, err := os.Stat(dest); err == nil && !replace {
		return 0, fmt.Errorf("fetch %s: %w", world, ErrWorldExists)
	}

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return 0, fmt.Errorf("create directory %s: %w", parent, err)
	}
	staging, err := os.MkdirTemp(parent, "."+world+"-fetch-")
	if err != nil {
		return 0, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	pwd, err := os.Getwd()
	if err != nil {
		return 0, fmt.Errorf("get working directory: %w", err)
	}

	tmp := filepath.Join(staging, world)
	f.log.Info("start downloading world", "src", src, "world", world)
	client := &getter.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     tmp,
		Pwd:     pwd,
		Mode:    getter.ClientModeDir,
		Getters: f.Getters,
	}
	if err := client.Get(); err != nil {
		return 0, fmt.Errorf("download %s: %w", src, err)
	}

	n, err := verify(tmp)
	if err != nil {
		return 0, err
	}

	if err := os.RemoveAll(dest); err != nil {
		return 0, fmt.Errorf("remove old world: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return 0, fmt.Errorf("install world: %w", err)
	}
	f.log.Info("done downloading world", "world", world, "chunks", n, "path", dest)
	return n, nil
}

// verify decodes every chunk file in dir and returns how many there are.
func verify(dir string) (int, error) {
	codec, err := storage.NewCodec(voxel.ChunkShape)
	if err != nil {
		return 0, err
	}
	defer codec.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read downloaded world: %w", err)
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".chunk") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if _, err := codec.Decode(data); err != nil {
			return 0, fmt.Errorf("verify %s: %w", e.Name(), err)
		}
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("no chunk files in %s", dir)
	}
	return n, nil
}
