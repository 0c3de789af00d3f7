package sandbox

import (
	"sync"
	"sync/atomic"

	"github.com/go-theft-craft/worldgen/internal/mesh"
	"github.com/go-theft-craft/worldgen/internal/voxel"
)

// MeshStats is a mesh sink that keeps geometry counts instead of GPU buffers.
type MeshStats struct {
	mu     sync.RWMutex
	quads  map[voxel.ChunkKey]int
	total  atomic.Int64
	builds atomic.Uint64
}

// NewMeshStats creates an empty sink.
func NewMeshStats() *MeshStats {
	return &MeshStats{quads: make(map[voxel.ChunkKey]int)}
}

func (s *MeshStats) UpdateMesh(key voxel.ChunkKey, m *mesh.Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total.Add(int64(m.QuadCount() - s.quads[key]))
	s.quads[key] = m.QuadCount()
	s.builds.Add(1)
}

func (s *MeshStats) RemoveMesh(key voxel.ChunkKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total.Add(-int64(s.quads[key]))
	delete(s.quads, key)
}

// Chunks returns the number of chunks with a mesh.
func (s *MeshStats) Chunks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quads)
}

// Quads returns the number of quads across all chunk meshes.
func (s *MeshStats) Quads() int64 {
	return s.total.Load()
}

// Builds returns how many meshes have been delivered.
func (s *MeshStats) Builds() uint64 {
	return s.builds.Load()
}
