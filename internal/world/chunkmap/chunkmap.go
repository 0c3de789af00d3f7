// Package chunkmap holds the loaded chunk buffers keyed by chunk origin.
package chunkmap

import (
	"sync"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

// Map is a concurrent map from chunk key to voxel buffer.
// Readers get cloned snapshots; edits run under the write lock.
type Map struct {
	mu     sync.RWMutex
	chunks map[voxel.ChunkKey]*voxel.Buffer
}

// New creates an empty Map.
func New() *Map {
	return &Map{chunks: make(map[voxel.ChunkKey]*voxel.Buffer)}
}

// Insert installs buf at key, replacing any previous buffer. The map takes ownership of buf.
func (m *Map) Insert(key voxel.ChunkKey, buf *voxel.Buffer) {
	m.mu.Lock()
	m.chunks[key] = buf
	m.mu.Unlock()
}

// BufferAt returns a copy of the buffer at key.
func (m *Map) BufferAt(key voxel.ChunkKey) (*voxel.Buffer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.chunks[key]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// View calls fn with the buffer at key under the read lock.
// fn must not retain or modify the buffer.
func (m *Map) View(key voxel.ChunkKey, fn func(*voxel.Buffer)) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.chunks[key]
	if !ok {
		return false
	}
	fn(b)
	return true
}

// Edit runs fn on the buffer at key under the write lock.
// It returns false if no chunk is stored at key.
func (m *Map) Edit(key voxel.ChunkKey, fn func(*voxel.Buffer)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.chunks[key]
	if !ok {
		return false
	}
	fn(b)
	return true
}

// Remove deletes the buffer at key.
func (m *Map) Remove(key voxel.ChunkKey) {
	m.mu.Lock()
	delete(m.chunks, key)
	m.mu.Unlock()
}

// Contains reports whether a buffer is stored at key.
func (m *Map) Contains(key voxel.ChunkKey) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.chunks[key]
	return ok
}

// Len returns the number of stored chunks.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Keys returns the stored chunk keys in no particular order.
func (m *Map) Keys() []voxel.ChunkKey {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]voxel.ChunkKey, 0, len(m.chunks))
	for k := range m.chunks {
		keys = append(keys, k)
	}
	return keys
}
