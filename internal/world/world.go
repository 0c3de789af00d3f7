// Package world keeps the loaded chunk set consistent with the player
// position and drives terrain generation and meshing off the tick goroutine.
package world

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/worldgen/internal/mesh"
	"github.com/go-theft-craft/worldgen/internal/tasks"
	"github.com/go-theft-craft/worldgen/internal/voxel"
	"github.com/go-theft-craft/worldgen/internal/world/chunkmap"
	"github.com/go-theft-craft/worldgen/internal/world/gen"
	"github.com/go-theft-craft/worldgen/internal/world/lifecycle"
	"github.com/go-theft-craft/worldgen/internal/world/storage"
)

// MeshSink receives finished chunk meshes.
type MeshSink interface {
	UpdateMesh(key voxel.ChunkKey, m *mesh.Mesh)
	RemoveMesh(key voxel.ChunkKey)
}

// PositionSource reports the player position in block units.
type PositionSource interface {
	Position() mgl32.Vec3
}

// Config holds the world settings.
type Config struct {
	Name         string
	LoadRadius   int
	UnloadRadius int
	MeshScale    float32
}

// World owns the chunk map, the dirty set and the pending task markers.
// Tick and the edit methods must be called from a single goroutine.
type World struct {
	cfg    Config
	log    *slog.Logger
	chunks *chunkmap.Map
	gen    *gen.Generator
	store  storage.Store
	saver  *saver
	pool   *tasks.Pool
	meshes *mesh.BufferPool
	life   *lifecycle.Manager
	player PositionSource
	sink   MeshSink

	dirty   map[voxel.ChunkKey]struct{}
	terrain map[uint64]*pending[*voxel.Buffer]
	meshing map[uint64]*pending[*mesh.Mesh]

	ticks  uint64
	meshed uint64
	stats  atomic.Pointer[Stats]
}

// pending marks a task spawned for a chunk handle.
type pending[T any] struct {
	handle lifecycle.Handle
	task   *tasks.Task[T]
}

// New creates a World. Chunks are generated by generator and persisted to store.
func New(cfg Config, generator *gen.Generator, store storage.Store, pool *tasks.Pool, player PositionSource, sink MeshSink, log *slog.Logger) *World {
	if cfg.MeshScale == 0 {
		cfg.MeshScale = 1
	}
	w := &World{
		cfg:     cfg,
		log:     log,
		chunks:  chunkmap.New(),
		gen:     generator,
		store:   store,
		saver:   newSaver(store),
		pool:    pool,
		meshes:  mesh.NewBufferPool(pool.Workers(), generator.Shape()),
		life:    lifecycle.NewManager(lifecycle.Config{LoadRadius: cfg.LoadRadius, UnloadRadius: cfg.UnloadRadius}, log),
		player:  player,
		sink:    sink,
		dirty:   make(map[voxel.ChunkKey]struct{}),
		terrain: make(map[uint64]*pending[*voxel.Buffer]),
		meshing: make(map[uint64]*pending[*mesh.Mesh]),
	}
	w.stats.Store(&Stats{})
	return w
}

// Tick runs one world update: view update and chunk creation, terrain
// scheduling, meshing, chunk destruction and finally the dirty-set clear.
func (w *World) Tick(ctx context.Context) {
	w.ticks++

	w.life.UpdatePlayer(w.player.Position())
	w.life.UpdateView()
	added := w.life.CreateChunks()

	w.queueTerrain(ctx, added)
	w.wrapUpTerrain()

	w.queueMeshes(ctx)
	w.processMeshes()

	w.destroy(w.life.DestroyChunks())

	dirty := len(w.dirty)
	clear(w.dirty)
	w.publishStats(dirty)
}

// destroy removes the chunks of retired handles. In-flight tasks for them
// run to completion but their results are dropped with the markers.
func (w *World) destroy(removed []lifecycle.Handle) {
	for _, h := range removed {
		w.chunks.Remove(h.Key)
		delete(w.dirty, h.Key)
		delete(w.terrain, h.ID)
		delete(w.meshing, h.ID)
		w.sink.RemoveMesh(h.Key)
	}
	if len(removed) > 0 {
		w.log.Debug("unloaded chunks", "count", len(removed))
	}
}

// UnloadAll queues every loaded chunk for destruction. The next Tick
// meshes and saves dirty chunks before retiring them.
func (w *World) UnloadAll() {
	w.life.QueueUnloadAll()
}

// Shutdown saves every dirty chunk and retires all chunks without waiting
// for a tick. The saves run on the pool; stop the pool to wait for them.
func (w *World) Shutdown(ctx context.Context) {
	w.saveDirty(ctx)
	w.life.QueueUnloadAll()
	w.destroy(w.life.DestroyChunks())
	w.publishStats(len(w.dirty))
}

// saveDirty spawns a best-effort save for each dirty chunk still in memory.
func (w *World) saveDirty(ctx context.Context) {
	for key := range w.dirty {
		buf, ok := w.chunks.BufferAt(key)
		if !ok {
			continue
		}
		seq := w.saver.begin(key)
		tasks.Spawn(w.pool, func() struct{} {
			defer w.saver.release(key, seq)
			if err := w.saver.save(ctx, buf, key, seq); err != nil {
				w.log.Warn("save chunk on shutdown failed", "chunk", key, "error", err)
			}
			return struct{}{}
		})
	}
}

// LoadedCount returns the number of chunks with terrain in memory.
func (w *World) LoadedCount() int {
	return w.chunks.Len()
}

// LoadedChunks returns the keys of chunks with terrain in memory.
func (w *World) LoadedChunks() []voxel.ChunkKey {
	return w.chunks.Keys()
}

// DirtyCount returns the number of chunks awaiting a remesh.
func (w *World) DirtyCount() int {
	return len(w.dirty)
}

// Generator returns the terrain generator.
func (w *World) Generator() *gen.Generator {
	return w.gen
}

func (w *World) markDirty(key voxel.ChunkKey) {
	w.dirty[key] = struct{}{}
}
