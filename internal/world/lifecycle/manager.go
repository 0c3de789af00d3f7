// Package lifecycle decides which chunks exist around the player and
// registers or retires their handles.
package lifecycle

import (
	"log/slog"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

// DefaultRadius is the load and unload radius in chunks.
const DefaultRadius = 8

// Config sets the view radii in chunks.
type Config struct {
	LoadRadius   int
	UnloadRadius int
}

// Manager tracks the player chunk and queues chunk creation and destruction.
// It is driven from the tick goroutine only.
type Manager struct {
	cfg      Config
	entities *Entities
	queue    CommandQueue
	player   voxel.ChunkKey
	log      *slog.Logger
}

// NewManager creates a Manager. Zero radii fall back to DefaultRadius.
func NewManager(cfg Config, log *slog.Logger) *Manager {
	if cfg.LoadRadius <= 0 {
		cfg.LoadRadius = DefaultRadius
	}
	if cfg.UnloadRadius <= 0 {
		cfg.UnloadRadius = DefaultRadius
	}
	return &Manager{
		cfg:      cfg,
		entities: NewEntities(),
		queue:    newCommandQueue(),
		log:      log,
	}
}

// Entities returns the handle registry.
func (m *Manager) Entities() *Entities {
	return m.entities
}

// Queue returns the pending command queue.
func (m *Manager) Queue() *CommandQueue {
	return &m.queue
}

// PlayerChunk returns the key of the chunk the player is in.
func (m *Manager) PlayerChunk() voxel.ChunkKey {
	return m.player
}

// UpdatePlayer records the chunk containing pos.
func (m *Manager) UpdatePlayer(pos mgl32.Vec3) {
	x := int(math.Floor(float64(pos.X())))
	z := int(math.Floor(float64(pos.Z())))
	key := voxel.KeyAt(x, z)
	if key != m.player {
		m.log.Debug("player entered chunk", "chunk", key)
	}
	m.player = key
}

// UpdateView queues creation of missing chunks inside the load circle and
// destruction of loaded chunks beyond the unload circle. Creations are
// ordered nearest first.
func (m *Manager) UpdateView() {
	r := m.cfg.LoadRadius
	for x := -r; x < r; x++ {
		for z := -r; z < r; z++ {
			if x*x+z*z >= r*r {
				continue
			}
			key := m.player.Offset(x, z)
			if _, ok := m.entities.Handle(key); ok {
				continue
			}
			m.queue.queueCreate(key)
		}
	}

	limit := m.cfg.UnloadRadius * voxel.ChunkLen
	for _, key := range m.entities.Keys() {
		dx, dz := key.X-m.player.X, key.Z-m.player.Z
		if dx*dx+dz*dz > limit*limit {
			m.queue.queueDestroy(key)
		}
	}

	slices.SortStableFunc(m.queue.create, func(a, b voxel.ChunkKey) int {
		if d := m.distance(a) - m.distance(b); d != 0 {
			return d
		}
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Z - b.Z
	})
}

func (m *Manager) distance(k voxel.ChunkKey) int {
	dx, dz := (k.X-m.player.X)/voxel.ChunkLen, (k.Z-m.player.Z)/voxel.ChunkLen
	return dx*dx + dz*dz
}

// CreateChunks drains the create queue, attaches a handle per key and
// returns the handles added this call.
func (m *Manager) CreateChunks() []Handle {
	keys := m.queue.drainCreate()
	added := make([]Handle, 0, len(keys))
	for _, key := range keys {
		if _, ok := m.entities.Handle(key); ok {
			continue
		}
		added = append(added, m.entities.Attach(key))
	}
	return added
}

// DestroyChunks drains the destroy queue and returns the detached handles.
func (m *Manager) DestroyChunks() []Handle {
	keys := m.queue.drainDestroy()
	removed := make([]Handle, 0, len(keys))
	for _, key := range keys {
		if h, ok := m.entities.Detach(key); ok {
			removed = append(removed, h)
		}
	}
	return removed
}

// QueueUnload queues destruction of the given loaded chunks.
func (m *Manager) QueueUnload(keys []voxel.ChunkKey) {
	for _, key := range keys {
		if _, ok := m.entities.Handle(key); ok {
			m.queue.queueDestroy(key)
		}
	}
}

// QueueUnloadAll queues destruction of every loaded chunk.
func (m *Manager) QueueUnloadAll() {
	m.QueueUnload(m.entities.Keys())
}
