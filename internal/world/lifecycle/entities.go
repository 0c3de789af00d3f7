package lifecycle

import "github.com/go-theft-craft/worldgen/internal/voxel"

// Handle registers a loaded chunk. IDs are never reused, so a chunk that is
// unloaded and loaded again gets a different handle.
type Handle struct {
	ID  uint64
	Key voxel.ChunkKey
}

// Entities maps chunk keys to their live handles. At most one handle exists per key.
type Entities struct {
	byKey  map[voxel.ChunkKey]Handle
	nextID uint64
}

// NewEntities creates an empty registry.
func NewEntities() *Entities {
	return &Entities{byKey: make(map[voxel.ChunkKey]Handle)}
}

// Handle returns the live handle for key.
func (e *Entities) Handle(key voxel.ChunkKey) (Handle, bool) {
	h, ok := e.byKey[key]
	return h, ok
}

// Alive reports whether h is still the registered handle for its key.
func (e *Entities) Alive(h Handle) bool {
	cur, ok := e.byKey[h.Key]
	return ok && cur.ID == h.ID
}

// Attach registers a new handle for key. Attaching an already registered key panics.
func (e *Entities) Attach(key voxel.ChunkKey) Handle {
	if _, ok := e.byKey[key]; ok {
		panic("lifecycle: chunk " + key.String() + " already has a handle")
	}
	e.nextID++
	h := Handle{ID: e.nextID, Key: key}
	e.byKey[key] = h
	return h
}

// Detach removes the handle for key.
func (e *Entities) Detach(key voxel.ChunkKey) (Handle, bool) {
	h, ok := e.byKey[key]
	if ok {
		delete(e.byKey, key)
	}
	return h, ok
}

// Keys returns the registered keys in no particular order.
func (e *Entities) Keys() []voxel.ChunkKey {
	keys := make([]voxel.ChunkKey, 0, len(e.byKey))
	for k := range e.byKey {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of registered handles.
func (e *Entities) Len() int {
	return len(e.byKey)
}
