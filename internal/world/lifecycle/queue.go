package lifecycle

import "github.com/go-theft-craft/worldgen/internal/voxel"

// CommandQueue collects pending chunk creations and destructions.
// A key is queued at most once per direction until the queue is drained.
type CommandQueue struct {
	create  []voxel.ChunkKey
	destroy []voxel.ChunkKey

	creating   map[voxel.ChunkKey]struct{}
	destroying map[voxel.ChunkKey]struct{}
}

func newCommandQueue() CommandQueue {
	return CommandQueue{
		creating:   make(map[voxel.ChunkKey]struct{}),
		destroying: make(map[voxel.ChunkKey]struct{}),
	}
}

func (q *CommandQueue) queueCreate(key voxel.ChunkKey) bool {
	if _, ok := q.creating[key]; ok {
		return false
	}
	q.creating[key] = struct{}{}
	q.create = append(q.create, key)
	return true
}

func (q *CommandQueue) queueDestroy(key voxel.ChunkKey) bool {
	if _, ok := q.destroying[key]; ok {
		return false
	}
	q.destroying[key] = struct{}{}
	q.destroy = append(q.destroy, key)
	return true
}

func (q *CommandQueue) drainCreate() []voxel.ChunkKey {
	keys := q.create
	q.create = nil
	clear(q.creating)
	return keys
}

func (q *CommandQueue) drainDestroy() []voxel.ChunkKey {
	keys := q.destroy
	q.destroy = nil
	clear(q.destroying)
	return keys
}

// Pending returns the number of queued creations and destructions.
func (q *CommandQueue) Pending() (create, destroy int) {
	return len(q.create), len(q.destroy)
}
