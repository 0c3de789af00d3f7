package world

import (
	"context"

	"github.com/go-theft-craft/worldgen/internal/tasks"
	"github.com/go-theft-craft/worldgen/internal/voxel"
	"github.com/go-theft-craft/worldgen/internal/world/lifecycle"
)

// queueTerrain spawns one load-or-generate task per newly added handle.
func (w *World) queueTerrain(ctx context.Context, added []lifecycle.Handle) {
	for _, h := range added {
		key := h.Key
		seq := w.saver.begin(key)
		w.terrain[h.ID] = &pending[*voxel.Buffer]{
			handle: h,
			task: tasks.Spawn(w.pool, func() *voxel.Buffer {
				return w.loadOrGenerate(ctx, key, seq)
			}),
		}
	}
}

// loadOrGenerate runs on a worker. A stored chunk wins; otherwise the chunk
// is generated and saved. Storage errors fall back to generation. Saves
// queued for key before this load land first, so a quick unload and reload
// reads the latest edit.
func (w *World) loadOrGenerate(ctx context.Context, key voxel.ChunkKey, seq uint64) *voxel.Buffer {
	defer w.saver.release(key, seq)
	w.saver.waitBefore(key, seq)

	buf, err := w.store.Load(ctx, key)
	if err != nil {
		w.log.Warn("load chunk failed, regenerating", "chunk", key, "error", err)
	}
	if buf != nil {
		return buf
	}

	buf = w.gen.Generate(key)
	if err := w.saver.save(ctx, buf, key, seq); err != nil {
		w.log.Debug("save generated chunk failed", "chunk", key, "error", err)
	}
	return buf
}

// wrapUpTerrain commits finished terrain tasks: insert into the chunk map, then mark dirty.
func (w *World) wrapUpTerrain() {
	for id, p := range w.terrain {
		buf, done := p.task.Poll()
		if !done {
			continue
		}
		delete(w.terrain, id)

		if err := p.task.Err(); err != nil {
			w.log.Error("terrain task failed", "chunk", p.handle.Key, "error", err)
			continue
		}
		if !w.life.Entities().Alive(p.handle) {
			continue
		}
		w.chunks.Insert(p.handle.Key, buf)
		w.markDirty(p.handle.Key)
	}
}
