package world

import (
	"context"

	"github.com/go-theft-craft/worldgen/internal/mesh"
	"github.com/go-theft-craft/worldgen/internal/tasks"
)

// queueMeshes spawns a meshing task for every dirty chunk that still has a
// handle and terrain. A newer task replaces the marker of an older one.
func (w *World) queueMeshes(ctx context.Context) {
	for key := range w.dirty {
		h, ok := w.life.Entities().Handle(key)
		if !ok {
			continue
		}
		buf, ok := w.chunks.BufferAt(key)
		if !ok {
			continue
		}

		seq := w.saver.begin(key)
		scale := w.cfg.MeshScale
		w.meshing[h.ID] = &pending[*mesh.Mesh]{
			handle: h,
			task: tasks.Spawn(w.pool, func() *mesh.Mesh {
				defer w.saver.release(key, seq)
				if err := w.saver.save(ctx, buf, key, seq); err != nil {
					w.log.Debug("save chunk failed", "chunk", key, "error", err)
				}
				return w.meshes.Mesh(buf, scale)
			}),
		}
	}
}

// processMeshes hands finished meshes to the sink.
func (w *World) processMeshes() {
	for id, p := range w.meshing {
		m, done := p.task.Poll()
		if !done {
			continue
		}
		delete(w.meshing, id)

		if err := p.task.Err(); err != nil {
			w.log.Error("meshing task failed", "chunk", p.handle.Key, "error", err)
			continue
		}
		w.sink.UpdateMesh(p.handle.Key, m)
		w.meshed++
	}
}
