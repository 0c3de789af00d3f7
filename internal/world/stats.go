package world

import "github.com/go-theft-craft/worldgen/internal/voxel"

// Stats is a snapshot of world counters published once per tick.
type Stats struct {
	Tick           uint64         `json:"tick"`
	Loaded         int            `json:"loaded"`
	Handles        int            `json:"handles"`
	Dirty          int            `json:"dirty"`
	PendingTerrain int            `json:"pending_terrain"`
	PendingMeshes  int            `json:"pending_meshes"`
	Meshed         uint64         `json:"meshed"`
	QueuedTasks    uint64         `json:"queued_tasks"`
	PlayerChunk    voxel.ChunkKey `json:"player_chunk"`
}

// Stats returns the most recently published snapshot. Safe for concurrent use.
func (w *World) Stats() Stats {
	return *w.stats.Load()
}

func (w *World) publishStats(dirty int) {
	w.stats.Store(&Stats{
		Tick:           w.ticks,
		Loaded:         w.chunks.Len(),
		Handles:        w.life.Entities().Len(),
		Dirty:          dirty,
		PendingTerrain: len(w.terrain),
		PendingMeshes:  len(w.meshing),
		Meshed:         w.meshed,
		QueuedTasks:    w.pool.Waiting(),
		PlayerChunk:    w.life.PlayerChunk(),
	})
}
