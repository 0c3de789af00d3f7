package world

import "github.com/go-theft-craft/worldgen/internal/voxel"

// SetVoxel writes v at world block position (x, y, z) and marks the chunk
// dirty. It returns false if the chunk is not loaded or y is out of range.
func (w *World) SetVoxel(x, y, z int, v voxel.Voxel) bool {
	key, local := voxel.Local(x, y, z)
	if y < 0 || y >= w.gen.Shape().Y {
		return false
	}
	ok := w.chunks.Edit(key, func(b *voxel.Buffer) {
		b.Set(local, v)
	})
	if ok {
		w.markDirty(key)
	}
	return ok
}

// VoxelAt returns the voxel at world block position (x, y, z).
func (w *World) VoxelAt(x, y, z int) (voxel.Voxel, bool) {
	key, local := voxel.Local(x, y, z)
	if y < 0 || y >= w.gen.Shape().Y {
		return voxel.Empty, false
	}
	var v voxel.Voxel
	ok := w.chunks.View(key, func(b *voxel.Buffer) {
		v = b.At(local)
	})
	return v, ok
}

// PlaceBlock puts v at (x, y, z) if the cell is currently empty.
func (w *World) PlaceBlock(x, y, z int, v voxel.Voxel) bool {
	cur, ok := w.VoxelAt(x, y, z)
	if !ok || cur.Visibility() != voxel.VisibilityEmpty {
		return false
	}
	return w.SetVoxel(x, y, z, v)
}

// RemoveBlock replaces the block at (x, y, z) with air. Bedrock cannot be removed.
func (w *World) RemoveBlock(x, y, z int) bool {
	cur, ok := w.VoxelAt(x, y, z)
	if !ok || cur == voxel.Bedrock || cur.Visibility() == voxel.VisibilityEmpty {
		return false
	}
	return w.SetVoxel(x, y, z, voxel.Air)
}
