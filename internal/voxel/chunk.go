package voxel

import "fmt"

// Chunk dimensions in voxels.
const (
	ChunkLen    = 32
	ChunkHeight = 256
)

// ChunkShape is the shape of every chunk buffer.
var ChunkShape = Shape{X: ChunkLen, Y: ChunkHeight, Z: ChunkLen}

// ChunkKey identifies a chunk by its origin in block units.
// Y is always 0; X and Z are multiples of ChunkLen.
type ChunkKey struct {
	X, Y, Z int
}

func (k ChunkKey) String() string {
	return fmt.Sprintf("%d.%d", k.X, k.Z)
}

// KeyAt returns the key of the chunk containing world block column (x, z).
func KeyAt(x, z int) ChunkKey {
	return ChunkKey{X: floorDiv(x, ChunkLen) * ChunkLen, Z: floorDiv(z, ChunkLen) * ChunkLen}
}

// Local converts a world block position into the chunk key and the position inside that chunk.
func Local(x, y, z int) (ChunkKey, Pos) {
	k := KeyAt(x, z)
	return k, Pos{X: x - k.X, Y: y, Z: z - k.Z}
}

// Offset returns the key dx, dz chunks away from k.
func (k ChunkKey) Offset(dx, dz int) ChunkKey {
	return ChunkKey{X: k.X + dx*ChunkLen, Y: k.Y, Z: k.Z + dz*ChunkLen}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
