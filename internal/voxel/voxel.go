package voxel

// Voxel is a block type ID occupying one grid cell.
type Voxel uint16

// Block IDs. Empty marks an uninitialized cell, Air an intentionally empty one.
const (
	Empty   Voxel = 0
	Air     Voxel = 1
	Rock    Voxel = 2
	Dirt    Voxel = 3
	Grass   Voxel = 4
	Sand    Voxel = 5
	Snow    Voxel = 6
	Bedrock Voxel = 7
	Water   Voxel = 8
)

// Visibility classifies how a voxel takes part in face culling.
type Visibility uint8

const (
	VisibilityEmpty Visibility = iota
	VisibilityTranslucent
	VisibilityOpaque
)

// Visibility reports how the voxel is treated by the mesher.
func (v Voxel) Visibility() Visibility {
	switch v {
	case Empty, Air:
		return VisibilityEmpty
	case Water:
		return VisibilityTranslucent
	default:
		return VisibilityOpaque
	}
}

// MergeValue is the value greedy meshing compares to decide whether two faces merge.
func (v Voxel) MergeValue() uint16 {
	return uint16(v)
}

// MaterialID is the per-vertex material index written into meshes.
func (v Voxel) MaterialID() uint32 {
	return uint32(v)
}

var names = map[Voxel]string{
	Empty:   "empty",
	Air:     "air",
	Rock:    "rock",
	Dirt:    "dirt",
	Grass:   "grass",
	Sand:    "sand",
	Snow:    "snow",
	Bedrock: "bedrock",
	Water:   "water",
}

func (v Voxel) String() string {
	if n, ok := names[v]; ok {
		return n
	}
	return "unknown"
}
