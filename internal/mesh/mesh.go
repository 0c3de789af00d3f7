// Package mesh turns voxel buffers into greedy-merged triangle meshes.
package mesh

import "github.com/go-gl/mathgl/mgl32"

// Mesh is an indexed triangle list with per-vertex attributes.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Materials []uint32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// QuadCount returns the number of quads; every quad is two triangles.
func (m *Mesh) QuadCount() int {
	return len(m.Indices) / 6
}

// Empty reports whether the mesh has no geometry.
func (m *Mesh) Empty() bool {
	return len(m.Indices) == 0
}

func (m *Mesh) addQuad(f face, corners [4]mgl32.Vec3, w, h int, material uint32) {
	base := uint32(len(m.Positions))
	uvs := [4]mgl32.Vec2{{0, 0}, {float32(w), 0}, {float32(w), float32(h)}, {0, float32(h)}}
	for i := range corners {
		m.Positions = append(m.Positions, corners[i])
		m.Normals = append(m.Normals, f.normal)
		m.UVs = append(m.UVs, uvs[i])
		m.Materials = append(m.Materials, material)
	}
	if f.sign > 0 {
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	} else {
		m.Indices = append(m.Indices, base, base+2, base+1, base, base+3, base+2)
	}
}
