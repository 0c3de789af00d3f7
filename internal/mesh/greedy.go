package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

// face describes one of the six quad orientations. d is the axis the face
// points along; u and v span the face plane with u x v = +d.
type face struct {
	d, u, v int
	sign    int
	normal  mgl32.Vec3
}

var faces = [6]face{
	{d: 0, u: 1, v: 2, sign: -1, normal: mgl32.Vec3{-1, 0, 0}},
	{d: 0, u: 1, v: 2, sign: 1, normal: mgl32.Vec3{1, 0, 0}},
	{d: 1, u: 2, v: 0, sign: -1, normal: mgl32.Vec3{0, -1, 0}},
	{d: 1, u: 2, v: 0, sign: 1, normal: mgl32.Vec3{0, 1, 0}},
	{d: 2, u: 0, v: 1, sign: -1, normal: mgl32.Vec3{0, 0, -1}},
	{d: 2, u: 0, v: 1, sign: 1, normal: mgl32.Vec3{0, 0, 1}},
}

// faceVisible reports whether a face of a is drawn against neighbour b.
func faceVisible(a, b voxel.Voxel) bool {
	va, vb := a.Visibility(), b.Visibility()
	if va == voxel.VisibilityEmpty {
		return false
	}
	return vb == voxel.VisibilityEmpty || (va == voxel.VisibilityOpaque && vb == voxel.VisibilityTranslucent)
}

// Build meshes src using s as working memory. Positions are chunk-local
// and multiplied by scale. Cells outside src count as empty, so faces on
// the chunk boundary are always emitted.
func Build(src *voxel.Buffer, s *Scratch, scale float32) *Mesh {
	s.load(src)
	shape := src.Shape()
	dims := [3]int{shape.X, shape.Y, shape.Z}

	m := &Mesh{}
	for _, f := range faces {
		s.greedy(m, f, dims, scale)
	}
	return m
}

func (s *Scratch) greedy(m *Mesh, f face, dims [3]int, scale float32) {
	nu, nv := dims[f.u], dims[f.v]
	mask := s.mask[:nu*nv]

	for layer := 0; layer < dims[f.d]; layer++ {
		// Padded coordinates: source cell c lives at c+1.
		var p [3]int
		p[f.d] = layer + 1
		for iv := 0; iv < nv; iv++ {
			p[f.v] = iv + 1
			for iu := 0; iu < nu; iu++ {
				p[f.u] = iu + 1
				q := p
				q[f.d] += f.sign
				a := s.at(p)
				if faceVisible(a, s.at(q)) {
					mask[iv*nu+iu] = uint32(a.MergeValue()) + 1
				} else {
					mask[iv*nu+iu] = 0
				}
			}
		}

		plane := layer
		if f.sign > 0 {
			plane = layer + 1
		}

		for iv := 0; iv < nv; iv++ {
			for iu := 0; iu < nu; {
				val := mask[iv*nu+iu]
				if val == 0 {
					iu++
					continue
				}

				w := 1
				for iu+w < nu && mask[iv*nu+iu+w] == val {
					w++
				}
				h := 1
			grow:
				for iv+h < nv {
					for k := 0; k < w; k++ {
						if mask[(iv+h)*nu+iu+k] != val {
							break grow
						}
					}
					h++
				}
				for dv := 0; dv < h; dv++ {
					for du := 0; du < w; du++ {
						mask[(iv+dv)*nu+iu+du] = 0
					}
				}

				// The quad minimum sits one cell past the source minimum in the padded grid.
				var lo [3]int
				lo[f.d], lo[f.u], lo[f.v] = layer+1, iu+1, iv+1
				material := s.at(lo).MaterialID()

				m.addQuad(f, quadCorners(f, plane, iu, iv, w, h, scale), w, h, material)
				iu += w
			}
		}
	}
}

// quadCorners returns the corners in u-then-v order starting at the quad minimum.
func quadCorners(f face, plane, iu, iv, w, h int, scale float32) [4]mgl32.Vec3 {
	var base, du, dv mgl32.Vec3
	base[f.d] = float32(plane)
	base[f.u] = float32(iu)
	base[f.v] = float32(iv)
	du[f.u] = float32(w)
	dv[f.v] = float32(h)
	return [4]mgl32.Vec3{
		base.Mul(scale),
		base.Add(du).Mul(scale),
		base.Add(du).Add(dv).Mul(scale),
		base.Add(dv).Mul(scale),
	}
}
