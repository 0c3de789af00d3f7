package mesh

import "github.com/go-theft-craft/worldgen/internal/voxel"

// Scratch is the reusable working memory of one meshing run: a copy of
// the source buffer padded by one empty cell on every side, plus the
// per-layer face mask.
type Scratch struct {
	padded *voxel.Buffer
	mask   []uint32
	shape  voxel.Shape
}

// NewScratch allocates working memory for sources of the given shape.
func NewScratch(shape voxel.Shape) *Scratch {
	return &Scratch{
		padded: voxel.NewEmpty(shape.Padded()),
		mask:   make([]uint32, max(shape.X*shape.Y, shape.Y*shape.Z, shape.X*shape.Z)),
		shape:  shape,
	}
}

// load copies src into the padded interior. The border is never written and stays empty.
func (s *Scratch) load(src *voxel.Buffer) {
	if src.Shape() != s.shape {
		panic("mesh: scratch shape does not match source")
	}
	ps := s.padded.Shape()
	dst := s.padded.Voxels()
	data := src.Voxels()
	for z := 0; z < s.shape.Z; z++ {
		for y := 0; y < s.shape.Y; y++ {
			from := s.shape.Linearize(voxel.Pos{Y: y, Z: z})
			to := ps.Linearize(voxel.Pos{X: 1, Y: y + 1, Z: z + 1})
			copy(dst[to:to+s.shape.X], data[from:from+s.shape.X])
		}
	}
}

func (s *Scratch) at(p [3]int) voxel.Voxel {
	return s.padded.At(voxel.Pos{X: p[0], Y: p[1], Z: p[2]})
}

// BufferPool is a fixed set of scratch buffers shared by meshing workers.
// Size it to the worker count so a running task never waits.
type BufferPool struct {
	free chan *Scratch
}

// NewBufferPool allocates n scratch buffers for sources of the given shape.
func NewBufferPool(n int, shape voxel.Shape) *BufferPool {
	p := &BufferPool{free: make(chan *Scratch, n)}
	for range n {
		p.free <- NewScratch(shape)
	}
	return p
}

// Get checks out a scratch buffer, blocking until one is free.
func (p *BufferPool) Get() *Scratch {
	return <-p.free
}

// Put returns a scratch buffer to the pool.
func (p *BufferPool) Put(s *Scratch) {
	p.free <- s
}

// Mesh builds src with a pooled scratch buffer.
func (p *BufferPool) Mesh(src *voxel.Buffer, scale float32) *Mesh {
	s := p.Get()
	defer p.Put(s)
	return Build(src, s, scale)
}
