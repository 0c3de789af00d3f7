package voxel

import "fmt"

// Pos is a local position inside a buffer.
type Pos struct {
	X, Y, Z int
}

// Shape describes the dimensions of a dense voxel grid.
type Shape struct {
	X, Y, Z int
}

// Size returns the number of cells in the shape.
func (s Shape) Size() int {
	return s.X * s.Y * s.Z
}

// Linearize maps a local position to its index in the flat array.
// Index = x + X*(y + Y*z).
func (s Shape) Linearize(p Pos) int {
	return p.X + s.X*(p.Y+s.Y*p.Z)
}

// Delinearize is the inverse of Linearize.
func (s Shape) Delinearize(i int) Pos {
	x := i % s.X
	i /= s.X
	return Pos{X: x, Y: i % s.Y, Z: i / s.Y}
}

// Contains reports whether p lies inside the shape.
func (s Shape) Contains(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.Z >= 0 && p.X < s.X && p.Y < s.Y && p.Z < s.Z
}

// Padded returns the shape grown by one cell on every side.
func (s Shape) Padded() Shape {
	return Shape{X: s.X + 2, Y: s.Y + 2, Z: s.Z + 2}
}

// Extent is an axis-aligned sub-box of a buffer.
type Extent struct {
	Min   Pos
	Shape Shape
}

// Buffer is a dense 3D array of voxels stored contiguously.
type Buffer struct {
	data  []Voxel
	shape Shape
}

// New allocates a buffer with every cell set to initial.
func New(shape Shape, initial Voxel) *Buffer {
	b := NewEmpty(shape)
	if initial != Empty {
		for i := range b.data {
			b.data[i] = initial
		}
	}
	return b
}

// NewEmpty allocates a buffer filled with Empty.
func NewEmpty(shape Shape) *Buffer {
	return &Buffer{data: make([]Voxel, shape.Size()), shape: shape}
}

// FromVoxels wraps data as a buffer. It panics if the length does not match the shape.
func FromVoxels(shape Shape, data []Voxel) *Buffer {
	if len(data) != shape.Size() {
		panic("voxel: data length does not match shape")
	}
	return &Buffer{data: data, shape: shape}
}

// At returns the voxel at p. It panics if p lies outside the shape.
func (b *Buffer) At(p Pos) Voxel {
	return b.data[b.index(p)]
}

// Set writes v at p. It panics if p lies outside the shape.
func (b *Buffer) Set(p Pos, v Voxel) {
	b.data[b.index(p)] = v
}

func (b *Buffer) index(p Pos) int {
	if !b.shape.Contains(p) {
		panic(fmt.Sprintf("voxel: position %v outside shape %v", p, b.shape))
	}
	return b.shape.Linearize(p)
}

// FillExtent assigns v to every cell of the extent.
func (b *Buffer) FillExtent(e Extent, v Voxel) {
	for z := e.Min.Z; z < e.Min.Z+e.Shape.Z; z++ {
		for y := e.Min.Y; y < e.Min.Y+e.Shape.Y; y++ {
			row := b.shape.Linearize(Pos{X: e.Min.X, Y: y, Z: z})
			for i := row; i < row+e.Shape.X; i++ {
				b.data[i] = v
			}
		}
	}
}

// Shape returns the buffer dimensions.
func (b *Buffer) Shape() Shape {
	return b.shape
}

// Voxels returns the flat backing array.
func (b *Buffer) Voxels() []Voxel {
	return b.data
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([]Voxel, len(b.data))
	copy(data, b.data)
	return &Buffer{data: data, shape: b.shape}
}

// Equal reports whether both buffers have the same shape and contents.
func (b *Buffer) Equal(other *Buffer) bool {
	if b.shape != other.shape || len(b.data) != len(other.data) {
		return false
	}
	for i, v := range b.data {
		if other.data[i] != v {
			return false
		}
	}
	return true
}
