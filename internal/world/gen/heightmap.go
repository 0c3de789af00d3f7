package gen

import "math"

// Heightmap is a W x D view over per-column noise samples, indexed z*W + x.
type Heightmap struct {
	values []float64
	w, d   int
}

// NewHeightmap wraps values as a w x d heightmap.
func NewHeightmap(values []float64, w, d int) Heightmap {
	if len(values) != w*d {
		panic("gen: heightmap size mismatch")
	}
	return Heightmap{values: values, w: w, d: d}
}

// At returns the sample for column (x, z).
func (h Heightmap) At(x, z int) float64 {
	return h.values[z*h.w+x]
}

// Round returns the sample for column (x, z) rounded to the nearest integer.
func (h Heightmap) Round(x, z int) int {
	return int(math.Round(h.At(x, z)))
}
