package gen

// 2D simplex noise after Ken Perlin. Samples fall in [-1, 1].

// grad2 holds the twelve gradient directions, the 3D edge set projected onto XY.
var grad2 = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// NoiseGenerator produces deterministic simplex noise from a seed.
type NoiseGenerator struct {
	perm [512]int
}

// NewNoiseGenerator creates a noise generator with a seeded permutation table.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	ng := &NoiseGenerator{}

	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates shuffle with seed-derived random.
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407 // LCG
		j := int((s>>33)&0x7FFFFFFF) % (i + 1)
		p[i], p[j] = p[j], p[i]
	}

	for i := 0; i < 512; i++ {
		ng.perm[i] = p[i&255]
	}
	return ng
}

// Noise2D returns 2D simplex noise for the given coordinates.
// Noise2D(0, 0) is 0 for every seed.
func (ng *NoiseGenerator) Noise2D(x, y float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	s := (x + y) * f2
	i := fastFloor(x + s)
	j := fastFloor(y + s)

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	var i1, j1 int
	if x0 > y0 {
		i1 = 1
	} else {
		j1 = 1
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	ii := i & 255
	jj := j & 255
	gi0 := ng.perm[ii+ng.perm[jj]] % 12
	gi1 := ng.perm[ii+i1+ng.perm[jj+j1]] % 12
	gi2 := ng.perm[ii+1+ng.perm[jj+1]] % 12

	return 70.0 * (corner(gi0, x0, y0) + corner(gi1, x1, y1) + corner(gi2, x2, y2))
}

// Fbm2D sums octaves of 2D noise, scaling frequency by lacunarity and
// amplitude by gain per octave. The sum is normalised back into [-1, 1].
func (ng *NoiseGenerator) Fbm2D(x, y float64, octaves int, lacunarity, gain float64) float64 {
	var total, maxVal float64
	frequency := 1.0
	amplitude := 1.0

	for range octaves {
		total += ng.Noise2D(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= gain
		frequency *= lacunarity
	}
	return total / maxVal
}

func corner(gi int, x, y float64) float64 {
	t := 0.5 - x*x - y*y
	if t < 0 {
		return 0
	}
	t *= t
	return t * t * (grad2[gi][0]*x + grad2[gi][1]*y)
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}
