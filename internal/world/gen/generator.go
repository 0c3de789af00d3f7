// Package gen produces chunk terrain from seeded noise fields.
package gen

import (
	"math"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

const (
	// BaseSurface is the surface height when every terrain field is zero.
	BaseSurface = 62
	// SeaLevel is the exclusive top of water fill.
	SeaLevel = 62

	octaves    = 6
	lacunarity = 2.0
	gain       = 0.5

	climateFrequency = 0.005
)

// Config holds the inputs that determine generated terrain.
type Config struct {
	Seed      int64
	Shape     voxel.Shape
	BiomeMode BiomeMode
}

// field is one fbm noise layer scaled into block units.
type field struct {
	noise     *NoiseGenerator
	frequency float64
	amplitude float64
	absolute  bool
}

func (f field) sample(x, z float64) float64 {
	v := f.noise.Fbm2D(x*f.frequency, z*f.frequency, octaves, lacunarity, gain)
	if f.absolute {
		v = math.Abs(v)
	}
	return v * f.amplitude
}

// Generator fills chunk buffers deterministically for a seed and shape.
type Generator struct {
	cfg             Config
	continentalness field
	erosion         field
	peaksValleys    field
	humidity        *NoiseGenerator
	temperature     *NoiseGenerator
}

// New creates a Generator. A zero Shape means voxel.ChunkShape.
func New(cfg Config) *Generator {
	if cfg.Shape == (voxel.Shape{}) {
		cfg.Shape = voxel.ChunkShape
	}
	return &Generator{
		cfg:             cfg,
		continentalness: field{noise: NewNoiseGenerator(cfg.Seed), frequency: 0.0018, amplitude: 48},
		erosion:         field{noise: NewNoiseGenerator(cfg.Seed + 1), frequency: 0.0025, amplitude: 24, absolute: true},
		peaksValleys:    field{noise: NewNoiseGenerator(cfg.Seed + 2), frequency: 0.004, amplitude: 40, absolute: true},
		humidity:        NewNoiseGenerator(cfg.Seed + 3),
		temperature:     NewNoiseGenerator(cfg.Seed + 4),
	}
}

// Shape returns the shape of buffers produced by Generate.
func (g *Generator) Shape() voxel.Shape {
	return g.cfg.Shape
}

// Seed returns the generator seed.
func (g *Generator) Seed() int64 {
	return g.cfg.Seed
}

// Generate builds the terrain for the chunk at key.
func (g *Generator) Generate(key voxel.ChunkKey) *voxel.Buffer {
	shape := g.cfg.Shape
	buf := voxel.New(shape, voxel.Air)

	heights := g.surfaceMap(key)
	for z := 0; z < shape.Z; z++ {
		for x := 0; x < shape.X; x++ {
			surface := heights.Round(x, z)
			buf.FillExtent(voxel.Extent{
				Min:   voxel.Pos{X: x, Z: z},
				Shape: voxel.Shape{X: 1, Y: surface, Z: 1},
			}, voxel.Rock)
			carveColumn(buf, x, z, surface, g.BiomeAt(key.X+x, key.Z+z))
		}
	}

	// Bottom border goes last so carving never removes it.
	buf.FillExtent(voxel.Extent{Shape: voxel.Shape{X: shape.X, Y: 1, Z: shape.Z}}, voxel.Bedrock)
	return buf
}

// surfaceMap samples the surface height of every column in the chunk.
func (g *Generator) surfaceMap(key voxel.ChunkKey) Heightmap {
	w, d := g.cfg.Shape.X, g.cfg.Shape.Z
	values := make([]float64, w*d)
	for z := 0; z < d; z++ {
		for x := 0; x < w; x++ {
			values[z*w+x] = float64(g.SurfaceAt(key.X+x, key.Z+z))
		}
	}
	return NewHeightmap(values, w, d)
}

// SurfaceAt returns the first non-rock height of world column (x, z).
func (g *Generator) SurfaceAt(x, z int) int {
	fx, fz := float64(x), float64(z)
	offset := (g.continentalness.sample(fx, fz) + g.erosion.sample(fx, fz) + g.peaksValleys.sample(fx, fz)) / 3
	surface := BaseSurface + int(math.Round(offset))
	return min(max(surface, 1), g.cfg.Shape.Y-1)
}

// BiomeAt returns the biome of world column (x, z).
func (g *Generator) BiomeAt(x, z int) Biome {
	if g.cfg.BiomeMode == BiomeModeSingle {
		return BiomePlains
	}
	fx, fz := float64(x)*climateFrequency, float64(z)*climateFrequency
	humidity := (g.humidity.Fbm2D(fx, fz, octaves, lacunarity, gain) + 1) / 2
	temperature := (g.temperature.Fbm2D(fx, fz, octaves, lacunarity, gain) + 1) / 2
	return selectBiome(humidity, temperature)
}
