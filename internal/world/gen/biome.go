package gen

import (
	"fmt"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

// Biome selects how a terrain column is carved after the base rock fill.
type Biome uint8

const (
	BiomePlains Biome = iota
	BiomeDesert
	BiomeSnowyPlains
)

func (b Biome) String() string {
	switch b {
	case BiomePlains:
		return "plains"
	case BiomeDesert:
		return "desert"
	case BiomeSnowyPlains:
		return "snowy_plains"
	default:
		return fmt.Sprintf("biome(%d)", uint8(b))
	}
}

// BiomeMode chooses between a single plains biome and climate-driven selection.
type BiomeMode uint8

const (
	BiomeModeSingle BiomeMode = iota
	BiomeModeClimate
)

// ParseBiomeMode maps a config string to a BiomeMode.
func ParseBiomeMode(s string) (BiomeMode, error) {
	switch s {
	case "", "single":
		return BiomeModeSingle, nil
	case "climate":
		return BiomeModeClimate, nil
	default:
		return 0, fmt.Errorf("unknown biome mode %q", s)
	}
}

const desertSandDepth = 3

// selectBiome maps normalised humidity and temperature in [0, 1] to a biome.
// Anything not matched explicitly, boundaries included, is plains.
func selectBiome(humidity, temperature float64) Biome {
	switch {
	case humidity > 0.8 && temperature < 0.2:
		return BiomeSnowyPlains
	case humidity > 0.8 && temperature > 0.2:
		return BiomeDesert
	default:
		return BiomePlains
	}
}

// carveColumn applies biome surface rules to column (x, z) whose rock ends below surface.
func carveColumn(buf *voxel.Buffer, x, z, surface int, biome Biome) {
	switch biome {
	case BiomeDesert:
		for y := max(surface-desertSandDepth, 0); y < surface; y++ {
			buf.Set(voxel.Pos{X: x, Y: y, Z: z}, voxel.Sand)
		}
	case BiomeSnowyPlains:
		if surface > 0 {
			buf.Set(voxel.Pos{X: x, Y: surface - 1, Z: z}, voxel.Snow)
		}
		fillWater(buf, x, z, surface)
	default:
		fillWater(buf, x, z, surface)
	}
}

// fillWater floods the column from the surface up to sea level.
func fillWater(buf *voxel.Buffer, x, z, surface int) {
	top := min(SeaLevel, buf.Shape().Y)
	if surface >= top {
		return
	}
	buf.FillExtent(voxel.Extent{
		Min:   voxel.Pos{X: x, Y: surface, Z: z},
		Shape: voxel.Shape{X: 1, Y: top - surface, Z: 1},
	}, voxel.Water)
}
