package world

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

// Pregenerate generates and saves every chunk within radius chunks of
// center that has not been saved yet. It returns the number of chunks
// generated. Loaded chunks are not touched.
func (w *World) Pregenerate(ctx context.Context, center voxel.ChunkKey, radius int) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.pool.Workers())

	var generated atomic.Int64
	for x := -radius; x <= radius; x++ {
		for z := -radius; z <= radius; z++ {
			key := center.Offset(x, z)
			seq := w.saver.begin(key)
			g.Go(func() error {
				defer w.saver.release(key, seq)
				w.saver.waitBefore(key, seq)

				buf, err := w.store.Load(ctx, key)
				if err != nil {
					return fmt.Errorf("load chunk %s: %w", key, err)
				}
				if buf != nil {
					return nil
				}
				if err := w.saver.save(ctx, w.gen.Generate(key), key, seq); err != nil {
					return fmt.Errorf("save chunk %s: %w", key, err)
				}
				generated.Add(1)
				return nil
			})
		}
	}

	err := g.Wait()
	n := int(generated.Load())
	w.log.Info("pre-generated chunks", "generated", n, "radius", radius)
	return n, err
}
