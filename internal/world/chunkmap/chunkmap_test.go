package chunkmap

import (
	"sync"
	"testing"

	"github.com/go-theft-craft/worldgen/internal/voxel"
)

var smallShape = voxel.Shape{X: 2, Y: 4, Z: 2}

func TestInsertBufferAt(t *testing.T) {
	m := New()
	key := voxel.ChunkKey{X: 32, Z: -64}

	if _, ok := m.BufferAt(key); ok {
		t.Fatal("BufferAt on empty map returned ok")
	}

	m.Insert(key, voxel.New(smallShape, voxel.Rock))
	b, ok := m.BufferAt(key)
	if !ok {
		t.Fatal("BufferAt after Insert returned !ok")
	}
	if b.At(voxel.Pos{X: 1, Y: 3, Z: 1}) != voxel.Rock {
		t.Error("snapshot does not match inserted buffer")
	}

	// Snapshots are independent of the stored buffer.
	b.Set(voxel.Pos{}, voxel.Air)
	again, _ := m.BufferAt(key)
	if again.At(voxel.Pos{}) != voxel.Rock {
		t.Error("modifying a snapshot changed the stored buffer")
	}
}

func TestEdit(t *testing.T) {
	m := New()
	key := voxel.ChunkKey{}

	if m.Edit(key, func(*voxel.Buffer) { t.Error("fn called for missing key") }) {
		t.Error("Edit on missing key returned true")
	}

	m.Insert(key, voxel.New(smallShape, voxel.Air))
	ok := m.Edit(key, func(b *voxel.Buffer) {
		b.Set(voxel.Pos{X: 1, Y: 1, Z: 1}, voxel.Sand)
	})
	if !ok {
		t.Fatal("Edit returned false")
	}
	b, _ := m.BufferAt(key)
	if b.At(voxel.Pos{X: 1, Y: 1, Z: 1}) != voxel.Sand {
		t.Error("edit not visible in later snapshot")
	}
}

func TestRemoveLenKeys(t *testing.T) {
	m := New()
	for i := 0; i < 4; i++ {
		m.Insert(voxel.ChunkKey{X: i * voxel.ChunkLen}, voxel.NewEmpty(smallShape))
	}
	if m.Len() != 4 || len(m.Keys()) != 4 {
		t.Fatalf("Len() = %d, len(Keys()) = %d, want 4", m.Len(), len(m.Keys()))
	}
	m.Remove(voxel.ChunkKey{X: voxel.ChunkLen})
	if m.Contains(voxel.ChunkKey{X: voxel.ChunkLen}) {
		t.Error("Contains after Remove = true")
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	m := New()
	key := voxel.ChunkKey{}
	m.Insert(key, voxel.New(smallShape, voxel.Air))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b, ok := m.BufferAt(key)
				if !ok {
					t.Error("chunk disappeared")
					return
				}
				// A snapshot is never half-written: all cells agree.
				first := b.Voxels()[0]
				for _, v := range b.Voxels() {
					if v != first {
						t.Error("observed partially written buffer")
						return
					}
				}
			}
		}()
	}
	for j := 0; j < 100; j++ {
		v := voxel.Rock
		if j%2 == 0 {
			v = voxel.Sand
		}
		m.Edit(key, func(b *voxel.Buffer) {
			for i := range b.Voxels() {
				b.Voxels()[i] = v
			}
		})
	}
	wg.Wait()
}
