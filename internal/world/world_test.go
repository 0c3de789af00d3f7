package world

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/worldgen/internal/mesh"
	"github.com/go-theft-craft/worldgen/internal/tasks"
	"github.com/go-theft-craft/worldgen/internal/voxel"
	"github.com/go-theft-craft/worldgen/internal/world/gen"
	"github.com/go-theft-craft/worldgen/internal/world/storage"
)

type fixedPlayer struct {
	mu  sync.Mutex
	pos mgl32.Vec3
}

func (p *fixedPlayer) Position() mgl32.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *fixedPlayer) moveTo(pos mgl32.Vec3) {
	p.mu.Lock()
	p.pos = pos
	p.mu.Unlock()
}

// recordingSink checks every delivered mesh against the chunk map.
type recordingSink struct {
	t       *testing.T
	w       *World
	meshes  map[voxel.ChunkKey]*mesh.Mesh
	updates map[voxel.ChunkKey]int
	removed map[voxel.ChunkKey]int
}

func (s *recordingSink) UpdateMesh(key voxel.ChunkKey, m *mesh.Mesh) {
	if !s.w.chunks.Contains(key) {
		s.t.Errorf("mesh delivered for %v which has no terrain", key)
	}
	if _, ok := s.w.life.Entities().Handle(key); !ok {
		s.t.Errorf("mesh delivered for %v which has no handle", key)
	}
	s.meshes[key] = m
	s.updates[key]++
}

func (s *recordingSink) RemoveMesh(key voxel.ChunkKey) {
	delete(s.meshes, key)
	s.removed[key]++
}

// gatedStore holds every Save while its gate is closed.
type gatedStore struct {
	storage.Store

	mu   sync.Mutex
	gate chan struct{}
}

func (s *gatedStore) hold() {
	s.mu.Lock()
	s.gate = make(chan struct{})
	s.mu.Unlock()
}

func (s *gatedStore) release() {
	s.mu.Lock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
	s.mu.Unlock()
}

func (s *gatedStore) Save(ctx context.Context, buf *voxel.Buffer, key voxel.ChunkKey) error {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return s.Store.Save(ctx, buf, key)
}

type fixture struct {
	world  *World
	sink   *recordingSink
	player *fixedPlayer
	store  *gatedStore
}

func newFixture(t *testing.T, dataRoot string, mode gen.BiomeMode) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	fileStore, err := storage.Open(storage.BackendFile, dataRoot, "test", voxel.ChunkShape, log)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { fileStore.Close() })
	store := &gatedStore{Store: fileStore}

	pool := tasks.NewPool(4)
	t.Cleanup(pool.StopAndWait)
	t.Cleanup(store.release)

	player := &fixedPlayer{pos: mgl32.Vec3{0.5, 100, 0.5}}
	sink := &recordingSink{
		t:       t,
		meshes:  make(map[voxel.ChunkKey]*mesh.Mesh),
		updates: make(map[voxel.ChunkKey]int),
		removed: make(map[voxel.ChunkKey]int),
	}
	w := New(Config{Name: "test", LoadRadius: 2, UnloadRadius: 2, MeshScale: 1},
		gen.New(gen.Config{Seed: 4242, BiomeMode: mode}), store, pool, player, sink, log)
	sink.w = w

	return &fixture{world: w, sink: sink, player: player, store: store}
}

// tickUntil ticks the world until cond holds or the deadline passes.
func (f *fixture) tickUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	ctx := context.Background()
	deadline := time.Now().Add(30 * time.Second)
	for {
		f.world.Tick(ctx)
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s (stats %+v)", what, f.world.Stats())
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (f *fixture) settled() bool {
	s := f.world.Stats()
	return s.Loaded == s.Handles && s.PendingTerrain == 0 && s.PendingMeshes == 0 && len(f.sink.meshes) == s.Loaded
}

func TestLoadsAndMeshesViewCircle(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeSingle)
	f.tickUntil(t, "initial load", func() bool { return f.world.LoadedCount() == 9 && f.settled() })

	if got := len(f.world.LoadedChunks()); got != 9 {
		t.Errorf("LoadedChunks() has %d keys, want 9", got)
	}
	for key := range f.sink.meshes {
		if f.sink.updates[key] != 1 {
			t.Errorf("chunk %v meshed %d times, want 1", key, f.sink.updates[key])
		}
	}
	if f.sink.meshes[voxel.ChunkKey{}].Empty() {
		t.Error("origin chunk mesh is empty")
	}
	if f.world.DirtyCount() != 0 {
		t.Errorf("DirtyCount() = %d after tick, want 0", f.world.DirtyCount())
	}
	if n := f.world.saver.tracked(); n != 0 {
		t.Errorf("saver still tracks %d chunks with nothing in flight", n)
	}
}

func TestOriginColumnTerrain(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeClimate)
	f.tickUntil(t, "origin chunk", func() bool { return f.world.chunks.Contains(voxel.ChunkKey{}) })

	tests := []struct {
		y    int
		want voxel.Voxel
	}{
		{0, voxel.Bedrock},
		{gen.BaseSurface - 1, voxel.Rock},
		{gen.BaseSurface, voxel.Air},
	}
	for _, tt := range tests {
		got, ok := f.world.VoxelAt(0, tt.y, 0)
		if !ok || got != tt.want {
			t.Errorf("VoxelAt(0,%d,0) = %v, %v; want %v", tt.y, got, ok, tt.want)
		}
	}
}

func TestEditMarksDirtyAndRemeshes(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeSingle)
	f.tickUntil(t, "initial load", func() bool { return f.world.LoadedCount() == 9 && f.settled() })

	key := voxel.ChunkKey{}
	before := f.sink.updates[key]
	if !f.world.SetVoxel(3, 120, 4, voxel.Sand) {
		t.Fatal("SetVoxel on loaded chunk returned false")
	}
	if f.world.DirtyCount() != 1 {
		t.Fatalf("DirtyCount() = %d, want 1", f.world.DirtyCount())
	}
	f.tickUntil(t, "remesh", func() bool { return f.sink.updates[key] > before && f.settled() })

	if f.world.SetVoxel(3, voxel.ChunkHeight, 4, voxel.Sand) {
		t.Error("SetVoxel above the world returned true")
	}
	if f.world.SetVoxel(100*voxel.ChunkLen, 10, 0, voxel.Sand) {
		t.Error("SetVoxel in unloaded chunk returned true")
	}
}

func TestEditSurvivesUnloadAndReload(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeSingle)
	f.tickUntil(t, "initial load", func() bool { return f.world.LoadedCount() == 9 && f.settled() })

	key := voxel.KeyAt(-5, 7)
	before := f.sink.updates[key]
	if !f.world.PlaceBlock(-5, 150, 7, voxel.Snow) {
		t.Fatal("PlaceBlock returned false")
	}
	f.tickUntil(t, "remesh after edit", func() bool { return f.sink.updates[key] > before })

	f.world.UnloadAll()
	if f.world.LoadedCount() != 9 {
		t.Fatalf("UnloadAll removed chunks before the tick: LoadedCount() = %d", f.world.LoadedCount())
	}
	f.world.Tick(context.Background())
	if f.world.LoadedCount() != 0 {
		t.Fatalf("LoadedCount() after UnloadAll and a tick = %d", f.world.LoadedCount())
	}
	if f.sink.removed[key] == 0 {
		t.Error("RemoveMesh not called on unload")
	}
	if _, ok := f.world.VoxelAt(-5, 150, 7); ok {
		t.Error("VoxelAt succeeded on unloaded chunk")
	}

	f.tickUntil(t, "reload", func() bool { return f.world.chunks.Contains(key) })
	if got, _ := f.world.VoxelAt(-5, 150, 7); got != voxel.Snow {
		t.Errorf("VoxelAt after reload = %v, want snow", got)
	}
}

func TestEditRightBeforeUnloadAll(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeSingle)
	f.tickUntil(t, "initial load", func() bool { return f.world.LoadedCount() == 9 && f.settled() })

	key := voxel.KeyAt(-5, 7)
	if !f.world.PlaceBlock(-5, 150, 7, voxel.Snow) {
		t.Fatal("PlaceBlock returned false")
	}
	f.world.UnloadAll()

	f.tickUntil(t, "unload", func() bool { return !f.world.chunks.Contains(key) })
	f.tickUntil(t, "reload", func() bool { return f.world.chunks.Contains(key) && f.settled() })
	if got, _ := f.world.VoxelAt(-5, 150, 7); got != voxel.Snow {
		t.Errorf("VoxelAt after reload = %v, want snow", got)
	}
}

func TestReloadWaitsForPendingSave(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeSingle)
	f.tickUntil(t, "initial load", func() bool { return f.world.LoadedCount() == 9 && f.settled() })

	key := voxel.KeyAt(3, 4)
	f.store.hold()
	if !f.world.PlaceBlock(3, 200, 4, voxel.Dirt) {
		t.Fatal("PlaceBlock returned false")
	}
	// The meshing task now blocks inside its save.
	f.world.Tick(context.Background())
	f.world.UnloadAll()
	f.world.Tick(context.Background())
	if f.world.chunks.Contains(key) {
		t.Fatal("chunk still loaded after UnloadAll and a tick")
	}

	for range 20 {
		f.world.Tick(context.Background())
		time.Sleep(2 * time.Millisecond)
	}
	if f.world.chunks.Contains(key) {
		t.Fatal("chunk reloaded while its last save was still in flight")
	}

	f.store.release()
	f.tickUntil(t, "reload", func() bool { return f.world.chunks.Contains(key) && f.settled() })
	if got, _ := f.world.VoxelAt(3, 200, 4); got != voxel.Dirt {
		t.Errorf("VoxelAt after reload = %v, want dirt", got)
	}
}

func TestRedirtiedChunkGetsNewMeshTask(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeSingle)
	f.tickUntil(t, "initial load", func() bool { return f.world.LoadedCount() == 9 && f.settled() })

	key := voxel.ChunkKey{}
	h, _ := f.world.life.Entities().Handle(key)
	before := f.sink.updates[key]

	f.store.hold()
	f.world.SetVoxel(1, 200, 1, voxel.Sand)
	f.world.Tick(context.Background())
	first := f.world.meshing[h.ID]
	if first == nil {
		t.Fatal("no meshing task in flight after the first edit")
	}

	f.world.SetVoxel(9, 210, 9, voxel.Snow)
	f.world.Tick(context.Background())
	second := f.world.meshing[h.ID]
	if second == nil || second == first {
		t.Fatal("second edit did not replace the in-flight meshing task")
	}
	if len(f.world.meshing) != 1 {
		t.Errorf("%d meshing markers, want 1", len(f.world.meshing))
	}

	f.store.release()
	f.tickUntil(t, "remesh", func() bool { return f.sink.updates[key] > before && f.settled() })

	buf, _ := f.world.chunks.BufferAt(key)
	want := f.world.meshes.Mesh(buf, 1)
	if got := f.sink.meshes[key]; got.QuadCount() != want.QuadCount() || got.VertexCount() != want.VertexCount() {
		t.Errorf("delivered mesh has %d quads, current terrain meshes to %d", got.QuadCount(), want.QuadCount())
	}

	saved, err := f.store.Load(context.Background(), key)
	if err != nil || saved == nil {
		t.Fatalf("Load: %v, %v", saved, err)
	}
	if !saved.Equal(buf) {
		t.Error("saved chunk does not hold both edits")
	}
}

func TestShutdownSavesDirtyChunks(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeSingle)
	f.tickUntil(t, "initial load", func() bool { return f.world.LoadedCount() == 9 && f.settled() })

	if !f.world.PlaceBlock(-5, 150, 7, voxel.Snow) {
		t.Fatal("PlaceBlock returned false")
	}
	f.world.Shutdown(context.Background())
	if f.world.LoadedCount() != 0 {
		t.Fatalf("LoadedCount() after Shutdown = %d", f.world.LoadedCount())
	}

	deadline := time.Now().Add(10 * time.Second)
	for f.world.saver.tracked() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("shutdown saves did not finish")
		}
		time.Sleep(2 * time.Millisecond)
	}

	key, local := voxel.Local(-5, 150, 7)
	buf, err := f.store.Load(context.Background(), key)
	if err != nil || buf == nil {
		t.Fatalf("Load: %v, %v", buf, err)
	}
	if got := buf.At(local); got != voxel.Snow {
		t.Errorf("saved voxel = %v, want snow", got)
	}
}

func TestMoveAwayDiscardsStaleWork(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeSingle)
	// Spawn terrain tasks around the origin, then leave before they commit.
	f.world.Tick(context.Background())
	far := mgl32.Vec3{float32(50 * voxel.ChunkLen), 100, 0}
	f.player.moveTo(far)

	f.tickUntil(t, "load at new position", func() bool { return f.world.LoadedCount() == 9 && f.settled() })

	farKey := voxel.KeyAt(50*voxel.ChunkLen, 0)
	for _, key := range f.world.LoadedChunks() {
		dx, dz := (key.X-farKey.X)/voxel.ChunkLen, (key.Z-farKey.Z)/voxel.ChunkLen
		if dx*dx+dz*dz >= 4 {
			t.Errorf("chunk %v loaded outside the view of the new position", key)
		}
	}
	for key := range f.sink.meshes {
		if !f.world.chunks.Contains(key) {
			t.Errorf("sink holds mesh for unloaded chunk %v", key)
		}
	}
}

func TestRemoveBlock(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeSingle)
	f.tickUntil(t, "origin chunk", func() bool { return f.world.chunks.Contains(voxel.ChunkKey{}) })

	if f.world.RemoveBlock(0, 0, 0) {
		t.Error("RemoveBlock removed bedrock")
	}
	if !f.world.RemoveBlock(0, 1, 0) {
		t.Fatal("RemoveBlock on rock returned false")
	}
	if got, _ := f.world.VoxelAt(0, 1, 0); got != voxel.Air {
		t.Errorf("VoxelAt after RemoveBlock = %v, want air", got)
	}
	if f.world.RemoveBlock(0, 1, 0) {
		t.Error("RemoveBlock on air returned true")
	}
	if f.world.PlaceBlock(0, 2, 0, voxel.Dirt) {
		t.Error("PlaceBlock into rock returned true")
	}
}

func TestPregenerate(t *testing.T) {
	f := newFixture(t, t.TempDir(), gen.BiomeModeSingle)
	ctx := context.Background()

	n, err := f.world.Pregenerate(ctx, voxel.ChunkKey{}, 1)
	if err != nil {
		t.Fatalf("Pregenerate: %v", err)
	}
	if n != 9 {
		t.Errorf("Pregenerate generated %d chunks, want 9", n)
	}
	for x := -1; x <= 1; x++ {
		for z := -1; z <= 1; z++ {
			key := voxel.ChunkKey{}.Offset(x, z)
			buf, err := f.store.Load(ctx, key)
			if err != nil || buf == nil {
				t.Errorf("chunk %v not saved: %v", key, err)
			}
		}
	}
	if f.world.LoadedCount() != 0 {
		t.Errorf("Pregenerate loaded %d chunks into memory", f.world.LoadedCount())
	}

	n, err = f.world.Pregenerate(ctx, voxel.ChunkKey{}, 1)
	if err != nil || n != 0 {
		t.Errorf("second Pregenerate = %d, %v; want 0, nil", n, err)
	}
}
