// Package sandbox wires the voxel world to a scripted camera and runs the tick loop.
package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/go-theft-craft/worldgen/internal/config"
	"github.com/go-theft-craft/worldgen/internal/diag"
	"github.com/go-theft-craft/worldgen/internal/player"
	"github.com/go-theft-craft/worldgen/internal/tasks"
	"github.com/go-theft-craft/worldgen/internal/voxel"
	"github.com/go-theft-craft/worldgen/internal/world"
	"github.com/go-theft-craft/worldgen/internal/world/gen"
	"github.com/go-theft-craft/worldgen/internal/world/storage"
)

const (
	spawnClearance = 40
	turnRate       = 0.05 // radians per second
	statsInterval  = 5 * time.Second
)

// App is a headless sandbox session.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	session string

	store  storage.Store
	pool   *tasks.Pool
	camera *player.Camera
	sink   *MeshStats
	world  *world.World
}

// ResolveDataRoot returns cfg.DataDir or, when it is empty, the platform data directory.
func ResolveDataRoot(cfg *config.Config) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	return storage.DataRoot()
}

// New opens the world storage under dataRoot and builds the session.
func New(cfg *config.Config, dataRoot string, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	mode, err := gen.ParseBiomeMode(cfg.BiomeMode)
	if err != nil {
		return nil, err
	}

	session := uuid.NewString()
	log = log.With("session", session)

	store, err := storage.Open(cfg.StorageBackend, dataRoot, cfg.WorldName, voxel.ChunkShape, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	generator := gen.New(gen.Config{Seed: cfg.Seed, Shape: voxel.ChunkShape, BiomeMode: mode})
	spawn := mgl32.Vec3{0.5, float32(generator.SurfaceAt(0, 0) + spawnClearance), 0.5}
	camera := player.NewCamera(spawn, cfg.FlightSpeed, turnRate)
	pool := tasks.NewPool(cfg.Workers)
	sink := NewMeshStats()

	w := world.New(world.Config{
		Name:         cfg.WorldName,
		LoadRadius:   cfg.LoadRadius,
		UnloadRadius: cfg.UnloadRadius,
		MeshScale:    cfg.MeshScale,
	}, generator, store, pool, camera, sink, log)

	return &App{
		cfg:     cfg,
		log:     log,
		session: session,
		store:   store,
		pool:    pool,
		camera:  camera,
		sink:    sink,
		world:   w,
	}, nil
}

// World returns the session world.
func (a *App) World() *world.World {
	return a.world
}

// Sink returns the mesh statistics sink.
func (a *App) Sink() *MeshStats {
	return a.sink
}

// Session returns the session id.
func (a *App) Session() string {
	return a.session
}

// Run ticks the world until ctx is cancelled, then unloads everything and
// waits for outstanding saves.
func (a *App) Run(ctx context.Context) error {
	defer a.shutdown()

	a.log.Info("sandbox started",
		"world", a.cfg.WorldName,
		"seed", a.cfg.Seed,
		"loadRadius", a.cfg.LoadRadius,
		"unloadRadius", a.cfg.UnloadRadius,
		"workers", a.pool.Workers(),
		"storage", a.cfg.StorageBackend,
		"biomes", a.cfg.BiomeMode,
	)

	if a.cfg.Pregenerate > 0 {
		center := voxel.KeyAt(0, 0)
		if _, err := a.world.Pregenerate(ctx, center, a.cfg.Pregenerate); err != nil && ctx.Err() == nil {
			return fmt.Errorf("pregenerate: %w", err)
		}
	}

	diagErr := make(chan error, 1)
	if a.cfg.DiagAddr != "" {
		srv := diag.New(a.world, a.session, time.Second, a.log)
		go func() { diagErr <- srv.Start(ctx, a.cfg.DiagAddr) }()
	}

	ticker := time.NewTicker(a.cfg.TickRate)
	defer ticker.Stop()

	logStats := rate.Sometimes{Interval: statsInterval}
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.log.Info("sandbox shutting down")
			return nil
		case err := <-diagErr:
			if err != nil {
				return err
			}
		case now := <-ticker.C:
			a.camera.Advance(now.Sub(last))
			last = now
			a.world.Tick(ctx)
			logStats.Do(a.logStats)
		}
	}
}

func (a *App) logStats() {
	s := a.world.Stats()
	a.log.Info("world stats",
		"tick", s.Tick,
		"loaded", s.Loaded,
		"pendingTerrain", s.PendingTerrain,
		"pendingMeshes", s.PendingMeshes,
		"queuedTasks", s.QueuedTasks,
		"meshedChunks", a.sink.Chunks(),
		"quads", a.sink.Quads(),
		"playerChunk", s.PlayerChunk,
	)
}

func (a *App) shutdown() {
	a.world.Shutdown(context.Background())
	a.pool.StopAndWait()
	if err := a.store.Close(); err != nil {
		a.log.Error("close storage", "error", err)
	}
}
