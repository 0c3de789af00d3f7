package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-theft-craft/worldgen/internal/config"
	"github.com/go-theft-craft/worldgen/internal/sandbox"
	"github.com/go-theft-craft/worldgen/internal/world/storage"
)

func main() {
	cfg := config.DefaultConfig()

	var (
		configPath = flag.String("config", "", "optional YAML config file")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.StringVar(&cfg.WorldName, "world", cfg.WorldName, "world name")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "terrain seed")
	flag.IntVar(&cfg.LoadRadius, "load-radius", cfg.LoadRadius, "chunk load radius")
	flag.IntVar(&cfg.UnloadRadius, "unload-radius", cfg.UnloadRadius, "chunk unload radius")
	flag.DurationVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "world tick interval")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "worker goroutines (0 = one per CPU)")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data root (default: platform data directory)")
	flag.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "chunk storage backend: file or leveldb")
	flag.StringVar(&cfg.BiomeMode, "biomes", cfg.BiomeMode, "biome selection: single or climate")
	flag.Func("mesh-scale", "mesh vertex scale", func(s string) error {
		return parseFloat32(s, &cfg.MeshScale)
	})
	flag.StringVar(&cfg.DiagAddr, "diag", cfg.DiagAddr, "address of the stats websocket (empty disables)")
	flag.Func("speed", "camera flight speed in blocks per second", func(s string) error {
		return parseFloat32(s, &cfg.FlightSpeed)
	})
	flag.IntVar(&cfg.Pregenerate, "pregen", cfg.Pregenerate, "pre-generate chunks within this radius before starting")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		config.Merge(cfg, fromFile, explicit)
		log.Info("loaded config from file", "path", *configPath)
	}

	root, err := sandbox.ResolveDataRoot(cfg)
	if err != nil {
		if errors.Is(err, storage.ErrNoDataDir) {
			log.Error("cannot determine data directory, pass -data-dir", "error", err)
		} else {
			log.Error("resolve data directory", "error", err)
		}
		os.Exit(1)
	}

	app, err := sandbox.New(cfg, root, log)
	if err != nil {
		log.Error("create sandbox", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		log.Error("sandbox error", "error", err)
		os.Exit(1)
	}
}
