package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-theft-craft/worldgen/internal/world/storage"
	"github.com/go-theft-craft/worldgen/internal/worldfetch"
)

func main() {
	var (
		src     = flag.String("src", "", "world source: local dir, git::, s3::, gcs:: or http archive URL")
		world   = flag.String("world", "", "name to install the world under")
		dataDir = flag.String("data-dir", "", "data root (default: platform data directory)")
		replace = flag.Bool("replace", false, "replace an existing world with the same name")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *src == "" || *world == "" {
		log.Error("both -src and -world are required")
		flag.Usage()
		os.Exit(2)
	}

	root := *dataDir
	if root == "" {
		var err error
		root, err = storage.DataRoot()
		if err != nil {
			log.Error("cannot determine data directory, pass -data-dir", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	n, err := worldfetch.New(root, log).Fetch(ctx, *src, *world, *replace)
	if err != nil {
		log.Error("fetch world", "error", err)
		os.Exit(1)
	}
	log.Info("world imported", "world", *world, "chunks", n)
}
