package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-download-server/internal/config"
	"github.com/ytget/yt-download-server/internal/job"
	"github.com/ytget/yt-download-server/internal/media"
	"github.com/ytget/yt-download-server/internal/paths"
	"github.com/ytget/yt-download-server/internal/server"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Fetch a yt-dlp binary if none is on PATH
	if _, err := ytdlp.Install(context.Background(), nil); err != nil {
		log.Printf("yt-dlp install: %v (downloads will fail until a binary is available)", err)
	}

	resolver := paths.NewResolver(cfg.StorageDir)
	resolver.EnsureBuckets()

	engine := media.NewEngine()
	registry := job.NewRegistry(resolver, engine, engine)
	srv := server.New(registry, engine, cfg.StreamInterval())

	log.Printf("yt-download-server %s listening on %s (storage: %s)", version, cfg.Addr, cfg.StorageDir)
	if err := http.ListenAndServe(cfg.Addr, srv.Router()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
