package main

import (
	"log"
	"os"

	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/logger"
	"go-critique-crawler/internal/server"
	"go-critique-crawler/internal/storage"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(os.Getenv("DEBUG") != "")
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	store := storage.New(cfg.OutputDir, zlog)
	r := server.New(store, zlog).Router()

	zlog.Infof("Server listening on port %s, serving %s", port, cfg.OutputDir)
	if err := r.Run(":" + port); err != nil {
		zlog.Fatalf("Failed to start server: %v", err)
	}
}
