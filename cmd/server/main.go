package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"qlbh/backend/internal/config"
	"qlbh/backend/internal/httpapi"
	"qlbh/backend/internal/kv"
	kvmemory "qlbh/backend/internal/kv/memory"
	kvpostgres "qlbh/backend/internal/kv/postgres"
	kvsqlite "qlbh/backend/internal/kv/sqlite"
	"qlbh/backend/internal/service"
	"qlbh/backend/internal/store/state"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var kvs kv.Store
	closers := make([]func() error, 0, 1)

	switch {
	case cfg.DatabaseURL != "":
		pg, err := kvpostgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start", err)
		}
		kvs = pg
		closers = append(closers, pg.Close)
		log.Println("storage: postgres")
	case cfg.DataPath != "":
		sq, err := kvsqlite.Open(cfg.DataPath)
		if err != nil {
			log.Fatalf("open sqlite store at %s: %v", cfg.DataPath, err)
		}
		kvs = sq
		closers = append(closers, sq.Close)
		log.Printf("storage: sqlite (%s)", cfg.DataPath)
	default:
		kvs = kvmemory.New()
		log.Println("storage: in-memory")
	}

	repo, err := state.Open(ctx, kvs)
	if err != nil {
		log.Fatalf("load state: %v", err)
	}

	svc := service.New(repo)
	api := httpapi.New(svc, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("sales backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}
