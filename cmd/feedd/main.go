package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"qlbh/backend/internal/config"
	"qlbh/backend/internal/feed"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cache := feed.Cache(feed.NoopCache{})
	closers := make([]func() error, 0, 1)
	if cfg.RedisAddr != "" {
		redisCache := feed.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			cache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	svc := feed.NewService(
		feed.Seed(cfg.FeedSize, time.Now()),
		cache,
		time.Duration(cfg.FeedCacheTTLSeconds)*time.Second,
	)

	app := fiber.New(fiber.Config{
		AppName:               "transaction feed",
		DisableStartupMessage: true,
	})
	feed.Register(app, svc)

	go func() {
		log.Printf("transaction feed listening on %s", cfg.FeedAddress())
		if err := app.Listen(cfg.FeedAddress()); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return app.ShutdownWithContext(ctx)
			},
			"cache": func(_ context.Context) error {
				for _, closeFn := range closers {
					if err := closeFn(); err != nil {
						return err
					}
				}
				return nil
			},
		},
	)

	exitCode := <-wait
	log.Printf("feed stopped with code %d", exitCode)
	os.Exit(exitCode)
}
