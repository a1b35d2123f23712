package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port                string
	FeedPort            string
	AllowedOrigin       string
	DatabaseURL         string
	DataPath            string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	FeedCacheTTLSeconds int
	FeedSize            int
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, err := strconv.Atoi(getEnv("FEED_CACHE_TTL_SECONDS", "30"))
	if err != nil || ttl < 1 {
		ttl = 30
	}
	feedSize, err := strconv.Atoi(getEnv("FEED_SIZE", "150"))
	if err != nil || feedSize < 1 {
		feedSize = 150
	}

	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		FeedPort:            getEnv("FEED_PORT", "4000"),
		AllowedOrigin:       getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DataPath:            getEnv("DATA_PATH", "qlbh.db"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             redisDB,
		FeedCacheTTLSeconds: ttl,
		FeedSize:            feedSize,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) FeedAddress() string {
	return fmt.Sprintf(":%s", c.FeedPort)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
