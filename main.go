package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/loveletter-builder/go-server/internal/gateway"
	"github.com/loveletter-builder/go-server/internal/httpserver"
	"github.com/loveletter-builder/go-server/internal/letter"
	"github.com/loveletter-builder/go-server/internal/session"
	"github.com/loveletter-builder/go-server/internal/wordbank"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := wordbank.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word bank")
	}

	db, err := openDB(getEnv("DB_PATH", "./data/loveletter.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open letter archive")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate letter archive")
	}

	model, err := letter.NewGeminiModel(
		context.Background(),
		os.Getenv("GEMINI_API_KEY"),
		getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init generation model")
	}
	defer model.Close()

	gen := letter.NewGenerator(model, letter.NewArchive(db), generationTimeout())
	registry := session.NewRegistry()
	gw := gateway.New(registry, gen, getEnv("TOKEN_SECRET", "dev_secret_change_me"))

	srv := httpserver.New(registry, gen, gw)
	port := getEnv("PORT", "5000")
	log.Info().Str("port", port).Msg("starting loveletter server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func generationTimeout() time.Duration {
	n, err := strconv.Atoi(getEnv("GENERATION_TIMEOUT_SECONDS", "30"))
	if err != nil || n <= 0 {
		n = 30
	}
	return time.Duration(n) * time.Second
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
