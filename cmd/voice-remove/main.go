package main

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Shoji0121/voice-remove/internal/audio"
	"github.com/Shoji0121/voice-remove/internal/auth"
	"github.com/Shoji0121/voice-remove/internal/blob"
	"github.com/Shoji0121/voice-remove/internal/config"
	"github.com/Shoji0121/voice-remove/internal/remote"
	"github.com/Shoji0121/voice-remove/internal/server"
	"github.com/Shoji0121/voice-remove/internal/staging"
	"github.com/Shoji0121/voice-remove/internal/storage"
	"github.com/Shoji0121/voice-remove/internal/wizard"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv(config.EnvPrefix + "CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, warnings, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		lvl = parsed
	}
	log.Logger = log.Level(lvl)

	for _, warning := range warnings {
		log.Warn().Msg(warning)
	}

	journal, err := storage.NewSQLiteJournal(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("journal init failed")
	}
	defer func() { _ = journal.Close() }()

	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatal().Err(err).Msg("static assets init failed")
	}

	if err := portaudio.Initialize(); err != nil {
		log.Warn().Err(err).Msg("audio init failed, recording disabled")
	} else {
		defer func() { _ = portaudio.Terminate() }()
	}

	capture := audio.NewCapture(func() (audio.Source, error) {
		return audio.OpenMic(cfg.SampleRateCandidates(), audio.DefaultFramesPerBuffer)
	})

	// No client-side timeout: a long render is waited out, not aborted.
	backend := remote.NewClient(cfg.ServerURL, nil)
	blobs := blob.NewStore()
	hub := server.NewHub()

	wiz := wizard.New(staging.NewArea(), capture, backend, blobs, hub, journal)
	defer wiz.Close()

	redirectURL := "http://" + cfg.ListenAddr + "/api/auth/callback"
	google := auth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, redirectURL, backend.Login, wiz.SetUserID)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Handler(assets, hub, wiz, journal, blobs, google),
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	log.Info().Str("addr", cfg.ListenAddr).Str("backend", cfg.ServerURL).Msg("voice-remove ready")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("voice-remove shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}
}
