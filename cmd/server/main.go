package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	valkeygo "github.com/valkey-io/valkey-go"

	router "github.com/metameet/server/internal/adapters/http"
	"github.com/metameet/server/internal/app"
	"github.com/metameet/server/internal/auth"
	"github.com/metameet/server/internal/config"
	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/storage"
	"github.com/metameet/server/internal/storage/memory"
	"github.com/metameet/server/internal/storage/valkey"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("jwt_secret is required")
	}

	users, spaces := buildStores(cfg)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	catalog := memory.NewCatalog(defaultElements(), defaultAvatars())

	orch := &app.Orchestrator{
		Registry:  app.NewRegistry(),
		Verifier:  tokens,
		Directory: spaces,
		Proximity: app.ProximityConfig{
			Threshold: cfg.Proximity.Threshold,
			Interval:  cfg.Proximity.Interval,
		},
	}

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Orch:    orch,
		Tokens:  tokens,
		Users:   users,
		Spaces:  spaces,
		Catalog: catalog,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("metameet server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func buildStores(cfg *config.Config) (storage.UserStore, storage.SpaceStore) {
	switch cfg.Storage.Backend {
	case "valkey":
		client, err := valkeygo.NewClient(valkeygo.ClientOption{
			InitAddress: []string{cfg.Storage.ValkeyAddr},
		})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Storage.ValkeyAddr).Msg("valkey connect")
		}
		log.Info().Str("addr", cfg.Storage.ValkeyAddr).Msg("using valkey storage")
		return valkey.NewUserStore(client), valkey.NewSpaceStore(client)
	default:
		log.Info().Msg("using in-memory storage")
		return memory.NewUserStore(), memory.NewSpaceStore()
	}
}

func defaultElements() []domain.Element {
	return []domain.Element{
		{ID: "chair", ImageURL: "/static/elements/chair.png", Width: 1, Height: 1, Static: false},
		{ID: "table", ImageURL: "/static/elements/table.png", Width: 2, Height: 1, Static: true},
		{ID: "plant", ImageURL: "/static/elements/plant.png", Width: 1, Height: 1, Static: true},
		{ID: "couch", ImageURL: "/static/elements/couch.png", Width: 3, Height: 1, Static: true},
	}
}

func defaultAvatars() []domain.Avatar {
	return []domain.Avatar{
		{ID: "ava-classic", ImageURL: "/static/avatars/classic.png", Name: "Classic"},
		{ID: "ava-robot", ImageURL: "/static/avatars/robot.png", Name: "Robot"},
		{ID: "ava-pixel", ImageURL: "/static/avatars/pixel.png", Name: "Pixel"},
	}
}
