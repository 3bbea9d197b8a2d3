package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/metameet/server/internal/adapters/signal"
	"github.com/metameet/server/internal/api/accounts"
	"github.com/metameet/server/internal/api/catalog"
	"github.com/metameet/server/internal/api/spaces"
	"github.com/metameet/server/internal/app"
	"github.com/metameet/server/internal/auth"
	"github.com/metameet/server/internal/config"
	"github.com/metameet/server/internal/storage"
)

type Deps struct {
	Orch    *app.Orchestrator
	Tokens  *auth.TokenService
	Users   storage.UserStore
	Spaces  storage.SpaceStore
	Catalog storage.CatalogStore
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api/v1")

	authed := AuthRequired(deps.Tokens)
	accounts.RegisterRoutes(api.Group("/auth"), &accounts.Handler{Users: deps.Users, Tokens: deps.Tokens})
	spaces.RegisterRoutes(api.Group("/spaces"), &spaces.Handler{Spaces: deps.Spaces}, authed)
	catalog.RegisterRoutes(api, &catalog.Handler{Catalog: deps.Catalog})

	// Client RTC bootstrap: ICE servers plus the nearby radius. The
	// radius comes from the same config value the scheduler runs on.
	iceServers := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, s := range cfg.ICEServers {
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	api.GET("/rtc-config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"iceServers":         iceServers,
			"proximityThreshold": cfg.Proximity.Threshold,
		})
	})

	ctl := signal.NewController(deps.Orch, cfg.ReadLimit, cfg.PingPeriod)
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(ctx, c)
	})

	return r
}
