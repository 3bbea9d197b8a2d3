// Package catalog serves the static element and avatar listings.
package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/metameet/server/internal/storage"
)

type Handler struct {
	Catalog storage.CatalogStore
}

func (h *Handler) Elements(c *gin.Context) {
	elements, err := h.Catalog.ListElements(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "api.catalog").Msg("list elements")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"elements": elements})
}

func (h *Handler) Avatars(c *gin.Context) {
	avatars, err := h.Catalog.ListAvatars(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "api.catalog").Msg("list avatars")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

func RegisterRoutes(rg *gin.RouterGroup, h *Handler) {
	rg.GET("/elements", h.Elements)
	rg.GET("/avatars", h.Avatars)
}
