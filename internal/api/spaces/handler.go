// Package spaces implements the space catalog API: create, list, fetch
// and delete. The presence core reads the same store through the
// directory interface at join time.
package spaces

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/storage"
)

type Handler struct {
	Spaces storage.SpaceStore
}

type createRequest struct {
	Name string `json:"name" binding:"required"`
	// Dimensions is "WxH", e.g. "100x200", matching the client editor.
	Dimensions string `json:"dimensions" binding:"required"`
}

func parseDimensions(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, domain.ErrBadDimensions
	}
	return w, h, nil
}

func callerID(c *gin.Context) domain.UserID {
	return domain.UserID(c.GetString("userId"))
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}
	width, height, err := parseDimensions(req.Dimensions)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	space, err := domain.NewSpace(req.Name, callerID(c), width, height)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}
	if err := h.Spaces.CreateSpace(c.Request.Context(), space); err != nil {
		log.Error().Err(err).Str("module", "api.spaces").Msg("create space")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"spaceId": space.ID})
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.Spaces.ListSpacesByOwner(c.Request.Context(), callerID(c))
	if err != nil {
		log.Error().Err(err).Str("module", "api.spaces").Msg("list spaces")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	type spaceInfo struct {
		ID         domain.SpaceID `json:"id"`
		Name       string         `json:"name"`
		Dimensions string         `json:"dimensions"`
	}
	out := make([]spaceInfo, 0, len(list))
	for _, sp := range list {
		out = append(out, spaceInfo{
			ID:         sp.ID,
			Name:       sp.Name,
			Dimensions: fmt.Sprintf("%dx%d", sp.Width, sp.Height),
		})
	}
	c.JSON(http.StatusOK, gin.H{"spaces": out})
}

func (h *Handler) Get(c *gin.Context) {
	id := domain.SpaceID(c.Param("id"))
	space, err := h.Spaces.GetSpace(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSpaceNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Space not found"})
			return
		}
		log.Error().Err(err).Str("module", "api.spaces").Msg("get space")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dimensions": fmt.Sprintf("%dx%d", space.Width, space.Height),
		"elements":   space.Items,
	})
}

func (h *Handler) Delete(c *gin.Context) {
	id := domain.SpaceID(c.Param("id"))
	space, err := h.Spaces.GetSpace(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSpaceNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Space not found"})
			return
		}
		log.Error().Err(err).Str("module", "api.spaces").Msg("get space")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	if space.OwnerID != callerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
		return
	}

	if err := h.Spaces.DeleteSpace(c.Request.Context(), id); err != nil {
		log.Error().Err(err).Str("module", "api.spaces").Msg("delete space")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Space deleted"})
}
