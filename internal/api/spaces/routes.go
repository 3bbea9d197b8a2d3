package spaces

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the space routes; auth is the bearer-token
// middleware guarding the routes that need a caller identity.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	rg.POST("", auth, h.Create)
	rg.GET("", auth, h.List)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", auth, h.Delete)
}
