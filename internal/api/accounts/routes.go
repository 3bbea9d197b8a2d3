package accounts

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, h *Handler) {
	rg.POST("/signup", h.Signup)
	rg.POST("/signin", h.Signin)
}
