package http

import (
	"github.com/gin-gonic/gin"

	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
)

func RegisterAuthRoutes(r gin.IRouter, handler *AuthHandler) {
	r.GET("/", handler.Home)

	auth := r.Group("/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.GET("/me", sharedHTTP.RequireAuth(), handler.Me)
	}
}
