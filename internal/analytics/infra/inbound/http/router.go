package http

import (
	"github.com/gin-gonic/gin"

	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
)

func RegisterAnalyticsRoutes(r gin.IRouter, handler *AnalyticsHandler) {
	admin := r.Group("/admin/analytics", sharedHTTP.RequireAdmin())
	admin.GET("/registrations", handler.RegistrationTrend)
}
