package http

import (
	"github.com/gin-gonic/gin"

	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
)

func RegisterConsumerRoutes(r gin.IRouter, handler *ConsumerHandler) {
	consumers := r.Group("/consumers", sharedHTTP.RequireAuth())
	{
		consumers.GET("", handler.ListConsumers)
		consumers.GET("/new", handler.NewConsumer)
		consumers.GET("/me", handler.MyConsumer)
		consumers.GET("/:id", handler.GetConsumer)
		consumers.POST("", handler.CreateConsumer)
		consumers.PUT("/:id", handler.UpdateConsumer)
		consumers.DELETE("/:id", handler.DeleteConsumer)
	}
}
