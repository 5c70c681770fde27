package http

import (
	"github.com/gin-gonic/gin"

	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
)

func RegisterStudentRoutes(r gin.IRouter, handler *StudentHandler) {
	students := r.Group("/students", sharedHTTP.RequireAuth())
	{
		students.GET("", handler.ListStudents)
		students.GET("/new", handler.NewStudent)
		students.GET("/me", handler.MyStudent)
		students.GET("/:id", handler.GetStudent)
		students.POST("", handler.CreateStudent)
		students.PUT("/:id", handler.UpdateStudent)
		students.DELETE("/:id", handler.DeleteStudent)
	}
}
