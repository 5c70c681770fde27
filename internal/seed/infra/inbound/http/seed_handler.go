package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/rosterlab/internal/seed/application"
	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
	"github.com/davicafu/rosterlab/pkg/utils"
)

type Runner interface {
	Run(ctx context.Context) (application.Report, error)
}

type SeedHandler struct {
	seeder Runner
	log    *zap.Logger
}

func NewSeedHandler(seeder Runner, log *zap.Logger) *SeedHandler {
	return &SeedHandler{seeder: seeder, log: log}
}

// Seed endpoint POST /admin/seed
func (h *SeedHandler) Seed(c *gin.Context) {
	report, err := h.seeder.Run(c.Request.Context())
	if err != nil {
		h.log.Error("Seed failed", zap.Error(err))
		utils.SendInternalServerError(c, "seed failed")
		return
	}
	utils.SendSuccess(c, http.StatusOK, report)
}

func RegisterSeedRoutes(r gin.IRouter, handler *SeedHandler) {
	r.POST("/admin/seed", sharedHTTP.RequireAdmin(), handler.Seed)
}
