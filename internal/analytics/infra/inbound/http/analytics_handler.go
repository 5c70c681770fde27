package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/rosterlab/internal/analytics/application"
	"github.com/davicafu/rosterlab/pkg/utils"
)

const dateLayout = "2006-01-02"

type AnalyticsHandler struct {
	service *application.AnalyticsService
	log     *zap.Logger
}

func NewAnalyticsHandler(service *application.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, log: log}
}

// RegistrationTrend endpoint GET /admin/analytics/registrations?from=2024-01-01&to=2024-01-31
// "to" incluye el día completo.
func (h *AnalyticsHandler) RegistrationTrend(c *gin.Context) {
	from, ok := parseDay(c, "from")
	if !ok {
		return
	}
	to, ok := parseDay(c, "to")
	if !ok {
		return
	}
	if !to.IsZero() {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	utils.SendOutcome(c, h.service.Trend(c.Request.Context(), from, to), http.StatusOK, h.log)
}

func parseDay(c *gin.Context, param string) (time.Time, bool) {
	raw := c.Query(param)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		utils.SendBadRequest(c, param+" must be a date (YYYY-MM-DD)")
		return time.Time{}, false
	}
	return t, true
}
