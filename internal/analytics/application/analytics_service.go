package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	analyticsDomain "github.com/davicafu/rosterlab/internal/analytics/domain"
	"github.com/davicafu/rosterlab/internal/shared/domain/outcome"
)

// DefaultWindow es el rango que se consulta si no llega "from".
const DefaultWindow = 30 * 24 * time.Hour

type AnalyticsService struct {
	repo analyticsDomain.RegistrationRepository
	now  func() time.Time
	log  *zap.Logger
}

func NewAnalyticsService(repo analyticsDomain.RegistrationRepository, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: func() time.Time { return time.Now().UTC() }, log: log}
}

// Record guarda las entradas recibidas del bus.
func (s *AnalyticsService) Record(ctx context.Context, entries ...analyticsDomain.RegistrationEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.repo.LogBatch(ctx, entries)
}

// Trend devuelve la tendencia diaria entre from y to. Las fechas cero toman
// los últimos DefaultWindow hasta ahora.
func (s *AnalyticsService) Trend(ctx context.Context, from, to time.Time) outcome.Outcome[[]analyticsDomain.DailyTrend] {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-DefaultWindow)
	}
	if from.After(to) {
		return outcome.Invalid[[]analyticsDomain.DailyTrend](outcome.FieldErrors{"from": "must not be after to"})
	}

	trend, err := s.repo.DailyTrend(ctx, from.UTC(), to.UTC())
	if err != nil {
		s.log.Error("Failed to query registration trend", zap.Time("from", from), zap.Time("to", to), zap.Error(err))
		return outcome.Failed[[]analyticsDomain.DailyTrend](err)
	}
	if trend == nil {
		trend = []analyticsDomain.DailyTrend{}
	}
	return outcome.OK(trend)
}
