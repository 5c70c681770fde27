package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	analyticsDomain "github.com/davicafu/rosterlab/internal/analytics/domain"
)

// RegistrationRepo guarda el log en memoria. Se usa cuando no hay ClickHouse.
type RegistrationRepo struct {
	entries []analyticsDomain.RegistrationEntry
	seen    map[string]bool
	mu      sync.RWMutex
}

var _ analyticsDomain.RegistrationRepository = (*RegistrationRepo)(nil)

func NewRegistrationRepo() *RegistrationRepo {
	return &RegistrationRepo{seen: make(map[string]bool)}
}

// LogBatch ignora los eventos ya registrados.
func (r *RegistrationRepo) LogBatch(_ context.Context, entries []analyticsDomain.RegistrationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		if e.EventID != "" && r.seen[e.EventID] {
			continue
		}
		r.seen[e.EventID] = true
		r.entries = append(r.entries, e)
	}
	return nil
}

func (r *RegistrationRepo) DailyTrend(_ context.Context, from, to time.Time) ([]analyticsDomain.DailyTrend, error) {
	type key struct {
		day  time.Time
		kind string
	}

	r.mu.RLock()
	buckets := make(map[key]*analyticsDomain.DailyTrend)
	for _, e := range r.entries {
		if e.OccurredAt.Before(from) || e.OccurredAt.After(to) {
			continue
		}
		at := e.OccurredAt.UTC()
		k := key{day: time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC), kind: e.Kind}
		b, ok := buckets[k]
		if !ok {
			b = &analyticsDomain.DailyTrend{Day: k.day, Kind: k.kind}
			buckets[k] = b
		}
		switch e.Action {
		case analyticsDomain.ActionCreated:
			b.Created++
		case analyticsDomain.ActionUpdated:
			b.Updated++
		case analyticsDomain.ActionDeleted:
			b.Deleted++
		}
	}
	r.mu.RUnlock()

	out := make([]analyticsDomain.DailyTrend, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}
