package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	analyticsDomain "github.com/davicafu/rosterlab/internal/analytics/domain"
)

// RegistrationRepo implementa RegistrationRepository para ClickHouse.
type RegistrationRepo struct {
	db *sql.DB
}

var _ analyticsDomain.RegistrationRepository = (*RegistrationRepo)(nil)

// Options agrupa la conexión a ClickHouse.
type Options struct {
	Addr     string
	Database string
	Username string
	Password string
}

func NewRegistrationRepo(ctx context.Context, opts Options) (*RegistrationRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
	})

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}
	return &RegistrationRepo{db: conn}, nil
}

// LogBatch inserta el lote en una sola transacción.
func (r *RegistrationRepo) LogBatch(ctx context.Context, entries []analyticsDomain.RegistrationEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO registrations_log (event_id, kind, record_id, email, action, occurred_at)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.EventID, e.Kind, e.RecordID, e.Email, string(e.Action), e.OccurredAt.UTC()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for %s %s: %w", e.Kind, e.RecordID, err)
		}
	}
	return tx.Commit()
}

func (r *RegistrationRepo) DailyTrend(ctx context.Context, from, to time.Time) ([]analyticsDomain.DailyTrend, error) {
	query := `
		SELECT
			toStartOfDay(occurred_at) AS day,
			kind,
			countIf(action = 'created') AS created,
			countIf(action = 'updated') AS updated,
			countIf(action = 'deleted') AS deleted
		FROM registrations_log FINAL
		WHERE occurred_at BETWEEN ? AND ?
		GROUP BY day, kind
		ORDER BY day, kind
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []analyticsDomain.DailyTrend
	for rows.Next() {
		var t analyticsDomain.DailyTrend
		if err := rows.Scan(&t.Day, &t.Kind, &t.Created, &t.Updated, &t.Deleted); err != nil {
			return nil, err
		}
		t.Day = t.Day.UTC()
		trend = append(trend, t)
	}
	return trend, rows.Err()
}

// InitSchema crea la tabla si no existe. ReplacingMergeTree por event_id
// descarta los eventos que el relayer publique dos veces.
func (r *RegistrationRepo) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS registrations_log (
			event_id    String,
			kind        LowCardinality(String),
			record_id   String,
			email       String,
			action      LowCardinality(String),
			occurred_at DateTime64(3, 'UTC')
		) ENGINE = ReplacingMergeTree()
		PARTITION BY toYYYYMM(occurred_at)
		ORDER BY (kind, action, occurred_at, event_id)
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

func (r *RegistrationRepo) Close() error {
	return r.db.Close()
}
