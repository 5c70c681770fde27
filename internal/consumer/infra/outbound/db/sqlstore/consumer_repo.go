package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	consumerDomain "github.com/davicafu/rosterlab/internal/consumer/domain"
	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	"github.com/davicafu/rosterlab/internal/shared/infra/platform/db/sqlstore"
)

const consumerColumns = `consumer_id, name, email, address, phone, registration_date, photo`

var consumerFields = map[string]string{
	"consumer_id":       "consumer_id",
	"name":              "name",
	"email":             "LOWER(email)",
	"phone":             "phone",
	"registration_date": "registration_date",
}

// ConsumerRepo implementa ConsumerRepository sobre database/sql.
type ConsumerRepo struct {
	db *sqlstore.DB
}

var _ consumerDomain.ConsumerRepository = (*ConsumerRepo)(nil)

func NewConsumerRepo(db *sqlstore.DB) *ConsumerRepo {
	return &ConsumerRepo{db: db}
}

func (r *ConsumerRepo) Create(ctx context.Context, c *consumerDomain.Consumer, evt sharedDomain.OutboxEvent) error {
	return r.db.WithTx(ctx, func(tx *sqlstore.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO consumers (`+consumerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ConsumerID, c.Name, c.Email, c.Address, c.Phone, c.RegistrationDate.UTC(), c.Photo,
		)
		if sqlstore.IsUniqueViolation(err) {
			return consumerDomain.ErrConsumerAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return sqlstore.InsertOutboxTx(ctx, tx, evt)
	})
}

func (r *ConsumerRepo) Update(ctx context.Context, c *consumerDomain.Consumer, evt sharedDomain.OutboxEvent) error {
	return r.mutate(ctx, evt,
		`UPDATE consumers SET name=?, email=?, address=?, phone=?, registration_date=?, photo=? WHERE consumer_id=?`,
		c.Name, c.Email, c.Address, c.Phone, c.RegistrationDate.UTC(), c.Photo, c.ConsumerID,
	)
}

func (r *ConsumerRepo) DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error {
	return r.mutate(ctx, evt, `DELETE FROM consumers WHERE consumer_id=?`, id)
}

// mutate ejecuta una sentencia sobre una fila existente y guarda evt en la misma transacción.
func (r *ConsumerRepo) mutate(ctx context.Context, evt sharedDomain.OutboxEvent, query string, args ...interface{}) error {
	return r.db.WithTx(ctx, func(tx *sqlstore.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if err := sqlstore.RowsAffected(res, consumerDomain.ErrConsumerNotFound); err != nil {
			return err
		}
		return sqlstore.InsertOutboxTx(ctx, tx, evt)
	})
}

func (r *ConsumerRepo) GetByID(ctx context.Context, id string) (*consumerDomain.Consumer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+consumerColumns+` FROM consumers WHERE consumer_id=?`, id)
	c, err := scanConsumer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, consumerDomain.ErrConsumerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db scan error: %w", err)
	}
	return c, nil
}

func (r *ConsumerRepo) ListAll(ctx context.Context) ([]*consumerDomain.Consumer, error) {
	return r.ListByCriteria(ctx, nil)
}

func (r *ConsumerRepo) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria) ([]*consumerDomain.Consumer, error) {
	whereSQL, args, err := sqlstore.ApplyCriteria(criteria, consumerFields)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + consumerColumns + ` FROM consumers`
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}
	rows, err := r.db.QueryContext(ctx, query+" ORDER BY consumer_id", args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var consumers []*consumerDomain.Consumer
	for rows.Next() {
		c, err := scanConsumer(rows)
		if err != nil {
			return nil, err
		}
		consumers = append(consumers, c)
	}
	return consumers, rows.Err()
}

func (r *ConsumerRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM consumers WHERE consumer_id=?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func scanConsumer(row interface{ Scan(...interface{}) error }) (*consumerDomain.Consumer, error) {
	var c consumerDomain.Consumer
	if err := row.Scan(&c.ConsumerID, &c.Name, &c.Email, &c.Address, &c.Phone, &c.RegistrationDate, &c.Photo); err != nil {
		return nil, err
	}
	c.RegistrationDate = c.RegistrationDate.UTC()
	return &c, nil
}
