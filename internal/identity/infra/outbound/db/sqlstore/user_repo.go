package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davicafu/rosterlab/internal/identity/domain"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	"github.com/davicafu/rosterlab/internal/shared/infra/platform/db/sqlstore"
)

// UserRepo guarda cuentas en users y sus roles en user_roles.
type UserRepo struct {
	db *sqlstore.DB
}

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *sqlstore.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithTx(ctx, func(tx *sqlstore.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
			u.ID.String(), u.Email, u.PasswordHash, u.CreatedAt.UTC(),
		)
		if err != nil {
			if sqlstore.IsUniqueViolation(err) {
				return domain.ErrUserAlreadyExists
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return insertRoles(ctx, tx, u.ID, u.Roles)
	})
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var (
		u         domain.User
		idStr     string
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&idStr, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", idStr, err)
	}
	u.CreatedAt = createdAt.UTC()

	u.Roles, err = r.roles(ctx, idStr)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ReplaceRoles(ctx context.Context, userID uuid.UUID, roles []access.Role) error {
	return r.db.WithTx(ctx, func(tx *sqlstore.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID.String()).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, userID.String()); err != nil {
			return fmt.Errorf("failed to clear roles: %w", err)
		}
		return insertRoles(ctx, tx, userID, roles)
	})
}

func (r *UserRepo) EnsureRoles(ctx context.Context, roles []access.Role) error {
	for _, role := range roles {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO roles (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, string(role),
		)
		if err != nil {
			return fmt.Errorf("failed to ensure role %s: %w", role, err)
		}
	}
	return nil
}

func (r *UserRepo) roles(ctx context.Context, userID string) ([]access.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	defer rows.Close()

	var roles []access.Role
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, access.Role(name))
	}
	return roles, rows.Err()
}

func insertRoles(ctx context.Context, tx *sqlstore.Tx, userID uuid.UUID, roles []access.Role) error {
	for _, role := range roles {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES (?, ?)`, userID.String(), string(role),
		)
		if err != nil {
			return fmt.Errorf("failed to insert role %s: %w", role, err)
		}
	}
	return nil
}
