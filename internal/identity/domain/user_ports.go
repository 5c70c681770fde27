package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/davicafu/rosterlab/internal/shared/domain/access"
)

// ---------- Errores de dominio ----------
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// ---------- Interfaces (Ports) ----------

// UserRepository persiste cuentas y sus roles.
type UserRepository interface {
	// Debe devolver ErrUserAlreadyExists si el email ya está registrado.
	Create(ctx context.Context, u *User) error

	// Debe devolver ErrUserNotFound si no existe. El email llega normalizado.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ReplaceRoles sustituye todos los roles del usuario.
	// Debe devolver ErrUserNotFound si no existe.
	ReplaceRoles(ctx context.Context, userID uuid.UUID, roles []access.Role) error

	// EnsureRoles da de alta el catálogo de roles si falta alguno.
	EnsureRoles(ctx context.Context, roles []access.Role) error
}

// TokenIssuer firma tokens de sesión.
type TokenIssuer interface {
	Issue(u *User) (string, error)
}

// Session es lo que recibe el cliente tras login o promoción de rol.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
