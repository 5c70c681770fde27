package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davicafu/rosterlab/internal/shared/domain/access"
)

// User es una cuenta de acceso. Las fichas de estudiante o cliente se
// enlazan con ella por email.
type User struct {
	ID           uuid.UUID     `json:"id"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Roles        []access.Role `json:"roles"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NormalizeEmail es la forma en la que se guardan y buscan los emails.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Principal construye la identidad que viaja en el token.
func (u *User) Principal() access.Principal {
	roles := make([]access.Role, len(u.Roles))
	copy(roles, u.Roles)
	return access.Principal{UserID: u.ID.String(), Email: u.Email, Roles: roles}
}

func (u *User) HasRole(role access.Role) bool {
	return u.Principal().HasRole(role)
}
