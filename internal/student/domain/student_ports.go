package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
)

var (
	ErrStudentNotFound      = errors.New("student not found")
	ErrStudentAlreadyExists = errors.New("student already exists")
)

// --- Repositorio de Students ---
type StudentRepository interface {
	Create(ctx context.Context, s *Student, evt sharedDomain.OutboxEvent) error
	Update(ctx context.Context, s *Student, evt sharedDomain.OutboxEvent) error
	DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id string) (*Student, error)
	ListAll(ctx context.Context) ([]*Student, error)
	ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria) ([]*Student, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// RoleAssigner cambia el rol de la cuenta y devuelve un token nuevo.
type RoleAssigner interface {
	Promote(ctx context.Context, email string, role access.Role) (string, error)
}

// OwnerCriteria busca las fichas de una cuenta. El email se compara en minúsculas.
type OwnerCriteria struct {
	Email string
}

func (c OwnerCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{
		{Field: "email", Op: sharedDomain.OpEq, Value: strings.ToLower(strings.TrimSpace(c.Email))},
	}
}

// ---------- Helpers comunes (cache keys, etc.) ----------

func StudentCacheKeyByID(id string) string {
	return fmt.Sprintf("student:id:%s", id)
}
