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
	ErrConsumerNotFound      = errors.New("consumer not found")
	ErrConsumerAlreadyExists = errors.New("consumer already exists")
)

// --- Repositorio de Consumers ---
type ConsumerRepository interface {
	Create(ctx context.Context, c *Consumer, evt sharedDomain.OutboxEvent) error
	Update(ctx context.Context, c *Consumer, evt sharedDomain.OutboxEvent) error
	DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id string) (*Consumer, error)
	ListAll(ctx context.Context) ([]*Consumer, error)
	ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria) ([]*Consumer, error)
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

func ConsumerCacheKeyByID(id string) string {
	return fmt.Sprintf("consumer:id:%s", id)
}
