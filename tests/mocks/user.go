package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	identityDomain "github.com/davicafu/rosterlab/internal/identity/domain"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
)

// InMemoryUserRepo simula UserRepository indexado por email.
type InMemoryUserRepo struct {
	Users    map[string]*identityDomain.User
	RoleSet  map[access.Role]bool
	FailWith error
	mu       sync.Mutex
}

var _ identityDomain.UserRepository = (*InMemoryUserRepo)(nil)

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{
		Users:   make(map[string]*identityDomain.User),
		RoleSet: make(map[access.Role]bool),
	}
}

func (r *InMemoryUserRepo) Create(ctx context.Context, u *identityDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.Users[u.Email]; ok {
		return identityDomain.ErrUserAlreadyExists
	}
	cp := *u
	cp.Roles = append([]access.Role(nil), u.Roles...)
	r.Users[u.Email] = &cp
	return nil
}

func (r *InMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*identityDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	u, ok := r.Users[email]
	if !ok {
		return nil, identityDomain.ErrUserNotFound
	}
	cp := *u
	cp.Roles = append([]access.Role(nil), u.Roles...)
	return &cp, nil
}

func (r *InMemoryUserRepo) ReplaceRoles(ctx context.Context, userID uuid.UUID, roles []access.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.ID == userID {
			u.Roles = append([]access.Role(nil), roles...)
			return nil
		}
	}
	return identityDomain.ErrUserNotFound
}

func (r *InMemoryUserRepo) EnsureRoles(ctx context.Context, roles []access.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range roles {
		r.RoleSet[role] = true
	}
	return nil
}

// RoleAssignerStub registra las promociones pedidas por los servicios de fichas.
type RoleAssignerStub struct {
	Calls []RoleCall
	Err   error
	mu    sync.Mutex
}

// RoleCall es una promoción recibida.
type RoleCall struct {
	Email string
	Role  access.Role
}

func (s *RoleAssignerStub) Promote(ctx context.Context, email string, role access.Role) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, RoleCall{Email: email, Role: role})
	if s.Err != nil {
		return "", s.Err
	}
	return "token-" + string(role), nil
}
