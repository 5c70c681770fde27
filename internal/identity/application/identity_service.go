package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/davicafu/rosterlab/internal/identity/domain"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
	"github.com/davicafu/rosterlab/internal/shared/domain/outcome"
	"github.com/davicafu/rosterlab/internal/shared/domain/validation"
)

// Credentials es la entrada de registro y login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// IdentityService gestiona cuentas, roles y tokens.
type IdentityService struct {
	repo      domain.UserRepository
	tokens    domain.TokenIssuer
	validator *validation.Validator
	cost      int
	log       *zap.Logger
}

func NewIdentityService(repo domain.UserRepository, tokens domain.TokenIssuer, log *zap.Logger) *IdentityService {
	return &IdentityService{
		repo:      repo,
		tokens:    tokens,
		validator: validation.New(),
		cost:      bcrypt.DefaultCost,
		log:       log,
	}
}

// WithHashCost cambia el coste de bcrypt (los tests usan bcrypt.MinCost).
func (s *IdentityService) WithHashCost(cost int) *IdentityService {
	s.cost = cost
	return s
}

// Register da de alta una cuenta con rol User.
func (s *IdentityService) Register(ctx context.Context, in Credentials) outcome.Outcome[*domain.User] {
	in.Email = domain.NormalizeEmail(in.Email)
	if fields := s.validator.Struct(in); fields != nil {
		return outcome.Invalid[*domain.User](fields)
	}

	user, err := s.newUser(in.Email, in.Password, access.RoleUser)
	if err != nil {
		return outcome.Failed[*domain.User](err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return outcome.Invalid[*domain.User](outcome.FieldErrors{"email": "is already registered"})
		}
		return outcome.Failed[*domain.User](err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return outcome.OK(user)
}

// Login comprueba la contraseña y firma un token con los roles actuales.
func (s *IdentityService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	user, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Session{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	return s.session(user)
}

// ReplaceRoles deja al usuario con un único rol.
func (s *IdentityService) ReplaceRoles(ctx context.Context, email string, role access.Role) error {
	user, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	return s.repo.ReplaceRoles(ctx, user.ID, []access.Role{role})
}

// Token vuelve a firmar un token con los roles que tenga ahora el usuario.
func (s *IdentityService) Token(ctx context.Context, email string) (domain.Session, error) {
	user, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return domain.Session{}, err
	}
	return s.session(user)
}

// Promote cambia el rol tras registrar una ficha y devuelve el token nuevo.
func (s *IdentityService) Promote(ctx context.Context, email string, role access.Role) (string, error) {
	if err := s.ReplaceRoles(ctx, email, role); err != nil {
		return "", fmt.Errorf("replace roles: %w", err)
	}
	sess, err := s.Token(ctx, email)
	if err != nil {
		return "", fmt.Errorf("reissue token: %w", err)
	}
	return sess.Token, nil
}

// EnsureRoles siembra el catálogo de roles.
func (s *IdentityService) EnsureRoles(ctx context.Context) error {
	return s.repo.EnsureRoles(ctx, access.AllRoles)
}

// EnsureAdmin crea la cuenta de administración si no existe, o le devuelve
// el rol Admin si lo hubiera perdido.
func (s *IdentityService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = domain.NormalizeEmail(email)

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.HasRole(access.RoleAdmin) {
			return nil
		}
		s.log.Warn("restoring admin role", zap.String("email", email))
		return s.repo.ReplaceRoles(ctx, existing.ID, []access.Role{access.RoleAdmin})
	case !errors.Is(err, domain.ErrUserNotFound):
		return err
	}

	admin, err := s.newUser(email, password, access.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.repo.Create(ctx, admin); err != nil && !errors.Is(err, domain.ErrUserAlreadyExists) {
		return err
	}
	s.log.Info("admin account created", zap.String("email", email))
	return nil
}

func (s *IdentityService) newUser(email, password string, role access.Role) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Roles:        []access.Role{role},
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (s *IdentityService) session(user *domain.User) (domain.Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.Session{}, fmt.Errorf("issue token: %w", err)
	}
	return domain.Session{Token: token, User: user}, nil
}
