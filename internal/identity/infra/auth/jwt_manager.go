package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/davicafu/rosterlab/internal/identity/domain"
	"github.com/davicafu/rosterlab/internal/shared/domain/access"
)

// Claims extiende los claims registrados con email y roles.
type Claims struct {
	Email string        `json:"email"`
	Roles []access.Role `json:"roles"`
	jwt.RegisteredClaims
}

// JWTManager firma y valida tokens HS256.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret, issuer string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue firma un token para el usuario con sus roles actuales.
func (m *JWTManager) Issue(u *domain.User) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		Email: u.Email,
		Roles: u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(m.secret)
}

// ParsePrincipal valida el token y reconstruye la identidad.
func (m *JWTManager) ParsePrincipal(token string) (access.Principal, error) {
	claims, err := m.parse(token)
	if err != nil {
		return access.Principal{}, err
	}
	return access.Principal{UserID: claims.Subject, Email: claims.Email, Roles: claims.Roles}, nil
}

func (m *JWTManager) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
