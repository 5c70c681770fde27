package access

import "strings"

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleUser     Role = "User"
	RoleStudent  Role = "Student"
	RoleConsumer Role = "Consumer"
)

// AllRoles es el catálogo que se siembra al arrancar.
var AllRoles = []Role{RoleAdmin, RoleUser, RoleConsumer, RoleStudent}

// ParseRole acepta el nombre del rol sin distinguir mayúsculas.
func ParseRole(raw string) (Role, bool) {
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), strings.TrimSpace(raw)) {
			return r, true
		}
	}
	return "", false
}

// RecordKind identifica el tipo de ficha sobre el que se pide permiso.
type RecordKind string

const (
	KindStudent  RecordKind = "student"
	KindConsumer RecordKind = "consumer"
)

// RoleFor devuelve el rol que obtiene quien registra una ficha de este tipo.
func (k RecordKind) RoleFor() Role {
	if k == KindStudent {
		return RoleStudent
	}
	return RoleConsumer
}

// Principal es la identidad autenticada (o anónima) de la petición.
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Roles  []Role `json:"roles"`
}

func Anonymous() Principal { return Principal{} }

func (p Principal) Authenticated() bool { return p.Email != "" }

func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrimaryRole es el rol que se muestra en la home.
func (p Principal) PrimaryRole() Role {
	for _, r := range []Role{RoleAdmin, RoleStudent, RoleConsumer, RoleUser} {
		if p.HasRole(r) {
			return r
		}
	}
	return ""
}

// Owns compara emails sin distinguir mayúsculas, igual que los logins.
func (p Principal) Owns(ownerEmail string) bool {
	return p.Authenticated() && strings.EqualFold(p.Email, ownerEmail)
}
