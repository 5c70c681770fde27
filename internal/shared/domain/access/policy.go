package access

// AccessPolicy es el conjunto de capacidades de quien hace la petición.
// Se resuelve una vez por petición (ver Resolve) y los handlers sólo
// consultan capacidades, nunca nombres de rol.
type AccessPolicy interface {
	Principal() Principal
	CanList(kind RecordKind) bool
	CanView(kind RecordKind, ownerEmail string) bool
	CanCreate(kind RecordKind) bool
	CanEdit(kind RecordKind, ownerEmail string) bool
	CanDelete(kind RecordKind) bool
	CanAdminister() bool
}

// Resolve elige la variante de política para el principal.
func Resolve(p Principal) AccessPolicy {
	switch {
	case !p.Authenticated():
		return PublicPolicy{}
	case p.HasRole(RoleAdmin):
		return AdminPolicy{principal: p}
	default:
		return OwnerPolicy{principal: p}
	}
}

// ---------------- Admin ----------------

// AdminPolicy lista, ve y borra cualquier ficha. No da de alta fichas
// personales: registrarse cambiaría sus roles.
type AdminPolicy struct {
	principal Principal
}

func NewAdminPolicy(p Principal) AdminPolicy { return AdminPolicy{principal: p} }

func (a AdminPolicy) Principal() Principal { return a.principal }
func (AdminPolicy) CanList(RecordKind) bool { return true }
func (AdminPolicy) CanView(RecordKind, string) bool { return true }
func (AdminPolicy) CanCreate(RecordKind) bool { return false }
func (a AdminPolicy) CanEdit(_ RecordKind, owner string) bool { return a.principal.Owns(owner) }
func (AdminPolicy) CanDelete(RecordKind) bool { return true }
func (AdminPolicy) CanAdminister() bool { return true }

// ---------------- Owner ----------------

// OwnerPolicy cubre a cualquier usuario autenticado sin rol Admin.
type OwnerPolicy struct {
	principal Principal
}

func NewOwnerPolicy(p Principal) OwnerPolicy { return OwnerPolicy{principal: p} }

func (o OwnerPolicy) Principal() Principal { return o.principal }

func (OwnerPolicy) CanList(RecordKind) bool { return false }

func (o OwnerPolicy) CanView(_ RecordKind, ownerEmail string) bool {
	return o.principal.Owns(ownerEmail)
}

func (o OwnerPolicy) CanCreate(kind RecordKind) bool {
	switch kind {
	case KindStudent:
		return o.principal.HasRole(RoleUser)
	case KindConsumer:
		return o.principal.HasRole(RoleUser) || o.principal.HasRole(RoleConsumer)
	}
	return false
}

func (o OwnerPolicy) CanEdit(kind RecordKind, ownerEmail string) bool {
	return o.principal.HasRole(kind.RoleFor()) && o.principal.Owns(ownerEmail)
}

func (OwnerPolicy) CanDelete(RecordKind) bool { return false }
func (OwnerPolicy) CanAdminister() bool { return false }

// ---------------- Public ----------------

// PublicPolicy no concede nada.
type PublicPolicy struct{}

func (PublicPolicy) Principal() Principal { return Anonymous() }
func (PublicPolicy) CanList(RecordKind) bool { return false }
func (PublicPolicy) CanView(RecordKind, string) bool { return false }
func (PublicPolicy) CanCreate(RecordKind) bool { return false }
func (PublicPolicy) CanEdit(RecordKind, string) bool { return false }
func (PublicPolicy) CanDelete(RecordKind) bool { return false }
func (PublicPolicy) CanAdminister() bool { return false }

// Verificación estática
var (
	_ AccessPolicy = AdminPolicy{}
	_ AccessPolicy = OwnerPolicy{}
	_ AccessPolicy = PublicPolicy{}
)
