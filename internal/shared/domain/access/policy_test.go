package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	assert.IsType(t, PublicPolicy{}, Resolve(Anonymous()))
	assert.IsType(t, AdminPolicy{}, Resolve(Principal{Email: "admin@gmail.com", Roles: []Role{RoleAdmin}}))
	assert.IsType(t, OwnerPolicy{}, Resolve(Principal{Email: "a@b.c", Roles: []Role{RoleUser}}))
	// Sin roles sigue siendo un usuario autenticado
	assert.IsType(t, OwnerPolicy{}, Resolve(Principal{Email: "a@b.c"}))
}

func TestAdminPolicy(t *testing.T) {
	p := Resolve(Principal{Email: "admin@gmail.com", Roles: []Role{RoleAdmin}})

	assert.True(t, p.CanList(KindStudent))
	assert.True(t, p.CanList(KindConsumer))
	assert.True(t, p.CanView(KindConsumer, "someone@else.com"))
	assert.True(t, p.CanDelete(KindStudent))
	assert.True(t, p.CanAdminister())
	assert.False(t, p.CanCreate(KindStudent))
	assert.False(t, p.CanEdit(KindConsumer, "someone@else.com"))
}

func TestOwnerPolicy(t *testing.T) {
	tests := []struct {
		name       string
		roles      []Role
		kind       RecordKind
		owner      string
		wantView   bool
		wantCreate bool
		wantEdit   bool
	}{
		{"user nuevo puede crear student", []Role{RoleUser}, KindStudent, "me@x.com", true, true, false},
		{"user nuevo puede crear consumer", []Role{RoleUser}, KindConsumer, "me@x.com", true, true, false},
		{"student edita su ficha", []Role{RoleStudent}, KindStudent, "ME@x.com", true, false, true},
		{"student no edita consumer propio", []Role{RoleStudent}, KindConsumer, "me@x.com", true, false, false},
		{"consumer edita su ficha", []Role{RoleConsumer}, KindConsumer, "me@x.com", true, true, true},
		{"consumer no ve fichas ajenas", []Role{RoleConsumer}, KindConsumer, "other@x.com", false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(Principal{Email: "me@x.com", Roles: tt.roles})
			assert.Equal(t, tt.wantView, p.CanView(tt.kind, tt.owner))
			assert.Equal(t, tt.wantCreate, p.CanCreate(tt.kind))
			assert.Equal(t, tt.wantEdit, p.CanEdit(tt.kind, tt.owner))
			assert.False(t, p.CanList(tt.kind))
			assert.False(t, p.CanDelete(tt.kind))
			assert.False(t, p.CanAdminister())
		})
	}
}

func TestPublicPolicy(t *testing.T) {
	p := Resolve(Anonymous())

	for _, kind := range []RecordKind{KindStudent, KindConsumer} {
		assert.False(t, p.CanList(kind))
		assert.False(t, p.CanView(kind, ""))
		assert.False(t, p.CanCreate(kind))
		assert.False(t, p.CanEdit(kind, ""))
		assert.False(t, p.CanDelete(kind))
	}
	assert.False(t, p.CanAdminister())
	assert.False(t, p.Principal().Authenticated())
}

func TestPrincipal_PrimaryRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, Principal{Roles: []Role{RoleUser, RoleAdmin}}.PrimaryRole())
	assert.Equal(t, RoleStudent, Principal{Roles: []Role{RoleStudent}}.PrimaryRole())
	assert.Equal(t, Role(""), Principal{}.PrimaryRole())
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("consumer")
	assert.True(t, ok)
	assert.Equal(t, RoleConsumer, r)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}
