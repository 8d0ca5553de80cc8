package identity

import (
	"context"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

const (
	CountryIndia   = "India"
	CountryAmerica = "America"
)

func ValidCountry(country string) bool {
	switch country {
	case CountryIndia, CountryAmerica:
		return true
	}
	return false
}

// Identity is the verified caller supplied by the auth layer. It is
// immutable for the duration of a request.
type Identity struct {
	UserID  uuid.UUID
	Role    Role
	Country string
}

type contextKey struct{}

func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
