package order

import (
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/mayank1327/food-ordering-app/internal/identity"
)

// Predicate is one scoping rule. A predicate renders itself as a SQL
// fragment for the repository and evaluates in memory for everything else,
// so both paths share a single definition of the rule.
type Predicate interface {
	Clause(argPos int) (string, []any)
	Matches(o *Order) bool
}

// CountryPredicate restricts orders to those whose owner country matches.
// The owner country is the snapshot taken at creation, never the current
// identity of the owner.
type CountryPredicate struct {
	Country string
}

func (p CountryPredicate) Clause(argPos int) (string, []any) {
	return placeholder("owner_country", argPos), []any{p.Country}
}

func (p CountryPredicate) Matches(o *Order) bool {
	return o.OwnerCountry == p.Country
}

// OwnershipPredicate restricts orders to those owned by the given user.
type OwnershipPredicate struct {
	UserID uuid.UUID
}

func (p OwnershipPredicate) Clause(argPos int) (string, []any) {
	return placeholder("owner_user_id", argPos), []any{p.UserID}
}

func (p OwnershipPredicate) Matches(o *Order) bool {
	return o.OwnerUserID == p.UserID
}

func placeholder(column string, argPos int) string {
	return fmt.Sprintf("%s = $%d", column, argPos)
}

// Scope is the AND-composition of independent predicates. An empty scope
// matches everything.
type Scope struct {
	predicates []Predicate
}

func NewScope(predicates ...Predicate) Scope {
	return Scope{predicates: predicates}
}

func (s Scope) Unrestricted() bool {
	return len(s.predicates) == 0
}

// Append extends a WHERE-clause condition list with the scope's fragments,
// numbering placeholders after the already collected args.
func (s Scope) Append(conds []string, args []any) ([]string, []any) {
	for _, p := range s.predicates {
		clause, clauseArgs := p.Clause(len(args) + 1)
		conds = append(conds, clause)
		args = append(args, clauseArgs...)
	}
	return conds, args
}

func (s Scope) Matches(o *Order) bool {
	for _, p := range s.predicates {
		if !p.Matches(o) {
			return false
		}
	}
	return true
}

// ResolveScope derives the read scope for list/get. ADMIN sees every order;
// MANAGER and MEMBER see only their own orders within their own country.
func ResolveScope(id identity.Identity) Scope {
	if id.Role == identity.RoleAdmin {
		return NewScope()
	}
	return NewScope(
		CountryPredicate{Country: id.Country},
		OwnershipPredicate{UserID: id.UserID},
	)
}

// ResolveActionScope derives the scope for place/cancel. ADMIN may act on
// any order; MANAGER only on orders they own in their own country. MEMBER is
// rejected by the permission table before scoping applies.
func ResolveActionScope(id identity.Identity) Scope {
	if id.Role == identity.RoleAdmin {
		return NewScope()
	}
	return NewScope(
		CountryPredicate{Country: id.Country},
		OwnershipPredicate{UserID: id.UserID},
	)
}
