package access

import (
	"errors"
	"strings"
)

// ErrUnauthorized is returned when a caller lacks the capability required for
// a balance mutation.
var ErrUnauthorized = errors.New("unauthorized")

const (
	RoleStaff = "staff"
	RoleOwner = "owner"
)

// Caller identifies who invoked a command and which roles they hold.
type Caller struct {
	ID    string
	Roles []string
}

// HasRole reports whether c holds role, ignoring case.
func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// CanWriteBalances reports whether c may credit or debit balances.
func (c Caller) CanWriteBalances() bool {
	return c.HasRole(RoleStaff) || c.HasRole(RoleOwner)
}

// RequireBalanceWriter returns ErrUnauthorized unless c holds staff or owner.
func RequireBalanceWriter(c Caller) error {
	if !c.CanWriteBalances() {
		return ErrUnauthorized
	}
	return nil
}

// Directory assigns roles to user ids for adapters whose platform carries no
// role information of its own.
type Directory struct {
	roles map[string][]string
}

// NewDirectory builds a directory from explicit owner and staff id lists.
func NewDirectory(ownerIDs, staffIDs []string) *Directory {
	d := &Directory{roles: make(map[string][]string)}
	for _, id := range ownerIDs {
		d.grant(id, RoleOwner)
	}
	for _, id := range staffIDs {
		d.grant(id, RoleStaff)
	}
	return d
}

func (d *Directory) grant(id, role string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	d.roles[id] = append(d.roles[id], role)
}

// Caller resolves id into a Caller with whatever roles were configured for it.
func (d *Directory) Caller(id string) Caller {
	if d == nil {
		return Caller{ID: id}
	}
	roles := d.roles[id]
	out := make([]string, len(roles))
	copy(out, roles)
	return Caller{ID: id, Roles: out}
}
