// File: internal/domain/role.go
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the closed set of account roles. The zero value is not a valid role,
// so an unset or unparsed role never passes a role check.
type Role int

const (
	roleUnknown Role = iota
	RoleBuyer
	RoleVendor
	RoleRider
)

// ErrInvalidRole is returned by ParseRole for any value outside the enum.
var ErrInvalidRole = errors.New("invalid role")

// AllRoles lists every valid role in a stable order.
var AllRoles = []Role{RoleBuyer, RoleVendor, RoleRider}

// ParseRole is the single place where untrusted role strings become a Role.
// Matching is exact: "Vendor" and "admin" are both rejected.
func ParseRole(s string) (Role, error) {
	switch s {
	case "buyer":
		return RoleBuyer, nil
	case "vendor":
		return RoleVendor, nil
	case "rider":
		return RoleRider, nil
	}
	return roleUnknown, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleVendor, RoleRider:
		return true
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleBuyer:
		return "buyer"
	case RoleVendor:
		return "vendor"
	case RoleRider:
		return "rider"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler. Invalid roles cannot be encoded.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler through ParseRole.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleNames joins role names for messages, e.g. "buyer, vendor, rider".
func RoleNames(roles ...Role) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	return strings.Join(names, ", ")
}
