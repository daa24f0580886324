// File: internal/domain/account.go
package domain

import "time"

// Account is the application's read-only projection of an identity-provider
// account joined with its stored profile.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Route paths shared by the session client, the guard and the dashboards.
const (
	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
)

// DashboardPathFor returns the landing page for a role.
func DashboardPathFor(r Role) string {
	switch r {
	case RoleBuyer:
		return DashboardPath + "/buyer"
	case RoleVendor:
		return DashboardPath + "/vendor"
	case RoleRider:
		return DashboardPath + "/rider"
	}
	return LoginPath
}
