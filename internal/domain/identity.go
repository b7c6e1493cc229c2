package domain

import "time"

// Role enumerates account roles known to the commerce API.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleCustomer Role = "CUSTOMER"
)

// BackOfficeRoles are the roles allowed to hold a gateway session.
var BackOfficeRoles = []Role{RoleAdmin, RoleStaff}

// AccountStatus enumerates account lifecycle states.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
	AccountStatusBanned   AccountStatus = "BANNED"
)

// Identity is the authenticated operator profile as confirmed by the server.
type Identity struct {
	ID       string
	Email    string
	FullName string
	Role     Role
	Status   AccountStatus
}

// IsBackOffice reports whether the identity may operate the back office.
func (i *Identity) IsBackOffice() bool {
	if i == nil {
		return false
	}
	return i.Role == RoleAdmin || i.Role == RoleStaff
}

// IsActive reports whether the account is usable.
func (i *Identity) IsActive() bool {
	return i != nil && i.Status == AccountStatusActive
}

// Credential is the access/refresh token pair proving a session.
// Owned exclusively by the session manager; replaced as a whole, never field-wise.
type Credential struct {
	AccessToken       string
	RefreshToken      string
	ExpiresAtEstimate *time.Time
}

// ExpiresWithin reports whether the access token is estimated to expire inside
// the given buffer. The estimate is advisory; a missing estimate reports false.
func (c *Credential) ExpiresWithin(buffer time.Duration) bool {
	if c == nil || c.ExpiresAtEstimate == nil {
		return false
	}
	return time.Now().Add(buffer).After(*c.ExpiresAtEstimate)
}
