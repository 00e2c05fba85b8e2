package auth

import "brackets/internal/model"

// Principal is the authenticated identity threaded explicitly through
// service calls. Read paths take *Principal where nil means an
// unauthenticated caller; mutating paths require a value.
type Principal struct {
	UserID   uint
	Username string
	Role     string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// Owns reports whether the principal owns a resource created by creatorID.
func (p Principal) Owns(creatorID uint) bool {
	return p.UserID == creatorID
}

// CanModify reports whether the principal may mutate a resource created
// by creatorID: the owner and admins may, nobody else.
func (p Principal) CanModify(creatorID uint) bool {
	return p.IsAdmin() || p.Owns(creatorID)
}
