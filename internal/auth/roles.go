package auth

import "github.com/mkajic20/smart-charger-backend/internal/model"

// Role ids as carried in the roleId claim.
const (
	RoleAdmin    = model.RoleAdmin
	RoleCustomer = model.RoleCustomer
)
