package model

// Role ids seeded at migration time.
const (
	RoleAdmin    uint = 1
	RoleCustomer uint = 2
)

// Role is immutable reference data assigned to users.
type Role struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:50;not null;uniqueIndex"`
}

// DefaultRoles returns the rows every database is seeded with.
func DefaultRoles() []Role {
	return []Role{
		{ID: RoleAdmin, Name: "Admin"},
		{ID: RoleCustomer, Name: "Customer"},
	}
}
