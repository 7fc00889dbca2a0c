package models

import "time"

// Role is the closed set of user roles. Permission predicates switch
// exhaustively over these values, so adding a role is a compile-visible
// change everywhere access is decided.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleTechLead       Role = "TECH_LEAD"
	RoleDeveloper      Role = "DEVELOPER"
	RoleClient         Role = "CLIENT"
)

// Roles lists every valid role value.
var Roles = []Role{RoleAdmin, RoleProjectManager, RoleTechLead, RoleDeveloper, RoleClient}

// Valid reports whether r is one of the five known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleTechLead, RoleDeveloper, RoleClient:
		return true
	}
	return false
}

// User represents a system user
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255" json:"-"` // bcrypt hash, never serialized
	Role      Role      `gorm:"size:20;not null" json:"role"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	IsStaff   bool      `gorm:"default:false" json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
