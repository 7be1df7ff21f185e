package model

import "time"

// Role is the closed set of account states. Deactivation is a role
// transition, never a row deletion, so historical orders and messages keep
// their references.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	// RoleOff marks a soft-deleted account. The transition is terminal.
	RoleOff Role = "off"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleOff
}

// Active reports whether the account may log in at all.
func (r Role) Active() bool {
	return r == RoleUser || r == RoleAdmin
}

// Allowed reports whether r is in the allowed set. Unknown roles and RoleOff
// fail closed.
func (r Role) Allowed(roles ...Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

// User represents a marketplace account.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string    `json:"first_name" gorm:"size:100;not null"`
	Surname      string    `json:"surname" gorm:"size:100;not null"`
	DOB          time.Time `json:"dob"`
	Address      string    `json:"address" gorm:"size:255"`
	Phone        string    `json:"phone" gorm:"size:20"`
	Role         Role      `json:"role" gorm:"type:varchar(10);not null;default:'user';index"`
	Newsletter   bool      `json:"newsletter" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Adverts []Advert `json:"adverts,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}
