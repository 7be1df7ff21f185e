package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Advert is a posted offer of surplus food. Available is a cached flag: a row
// can read available=true after its expiry has passed until the next sweep
// flips it, so listings must run the sweep before trusting it.
type Advert struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	Title     string           `json:"title" gorm:"size:100;not null"`
	Contents  string           `json:"contents" gorm:"type:text;not null"`
	Address   string           `json:"address" gorm:"size:255;not null"`
	Latitude  *decimal.Decimal `json:"latitude,omitempty" gorm:"type:decimal(9,6)"`
	Longitude *decimal.Decimal `json:"longitude,omitempty" gorm:"type:decimal(9,6)"`
	OwnerID   uint             `json:"owner_id" gorm:"not null;index"`
	Expiry    time.Time        `json:"expiry" gorm:"not null;index"`
	Available bool             `json:"available" gorm:"default:true;index"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Relations
	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// Collectable reports whether the advert can be collected at the given
// instant, regardless of whether the sweep has run yet.
func (a *Advert) Collectable(now time.Time) bool {
	return a.Available && a.Expiry.After(now)
}
