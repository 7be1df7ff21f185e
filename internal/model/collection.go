package model

import "time"

// Collection records a buyer claiming an advert. The unique index on
// AdvertID enforces at most one collection per advert; SellerID is the
// advert's owner denormalized at collect time. Rows are immutable once
// written.
type Collection struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	AdvertID uint      `json:"advert_id" gorm:"uniqueIndex;not null"`
	SellerID uint      `json:"seller_id" gorm:"not null;index"`
	BuyerID  uint      `json:"buyer_id" gorm:"not null;index"`
	Date     time.Time `json:"date" gorm:"not null"`

	// Relations
	Advert *Advert `json:"advert,omitempty" gorm:"foreignKey:AdvertID"`
	Seller *User   `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Buyer  *User   `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

// TableName keeps the historical schema name.
func (Collection) TableName() string {
	return "food_orders"
}
