package model

import "time"

// MaxMessageLen bounds message contents.
const MaxMessageLen = 1000

// Message is one entry in the append-only chat log between two users.
// Messages are never mutated after insertion.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   uint      `json:"sender_id" gorm:"not null;index:idx_messages_sender_receiver"`
	ReceiverID uint      `json:"receiver_id" gorm:"not null;index:idx_messages_sender_receiver"`
	Timestamp  time.Time `json:"timestamp" gorm:"not null;index"`
	Contents   string    `json:"contents" gorm:"size:1000;not null"`

	// Relations
	Sender   *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Receiver *User `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
}
