package repository

import (
	"context"

	"gorm.io/gorm"

	"foodshare/internal/model"
)

// MessageRepository defines message persistence operations. The log is
// append-only: there is no update or delete.
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	ConversationPartners(ctx context.Context, userID uint) ([]uint, error)
	Latest(ctx context.Context, userA, userB uint) (*model.Message, error)
	History(ctx context.Context, userA, userB uint) ([]model.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create appends a message to the log.
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ConversationPartners returns the distinct set of user IDs that have
// exchanged at least one message with userID, in either direction.
func (r *messageRepository) ConversationPartners(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Raw(
		`SELECT DISTINCT CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END
		 FROM messages WHERE sender_id = ? OR receiver_id = ?`,
		userID, userID, userID,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func pairScope(db *gorm.DB, userA, userB uint) *gorm.DB {
	return db.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userA, userB, userB, userA,
	)
}

// Latest returns the single most recent message between the pair.
func (r *messageRepository) Latest(ctx context.Context, userA, userB uint) (*model.Message, error) {
	var message model.Message
	if err := pairScope(r.db.WithContext(ctx), userA, userB).
		Order("timestamp DESC").First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// History returns all messages between the pair in chronological order,
// regardless of which party sent each one. Conversation display depends on
// the ordering.
func (r *messageRepository) History(ctx context.Context, userA, userB uint) ([]model.Message, error) {
	var messages []model.Message
	if err := pairScope(r.db.WithContext(ctx), userA, userB).
		Order("timestamp ASC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
