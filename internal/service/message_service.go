package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "foodshare/internal/errors"
	"foodshare/internal/model"
	"foodshare/internal/repository"
)

// Conversation is one row of the messages page: a counterpart, the most
// recent message exchanged with them, and a relative-time label for it.
type Conversation struct {
	Partner model.User    `json:"partner"`
	Latest  model.Message `json:"latest"`
	SentAgo string        `json:"sent_ago"`
}

// MessageService handles the append-only chat log.
type MessageService interface {
	Send(ctx context.Context, senderID, receiverID uint, contents string) (*model.Message, error)
	Conversations(ctx context.Context, userID uint) ([]Conversation, error)
	Latest(ctx context.Context, userA, userB uint) (*model.Message, error)
	History(ctx context.Context, userA, userB uint) ([]model.Message, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

// NewMessageService creates a new message service.
func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// Send appends one message. Contents must be non-empty and within the bound;
// the receiver must exist.
func (s *messageService) Send(ctx context.Context, senderID, receiverID uint, contents string) (*model.Message, error) {
	if contents == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	if len(contents) > model.MaxMessageLen {
		return nil, apperrors.ErrMessageTooLong
	}

	if _, err := s.userRepo.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	message := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Timestamp:  time.Now(),
		Contents:   contents,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return message, nil
}

// Conversations returns every counterpart the user has exchanged messages
// with, most recent conversation first.
func (s *messageService) Conversations(ctx context.Context, userID uint) ([]Conversation, error) {
	partners, err := s.messageRepo.ConversationPartners(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	conversations := make([]Conversation, 0, len(partners))
	for _, partnerID := range partners {
		latest, err := s.messageRepo.Latest(ctx, userID, partnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		partner, err := s.userRepo.FindByID(ctx, partnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		conversations = append(conversations, Conversation{
			Partner: *partner,
			Latest:  *latest,
			SentAgo: FormatSentAgo(now, latest.Timestamp),
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].Latest.Timestamp.After(conversations[j].Latest.Timestamp)
	})
	return conversations, nil
}

// Latest returns the most recent message between the pair.
func (s *messageService) Latest(ctx context.Context, userA, userB uint) (*model.Message, error) {
	message, err := s.messageRepo.Latest(ctx, userA, userB)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoMessages
		}
		return nil, err
	}
	return message, nil
}

// History returns all messages between the pair in chronological order. The
// result is identical whichever way round the pair is given.
func (s *messageService) History(ctx context.Context, userA, userB uint) ([]model.Message, error) {
	return s.messageRepo.History(ctx, userA, userB)
}

// FormatSentAgo renders how long ago a message was sent. Thresholds are
// strict: exactly 60 minutes still reads as minutes and exactly 24 hours
// still reads as hours.
func FormatSentAgo(now, sent time.Time) string {
	mins := int64(now.Sub(sent) / time.Minute)
	if mins < 1 {
		return "sent just now"
	}
	if mins > 60 {
		hours := mins / 60
		if hours > 24 {
			days := hours / 24
			return fmt.Sprintf("sent %d day(s) ago", days)
		}
		return fmt.Sprintf("sent %d hour(s) ago", hours)
	}
	return fmt.Sprintf("sent %d min(s) ago", mins)
}
