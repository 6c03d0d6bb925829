package repository

import (
	"context"
	"errors"
	"time"

	"socialvim/internal/models"
	"socialvim/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for chat data operations
type ChatRepository interface {
	GetOrCreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error)
	GetUserConversations(ctx context.Context, userID uint) ([]*models.Conversation, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context, convID uint) ([]*models.Message, error)
}

// chatRepository implements ChatRepository
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func withParticipants(db *gorm.DB) *gorm.DB {
	return db.Preload("ParticipantA").Preload("ParticipantB")
}

// GetOrCreateConversation returns the single conversation between the two
// users, creating it when needed. Argument order does not matter.
func (r *chatRepository) GetOrCreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	if userA == userB {
		return nil, models.NewValidationError("a conversation needs two different users")
	}
	lo, hi := models.CanonicalPair(userA, userB)

	defer observability.TrackQuery("upsert", "conversations")()

	find := func() (*models.Conversation, error) {
		var rows []*models.Conversation
		err := withParticipants(r.db.WithContext(ctx)).
			Where("participant_a_id = ? AND participant_b_id = ?", lo, hi).
			Limit(1).
			Find(&rows).Error
		if err != nil || len(rows) == 0 {
			return nil, err
		}
		return rows[0], nil
	}

	conv, err := find()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if conv != nil {
		return conv, nil
	}

	now := time.Now().UTC()
	fresh := models.Conversation{
		ParticipantAID: lo,
		ParticipantBID: hi,
		LastMessageAt:  now,
		CreatedAt:      now,
	}
	// A concurrent creator may win the race; the re-read below returns its row.
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fresh).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	conv, err = find()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if conv == nil {
		return nil, models.NewInternalError(errors.New("conversation missing after insert"))
	}
	return conv, nil
}

// GetUserConversations lists the user's conversations, most recent activity first.
func (r *chatRepository) GetUserConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	defer observability.TrackQuery("select", "conversations")()

	conversations := []*models.Conversation{}
	err := withParticipants(readDB(r.db).WithContext(ctx)).
		Where("participant_a_id = ? OR participant_b_id = ?", userID, userID).
		Order("CASE WHEN last_message_at IS NULL THEN 1 ELSE 0 END").
		Order("last_message_at DESC").
		Order("id DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return conversations, nil
}

// CreateMessage stores the message and moves the conversation's preview and
// last_message_at to it in one transaction. The conversation must exist.
func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	defer observability.TrackQuery("insert", "messages")()

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.Select("id").First(&conv, msg.ConversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Conversation", msg.ConversationID)
			}
			return err
		}
		if err := tx.Omit("Sender").Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", msg.ConversationID).
			Updates(map[string]interface{}{
				"last_message_preview": models.MessagePreview(msg.Content),
				"last_message_at":      msg.CreatedAt,
			}).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetMessages returns the conversation's messages oldest first. An unknown
// conversation yields an empty list.
func (r *chatRepository) GetMessages(ctx context.Context, convID uint) ([]*models.Message, error) {
	defer observability.TrackQuery("select", "messages")()

	messages := []*models.Message{}
	err := readDB(r.db).WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}
