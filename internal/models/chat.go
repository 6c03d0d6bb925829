package models

import (
	"time"
	"unicode/utf8"
)

// PreviewLength is the number of characters kept in a conversation preview.
const PreviewLength = 50

// Conversation is a direct-message thread between exactly two users.
// ParticipantAID is always the smaller user id so that an unordered pair of
// users maps to a single row.
type Conversation struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ParticipantAID     uint      `gorm:"column:participant_a_id;not null;uniqueIndex:uix_participants,priority:1;check:check_participant_order,participant_a_id < participant_b_id" json:"participant_a_id"`
	ParticipantBID     uint      `gorm:"column:participant_b_id;not null;uniqueIndex:uix_participants,priority:2" json:"participant_b_id"`
	LastMessagePreview string    `gorm:"type:text;default:''" json:"last_message_preview"`
	LastMessageAt      time.Time `json:"last_message_at"`
	CreatedAt          time.Time `json:"created_at"`
	ParticipantA       User      `gorm:"foreignKey:ParticipantAID;constraint:OnDelete:CASCADE" json:"-"`
	ParticipantB       User      `gorm:"foreignKey:ParticipantBID;constraint:OnDelete:CASCADE" json:"-"`
	Messages           []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

// Message is a single direct message. IsRead is never flipped by the API.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint      `gorm:"not null" json:"sender_id"`
	SenderHandle   string    `gorm:"size:50;not null" json:"sender_handle"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	Sender         User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
}

// CanonicalPair orders two user ids so the smaller one comes first.
func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// MessagePreview truncates content to PreviewLength characters, appending an
// ellipsis when anything was cut.
func MessagePreview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:PreviewLength]) + "..."
}
