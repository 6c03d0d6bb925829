package models

import "time"

// Notification types.
const (
	NotificationMention = "mention"
	NotificationLike    = "like"
	NotificationRepost  = "repost"
	NotificationFollow  = "follow"
	NotificationComment = "comment"
)

// Notification is delivered to UserID on behalf of ActorID. The API only ever
// flips Read; rows are created by seeding.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Type        string    `gorm:"size:20;not null" json:"type"`
	ActorID     uint      `gorm:"not null" json:"actor_id"`
	ActorHandle string    `gorm:"size:50;not null" json:"actor_handle"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	PostID      *uint     `json:"post_id"`
	Read        bool      `gorm:"index" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Actor       User      `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE" json:"-"`
	Post        *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsValidNotificationType reports whether t is one of the known types.
func IsValidNotificationType(t string) bool {
	switch t {
	case NotificationMention, NotificationLike, NotificationRepost, NotificationFollow, NotificationComment:
		return true
	}
	return false
}
