// Package models contains data structures for the application's domain models.
package models

import "time"

// Interaction types stored in post_interactions.interaction_type.
const (
	InteractionLike   = "like"
	InteractionRepost = "repost"
)

// Post is a short text post. The counters are denormalized and mutated by the
// interaction and comment repositories, never recomputed from child rows.
type Post struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	AuthorID      uint              `gorm:"not null;index" json:"author_id"`
	AuthorHandle  string            `gorm:"size:50;not null" json:"author_handle"`
	Content       string            `gorm:"type:text;not null" json:"content"`
	LikesCount    int               `gorm:"default:0" json:"likes_count"`
	RepostsCount  int               `gorm:"default:0" json:"reposts_count"`
	CommentsCount int               `gorm:"default:0" json:"comments_count"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`
	Comments      []Comment         `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Interactions  []PostInteraction `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// PostInteraction marks an active like or repost. Presence means active.
type PostInteraction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostID          uint      `gorm:"not null;index;uniqueIndex:uix_post_user_interaction,priority:1" json:"post_id"`
	UserID          uint      `gorm:"not null;index;uniqueIndex:uix_post_user_interaction,priority:2" json:"user_id"`
	InteractionType string    `gorm:"size:20;not null;uniqueIndex:uix_post_user_interaction,priority:3" json:"interaction_type"`
	CreatedAt       time.Time `json:"created_at"`
	User            User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Comment is append-only.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
