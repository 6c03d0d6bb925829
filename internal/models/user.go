package models

import "time"

// User is a handle-identified account. Counters are maintained incrementally.
type User struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Username    string        `gorm:"size:50;uniqueIndex;not null" json:"username"`
	DisplayName string        `gorm:"size:100;not null" json:"display_name"`
	Bio         string        `gorm:"type:text;default:''" json:"bio"`
	ASCIIPic    string        `gorm:"column:ascii_pic;type:text;default:''" json:"ascii_pic"`
	Followers   int           `gorm:"default:0" json:"followers"`
	Following   int           `gorm:"default:0" json:"following"`
	PostsCount  int           `gorm:"default:0" json:"posts_count"`
	CreatedAt   time.Time     `json:"created_at"`
	Settings    *UserSettings `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Posts       []Post        `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserSettings holds per-user preferences. One row per user at most.
type UserSettings struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	EmailNotifications bool      `json:"email_notifications"`
	ShowOnlineStatus   bool      `json:"show_online_status"`
	PrivateAccount     bool      `json:"private_account"`
	GithubConnected    bool      `json:"github_connected"`
	GitlabConnected    bool      `json:"gitlab_connected"`
	GoogleConnected    bool      `json:"google_connected"`
	DiscordConnected   bool      `json:"discord_connected"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName keeps the plural snake_case name used by the SQL migrations.
func (UserSettings) TableName() string {
	return "user_settings"
}

// DefaultSettings returns the values a user has before ever saving settings.
func DefaultSettings(userID uint) UserSettings {
	return UserSettings{
		UserID:             userID,
		EmailNotifications: true,
		ShowOnlineStatus:   true,
	}
}
