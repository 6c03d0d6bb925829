package models

import "time"

// UserView is the public profile shape returned by /me.
type UserView struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	PostsCount  int    `json:"posts_count"`
	ASCIIPic    string `json:"ascii_pic"`
}

// NewUserView builds a UserView from a stored user.
func NewUserView(u *User) UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		Handle:      u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		Followers:   u.Followers,
		Following:   u.Following,
		PostsCount:  u.PostsCount,
		ASCIIPic:    u.ASCIIPic,
	}
}

// PostView is a post annotated with the requesting user's interaction state.
// Short and long counter names are both emitted for client compatibility.
type PostView struct {
	ID             uint      `json:"id"`
	Author         string    `json:"author"`
	AuthorHandle   string    `json:"author_handle"`
	AuthorID       uint      `json:"author_id"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	CreatedAt      time.Time `json:"created_at"`
	Likes          int       `json:"likes"`
	LikesCount     int       `json:"likes_count"`
	Reposts        int       `json:"reposts"`
	RepostsCount   int       `json:"reposts_count"`
	Comments       int       `json:"comments"`
	CommentsCount  int       `json:"comments_count"`
	LikedByUser    bool      `json:"liked_by_user"`
	RepostedByUser bool      `json:"reposted_by_user"`
}

// InteractionFlags records which interactions a user has active on a post.
type InteractionFlags struct {
	Liked    bool
	Reposted bool
}

// NewPostView builds a PostView from a stored post.
func NewPostView(p *Post, flags InteractionFlags) PostView {
	return PostView{
		ID:             p.ID,
		Author:         p.AuthorHandle,
		AuthorHandle:   p.AuthorHandle,
		AuthorID:       p.AuthorID,
		Content:        p.Content,
		Timestamp:      p.CreatedAt,
		CreatedAt:      p.CreatedAt,
		Likes:          p.LikesCount,
		LikesCount:     p.LikesCount,
		Reposts:        p.RepostsCount,
		RepostsCount:   p.RepostsCount,
		Comments:       p.CommentsCount,
		CommentsCount:  p.CommentsCount,
		LikedByUser:    flags.Liked,
		RepostedByUser: flags.Reposted,
	}
}

// CommentView is the minimal comment shape.
type CommentView struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// ConversationView summarizes a conversation for the inbox list.
type ConversationView struct {
	ID                 uint      `json:"id"`
	ParticipantHandles []string  `json:"participant_handles"`
	LastMessagePreview string    `json:"last_message_preview"`
	LastMessageAt      time.Time `json:"last_message_at"`
	Unread             bool      `json:"unread"`
}

// NewConversationView expects both participants to be loaded.
func NewConversationView(c *Conversation) ConversationView {
	return ConversationView{
		ID:                 c.ID,
		ParticipantHandles: []string{c.ParticipantA.Username, c.ParticipantB.Username},
		LastMessagePreview: c.LastMessagePreview,
		LastMessageAt:      c.LastMessageAt,
	}
}

// MessageView is a single message in a conversation.
type MessageView struct {
	ID           uint      `json:"id"`
	SenderID     uint      `json:"sender_id"`
	SenderHandle string    `json:"sender_handle"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	CreatedAt    time.Time `json:"created_at"`
	IsRead       bool      `json:"is_read"`
}

// NewMessageView builds a MessageView from a stored message.
func NewMessageView(m *Message) MessageView {
	return MessageView{
		ID:           m.ID,
		SenderID:     m.SenderID,
		SenderHandle: m.SenderHandle,
		Content:      m.Content,
		Timestamp:    m.CreatedAt,
		CreatedAt:    m.CreatedAt,
		IsRead:       m.IsRead,
	}
}

// NotificationView is a notification as listed to its recipient.
type NotificationView struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	Actor     string    `json:"actor"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
	PostID    *uint     `json:"post_id"`
}

// NewNotificationView builds a NotificationView from a stored notification.
func NewNotificationView(n *Notification) NotificationView {
	return NotificationView{
		ID:        n.ID,
		Type:      n.Type,
		Actor:     n.ActorHandle,
		Username:  n.ActorHandle,
		Content:   n.Content,
		Timestamp: n.CreatedAt,
		CreatedAt: n.CreatedAt,
		Read:      n.Read,
		PostID:    n.PostID,
	}
}

// SettingsView merges profile fields with the stored or default settings.
type SettingsView struct {
	Username           string `json:"username"`
	DisplayName        string `json:"display_name"`
	Bio                string `json:"bio"`
	EmailNotifications bool   `json:"email_notifications"`
	ShowOnlineStatus   bool   `json:"show_online_status"`
	PrivateAccount     bool   `json:"private_account"`
	GithubConnected    bool   `json:"github_connected"`
	GitlabConnected    bool   `json:"gitlab_connected"`
	GoogleConnected    bool   `json:"google_connected"`
	DiscordConnected   bool   `json:"discord_connected"`
	ASCIIPic           string `json:"ascii_pic"`
}

// NewSettingsView merges u with s. A nil s yields the defaults.
func NewSettingsView(u *User, s *UserSettings) SettingsView {
	settings := DefaultSettings(u.ID)
	if s != nil {
		settings = *s
	}
	return SettingsView{
		Username:           u.Username,
		DisplayName:        u.DisplayName,
		Bio:                u.Bio,
		EmailNotifications: settings.EmailNotifications,
		ShowOnlineStatus:   settings.ShowOnlineStatus,
		PrivateAccount:     settings.PrivateAccount,
		GithubConnected:    settings.GithubConnected,
		GitlabConnected:    settings.GitlabConnected,
		GoogleConnected:    settings.GoogleConnected,
		DiscordConnected:   settings.DiscordConnected,
		ASCIIPic:           u.ASCIIPic,
	}
}

// SettingsUpdate is a partial update. Nil fields are left untouched.
type SettingsUpdate struct {
	Username           *string `json:"username,omitempty" validate:"omitempty,min=1,max=50"`
	DisplayName        *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio                *string `json:"bio,omitempty"`
	ASCIIPic           *string `json:"ascii_pic,omitempty"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
	ShowOnlineStatus   *bool   `json:"show_online_status,omitempty"`
	PrivateAccount     *bool   `json:"private_account,omitempty"`
	GithubConnected    *bool   `json:"github_connected,omitempty"`
	GitlabConnected    *bool   `json:"gitlab_connected,omitempty"`
	GoogleConnected    *bool   `json:"google_connected,omitempty"`
	DiscordConnected   *bool   `json:"discord_connected,omitempty"`
}

// ProfileUpdates returns the column updates routed to the users table.
func (u SettingsUpdate) ProfileUpdates() map[string]interface{} {
	out := map[string]interface{}{}
	if u.Username != nil {
		out["username"] = *u.Username
	}
	if u.DisplayName != nil {
		out["display_name"] = *u.DisplayName
	}
	if u.Bio != nil {
		out["bio"] = *u.Bio
	}
	if u.ASCIIPic != nil {
		out["ascii_pic"] = *u.ASCIIPic
	}
	return out
}

// Apply copies the settings fields that are set onto s.
func (u SettingsUpdate) Apply(s *UserSettings) {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&s.EmailNotifications, u.EmailNotifications)
	setBool(&s.ShowOnlineStatus, u.ShowOnlineStatus)
	setBool(&s.PrivateAccount, u.PrivateAccount)
	setBool(&s.GithubConnected, u.GithubConnected)
	setBool(&s.GitlabConnected, u.GitlabConnected)
	setBool(&s.GoogleConnected, u.GoogleConnected)
	setBool(&s.DiscordConnected, u.DiscordConnected)
}
