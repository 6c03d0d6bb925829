package database

import "socialvim/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserSettings{},
		&models.Post{},
		&models.PostInteraction{},
		&models.Comment{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
	}
}
