package repository

import (
	"context"
	"errors"
	"fmt"

	"socialvim/internal/models"
	"socialvim/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Timeline(ctx context.Context, limit int) ([]*models.Post, error)
	Discover(ctx context.Context, limit int) ([]*models.Post, error)
	InteractionFlags(ctx context.Context, userID uint, postIDs []uint) (map[uint]models.InteractionFlags, error)
	ToggleInteraction(ctx context.Context, postID, userID uint, interactionType string) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

var errInteractionRace = errors.New("interaction inserted concurrently")

// counterColumn maps an interaction type to the post counter it drives.
func counterColumn(interactionType string) (string, error) {
	switch interactionType {
	case models.InteractionLike:
		return "likes_count", nil
	case models.InteractionRepost:
		return "reposts_count", nil
	default:
		return "", models.NewValidationError(fmt.Sprintf("unknown interaction type %q", interactionType))
	}
}

func incrementExpr(column string) interface{} {
	return gorm.Expr(column + " + 1")
}

// decrementExpr never takes a counter below zero.
func decrementExpr(column string) interface{} {
	return gorm.Expr("CASE WHEN " + column + " > 0 THEN " + column + " - 1 ELSE 0 END")
}

// Create inserts the post and bumps the author's posts_count in one transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("insert", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Comments", "Interactions").Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", post.AuthorID).
			UpdateColumn("posts_count", incrementExpr("posts_count")).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Timeline lists the newest posts first.
func (r *postRepository) Timeline(ctx context.Context, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("timeline", "posts")()

	var posts []*models.Post
	err := readDB(r.db).WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Discover lists posts by total engagement, highest first.
func (r *postRepository) Discover(ctx context.Context, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("discover", "posts")()

	var posts []*models.Post
	err := readDB(r.db).WithContext(ctx).
		Order("(likes_count + reposts_count + comments_count) DESC").
		Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// InteractionFlags loads userID's likes and reposts for postIDs in one query.
// Posts without interactions are absent from the map.
func (r *postRepository) InteractionFlags(ctx context.Context, userID uint, postIDs []uint) (map[uint]models.InteractionFlags, error) {
	flags := make(map[uint]models.InteractionFlags, len(postIDs))
	if userID == 0 || len(postIDs) == 0 {
		return flags, nil
	}

	defer observability.TrackQuery("flags", "post_interactions")()

	var rows []models.PostInteraction
	err := readDB(r.db).WithContext(ctx).
		Select("post_id", "interaction_type").
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	for _, row := range rows {
		f := flags[row.PostID]
		switch row.InteractionType {
		case models.InteractionLike:
			f.Liked = true
		case models.InteractionRepost:
			f.Reposted = true
		}
		flags[row.PostID] = f
	}
	return flags, nil
}

// ToggleInteraction removes the user's interaction if present, otherwise adds
// it, keeping the post counter in step. It reports whether the interaction is
// active afterwards.
//
// No row lock is taken on the post: two concurrent toggles by the same user can
// both read "absent", in which case the unique index rejects the second insert
// and that caller observes the interaction as active.
func (r *postRepository) ToggleInteraction(ctx context.Context, postID, userID uint, interactionType string) (bool, error) {
	column, err := counterColumn(interactionType)
	if err != nil {
		return false, err
	}

	defer observability.TrackQuery("toggle", "post_interactions")()

	active := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return err
		}

		var existing []models.PostInteraction
		if err := tx.Where("post_id = ? AND user_id = ? AND interaction_type = ?", postID, userID, interactionType).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) > 0 {
			if err := tx.Delete(&models.PostInteraction{}, existing[0].ID).Error; err != nil {
				return err
			}
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn(column, decrementExpr(column)).Error
		}

		interaction := models.PostInteraction{PostID: postID, UserID: userID, InteractionType: interactionType}
		if err := tx.Omit("User").Create(&interaction).Error; err != nil {
			if isUniqueConstraintError(err) {
				return errInteractionRace
			}
			return err
		}
		active = true
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn(column, incrementExpr(column)).Error
	})

	switch {
	case err == nil:
		return active, nil
	case errors.Is(err, errInteractionRace):
		return true, nil
	default:
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return false, appErr
		}
		return false, models.NewInternalError(err)
	}
}
