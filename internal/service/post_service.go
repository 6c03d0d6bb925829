package service

import (
	"context"
	"fmt"

	"socialvim/internal/models"
	"socialvim/internal/observability"
	"socialvim/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultHandle is the viewer assumed by the feeds when none is given.
	DefaultHandle    = "yourname"
	DefaultFeedLimit = 50
	MaxFeedLimit     = 100
)

type PostService struct {
	users    *UserService
	postRepo repository.PostRepository
}

func NewPostService(users *UserService, postRepo repository.PostRepository) *PostService {
	return &PostService{users: users, postRepo: postRepo}
}

// ValidateFeedLimit enforces 1..MaxFeedLimit.
func ValidateFeedLimit(limit int) error {
	if limit < 1 || limit > MaxFeedLimit {
		return models.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxFeedLimit))
	}
	return nil
}

// Timeline lists the newest posts annotated for handle.
func (s *PostService) Timeline(ctx context.Context, handle string, limit int) (views []models.PostView, err error) {
	if err := ValidateFeedLimit(limit); err != nil {
		return nil, err
	}
	ctx, span := observability.StartSpan(ctx, "PostService.Timeline", attribute.Int("feed.limit", limit))
	defer func() { observability.EndSpan(span, err) }()

	posts, err := s.postRepo.Timeline(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, handle, posts)
}

// Discover lists the most engaged-with posts annotated for handle.
func (s *PostService) Discover(ctx context.Context, handle string, limit int) (views []models.PostView, err error) {
	if err := ValidateFeedLimit(limit); err != nil {
		return nil, err
	}
	ctx, span := observability.StartSpan(ctx, "PostService.Discover", attribute.Int("feed.limit", limit))
	defer func() { observability.EndSpan(span, err) }()

	posts, err := s.postRepo.Discover(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, handle, posts)
}

// annotate attaches the viewer's like/repost flags. Feeds never register the
// viewer; an unknown or malformed handle sees every flag false.
func (s *PostService) annotate(ctx context.Context, handle string, posts []*models.Post) ([]models.PostView, error) {
	if handle == "" {
		handle = DefaultHandle
	}

	var viewerID uint
	viewer, err := s.users.Peek(ctx, handle)
	switch {
	case err != nil && !models.IsValidation(err):
		return nil, err
	case viewer != nil:
		viewerID = viewer.ID
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	flags, err := s.postRepo.InteractionFlags(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, models.NewPostView(p, flags[p.ID]))
	}
	return views, nil
}

// CreatePost publishes content as handle, registering the author if needed.
func (s *PostService) CreatePost(ctx context.Context, handle, content string) (view models.PostView, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.CreatePost")
	defer func() { observability.EndSpan(span, err) }()

	author, err := s.users.ResolveOrRegister(ctx, handle)
	if err != nil {
		return models.PostView{}, err
	}

	post := &models.Post{
		AuthorID:     author.ID,
		AuthorHandle: author.Username,
		Content:      content,
	}
	if err = s.postRepo.Create(ctx, post); err != nil {
		return models.PostView{}, err
	}
	return models.NewPostView(post, models.InteractionFlags{}), nil
}

// ToggleLike flips handle's like on the post and reports the new state.
func (s *PostService) ToggleLike(ctx context.Context, postID uint, handle string) (bool, error) {
	return s.toggle(ctx, postID, handle, models.InteractionLike)
}

// ToggleRepost flips handle's repost on the post and reports the new state.
func (s *PostService) ToggleRepost(ctx context.Context, postID uint, handle string) (bool, error) {
	return s.toggle(ctx, postID, handle, models.InteractionRepost)
}

func (s *PostService) toggle(ctx context.Context, postID uint, handle, interactionType string) (active bool, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.Toggle",
		attribute.String("interaction.type", interactionType),
		attribute.Int64("post.id", int64(postID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	user, err := s.users.ResolveOrRegister(ctx, handle)
	if err != nil {
		return false, err
	}

	active, err = s.postRepo.ToggleInteraction(ctx, postID, user.ID, interactionType)
	if err != nil {
		return false, err
	}
	observability.RecordToggle(interactionType, active)
	return active, nil
}
