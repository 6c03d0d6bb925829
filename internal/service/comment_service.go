package service

import (
	"context"

	"socialvim/internal/models"
	"socialvim/internal/repository"
)

type CommentService struct {
	users       *UserService
	commentRepo repository.CommentRepository
}

func NewCommentService(users *UserService, commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{users: users, commentRepo: commentRepo}
}

// AddComment stores text on the post as handle. The post must exist.
func (s *CommentService) AddComment(ctx context.Context, postID uint, handle, text string) (models.CommentView, error) {
	user, err := s.users.ResolveOrRegister(ctx, handle)
	if err != nil {
		return models.CommentView{}, err
	}

	comment := &models.Comment{
		PostID:   postID,
		UserID:   user.ID,
		Username: user.Username,
		Text:     text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.CommentView{}, err
	}
	return models.CommentView{User: comment.Username, Text: comment.Text}, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.CommentView, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.CommentView{User: c.Username, Text: c.Text})
	}
	return views, nil
}
