package server

import (
	"socialvim/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Text string `json:"text"`
}

// GetComments handles GET /posts/:id/comments
// @Summary List comments
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.CommentView
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /posts/:id/comments
// @Summary Add a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param handle query string false "Author handle" default(yourname)
// @Param body body createCommentRequest true "Comment"
// @Success 200 {object} models.CommentView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req createCommentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.AddComment(c.UserContext(), postID, handleParam(c, service.DefaultHandle), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}
