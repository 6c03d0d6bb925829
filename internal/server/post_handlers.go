package server

import (
	"socialvim/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Content string `json:"content"`
}

// GetTimeline handles GET /timeline
// @Summary Recency feed
// @Tags posts
// @Produce json
// @Param limit query int false "1-100, default 50"
// @Param handle query string false "Viewer handle" default(yourname)
// @Success 200 {array} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Router /timeline [get]
func (s *Server) GetTimeline(c *fiber.Ctx) error {
	limit, err := parseLimit(c)
	if err != nil {
		return nil
	}

	posts, err := s.postService.Timeline(c.UserContext(), handleParam(c, service.DefaultHandle), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetDiscover handles GET /discover
// @Summary Engagement feed
// @Tags posts
// @Produce json
// @Param limit query int false "1-100, default 50"
// @Param handle query string false "Viewer handle" default(yourname)
// @Success 200 {array} models.PostView
// @Router /discover [get]
func (s *Server) GetDiscover(c *fiber.Ctx) error {
	limit, err := parseLimit(c)
	if err != nil {
		return nil
	}

	posts, err := s.postService.Discover(c.UserContext(), handleParam(c, service.DefaultHandle), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param handle query string false "Author handle" default(yourname)
// @Param body body createPostRequest true "Post content"
// @Success 200 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), handleParam(c, service.DefaultHandle), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// LikePost handles POST /posts/:id/like. Calling it again undoes the like.
// @Summary Toggle like
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Param handle query string false "Acting handle" default(yourname)
// @Success 200 {object} map[string]bool
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.postService.ToggleLike(c.UserContext(), postID, handleParam(c, service.DefaultHandle)); err != nil {
		return respondError(c, err)
	}
	return success(c)
}

// RepostPost handles POST /posts/:id/repost. Calling it again undoes the repost.
func (s *Server) RepostPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.postService.ToggleRepost(c.UserContext(), postID, handleParam(c, service.DefaultHandle)); err != nil {
		return respondError(c, err)
	}
	return success(c)
}
