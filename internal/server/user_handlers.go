package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /me?handle=
// @Summary Current user profile
// @Description Returns the profile for handle, registering it on first use.
// @Tags users
// @Produce json
// @Param handle query string true "Acting handle"
// @Success 200 {object} models.UserView
// @Failure 400 {object} models.ErrorResponse
// @Router /me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	view, err := s.userService.Profile(c.UserContext(), c.Query("handle"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}
