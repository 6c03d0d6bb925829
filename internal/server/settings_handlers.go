package server

import (
	"socialvim/internal/models"
	"socialvim/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSettings handles GET /settings
// @Summary Account settings
// @Tags settings
// @Produce json
// @Param handle query string false "Acting handle" default(yourname)
// @Success 200 {object} models.SettingsView
// @Router /settings [get]
func (s *Server) GetSettings(c *fiber.Ctx) error {
	view, err := s.settingsService.Get(c.UserContext(), handleParam(c, service.DefaultHandle))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// UpdateSettings handles PUT /settings. Omitted fields keep their values.
// @Summary Update account settings
// @Tags settings
// @Accept json
// @Produce json
// @Param handle query string false "Acting handle" default(yourname)
// @Param body body models.SettingsUpdate true "Fields to change"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} models.ErrorResponse
// @Router /settings [put]
func (s *Server) UpdateSettings(c *fiber.Ctx) error {
	var update models.SettingsUpdate
	if err := parseBody(c, &update); err != nil {
		return nil
	}

	if err := s.settingsService.Update(c.UserContext(), handleParam(c, service.DefaultHandle), update); err != nil {
		return respondError(c, err)
	}
	return success(c)
}
