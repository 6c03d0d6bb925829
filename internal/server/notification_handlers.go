package server

import (
	"socialvim/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /notifications?unread=
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Param handle query string false "Recipient handle" default(yourname)
// @Success 200 {array} models.NotificationView
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	notifications, err := s.notificationService.List(c.UserContext(),
		handleParam(c, service.DefaultHandle), c.QueryBool("unread", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notifications)
}

// MarkNotificationRead handles POST /notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.MarkRead(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return success(c)
}
