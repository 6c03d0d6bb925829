package server

import (
	"socialvim/internal/service"

	"github.com/gofiber/fiber/v2"
)

type sendMessageRequest struct {
	Content      string `json:"content"`
	SenderHandle string `json:"sender_handle" validate:"required"`
}

type openDMRequest struct {
	UserAHandle string `json:"user_a_handle" validate:"required"`
	UserBHandle string `json:"user_b_handle" validate:"required"`
}

// GetConversations handles GET /conversations
// @Summary List conversations
// @Tags chat
// @Produce json
// @Param handle query string false "Acting handle" default(yourname)
// @Success 200 {array} models.ConversationView
// @Router /conversations [get]
func (s *Server) GetConversations(c *fiber.Ctx) error {
	conversations, err := s.chatService.ListConversations(c.UserContext(), handleParam(c, service.DefaultHandle))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conversations)
}

// GetMessages handles GET /conversations/:id/messages
// @Summary List messages
// @Tags chat
// @Produce json
// @Param id path int true "Conversation ID"
// @Success 200 {array} models.MessageView
// @Router /conversations/{id}/messages [get]
func (s *Server) GetMessages(c *fiber.Ctx) error {
	conversationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	messages, err := s.chatService.ListMessages(c.UserContext(), conversationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

// SendMessage handles POST /conversations/:id/messages
// @Summary Send a message
// @Tags chat
// @Accept json
// @Produce json
// @Param id path int true "Conversation ID"
// @Param body body sendMessageRequest true "Message"
// @Success 200 {object} models.MessageView
// @Failure 404 {object} models.ErrorResponse
// @Router /conversations/{id}/messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	conversationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req sendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.chatService.SendMessage(c.UserContext(), conversationID, req.SenderHandle, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msg)
}

// OpenDM handles POST /dm
// @Summary Get or create a direct conversation
// @Tags chat
// @Accept json
// @Produce json
// @Param body body openDMRequest true "Participants"
// @Success 200 {object} models.ConversationView
// @Failure 404 {object} models.ErrorResponse
// @Router /dm [post]
func (s *Server) OpenDM(c *fiber.Ctx) error {
	var req openDMRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	conv, err := s.chatService.OpenDM(c.UserContext(), req.UserAHandle, req.UserBHandle)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}
