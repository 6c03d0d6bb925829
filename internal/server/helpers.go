package server

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"socialvim/internal/models"
	"socialvim/internal/service"
	"socialvim/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "conversationId" -> "conversation ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// parseLimit reads ?limit=. Unlike list pagination elsewhere, out-of-range
// values are rejected rather than clamped. Same sentinel contract as parseID.
func parseLimit(c *fiber.Ctx) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return service.DefaultFeedLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("limit must be an integer"))
		return 0, errResponseWritten
	}
	if err := service.ValidateFeedLimit(limit); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, err)
		return 0, errResponseWritten
	}
	return limit, nil
}

// handleParam returns ?handle= or fallback when the parameter is absent.
func handleParam(c *fiber.Ctx, fallback string) string {
	if h := c.Query("handle"); h != "" {
		return h
	}
	return fallback
}

// parseBody decodes the JSON body into dst and runs its validate tags.
// Same sentinel contract as parseID.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	if err := validation.Struct(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, err)
		return errResponseWritten
	}
	return nil
}

// statusFor maps an AppError code to its HTTP status.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status its code maps to. Errors that are
// not AppErrors are reported as internal errors.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		err = models.NewInternalError(err)
	}
	return models.RespondWithError(c, statusFor(err), err)
}

func success(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}
