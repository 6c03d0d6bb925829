package server

import (
	"socialvim/internal/featureflags"
	"socialvim/internal/models"
	"socialvim/internal/seed"

	"github.com/gofiber/fiber/v2"
)

type seedRequest struct {
	Clean     bool `json:"clean"`
	FakeUsers int  `json:"fake_users" validate:"gte=0,lte=1000"`
	FakePosts int  `json:"fake_posts" validate:"gte=0,lte=10000"`
}

// SeedDatabase handles POST /admin/seed. The route answers 404 unless the
// seed_endpoint flag is on. An empty body seeds the fixtures only.
// @Summary Seed demo data
// @Tags admin
// @Accept json
// @Produce json
// @Param body body seedRequest false "Seeding options"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/seed [post]
func (s *Server) SeedDatabase(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled(featureflags.SeedEndpoint, c.Query("handle")) {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Route", c.Path()))
	}

	var req seedRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}

	res, err := seed.Seed(c.UserContext(), s.db, seed.Options{
		Clean:     req.Clean,
		FakeUsers: req.FakeUsers,
		FakePosts: req.FakePosts,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"seeded": !res.Skipped,
		"users":  res.Users,
		"posts":  res.Posts,
		"result": res,
	})
}

// GetFeatureFlags returns configured feature flags and their evaluated state
// for ?handle=.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(c.Query("handle")),
	})
}
