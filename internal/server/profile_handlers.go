package server

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profiles/:username. Signed-in viewers get the
// viewer-relative following flag alongside follower/following counts.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	username := c.Params("username")

	profile, err := s.profileService.GetProfile(ctx, username, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profile)
}

// GetMyProfile handles GET /api/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	profile, err := s.profileService.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), mutationTimeout)
	defer cancel()
	userID := c.Locals("userID").(uint)

	var req service.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.profileService.UpdateProfile(ctx, userID, req)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profile)
}

// GetSuggestedProfiles handles GET /api/profiles/suggested, returning
// profiles the viewer does not yet follow.
func (s *Server) GetSuggestedProfiles(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	limit := c.QueryInt("limit", 5)
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	profiles, err := s.followService.Suggested(ctx, userID, limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profiles)
}

// GetFollowers handles GET /api/profiles/:username/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	ctx := c.Context()
	username := c.Params("username")
	page := parsePagination(c, 50)

	profiles, err := s.followService.Followers(ctx, username, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profiles)
}

// GetFollowing handles GET /api/profiles/:username/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	ctx := c.Context()
	username := c.Params("username")
	page := parsePagination(c, 50)

	profiles, err := s.followService.Following(ctx, username, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profiles)
}

// FollowProfile handles POST /api/profiles/:username/follow. Like the post
// like toggle, the body carries the following state the client observed
// BEFORE its optimistic flip.
func (s *Server) FollowProfile(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), mutationTimeout)
	defer cancel()
	userID := c.Locals("userID").(uint)
	username := c.Params("username")

	var req struct {
		Following bool `json:"following"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.followService.ToggleFollow(ctx, userID, username, req.Following)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profile)
}
