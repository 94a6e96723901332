package server

import (
	"context"
	"io"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// maxUploadBytes caps raw upload size before decode; decoded images are
// resized and re-encoded regardless.
const maxUploadBytes = 10 << 20

// UploadAvatar handles POST /api/me/avatar
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	return s.uploadProfileImage(c, s.profileService.UpdateAvatar)
}

// UploadBanner handles POST /api/me/banner
func (s *Server) UploadBanner(c *fiber.Ctx) error {
	return s.uploadProfileImage(c, s.profileService.UpdateBanner)
}

func (s *Server) uploadProfileImage(
	c *fiber.Ctx,
	update func(ctx context.Context, userID uint, data []byte) (*models.Profile, error),
) error {
	ctx, cancel := context.WithTimeout(c.Context(), mutationTimeout)
	defer cancel()
	userID := c.Locals("userID").(uint)

	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}
	if file.Size > maxUploadBytes {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Uploaded file is too large"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	profile, err := update(ctx, userID, content)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profile)
}
