package service

import (
	"context"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/storage"
	"ripple/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	objects     storage.ObjectStore
}

type SignupInput struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=80"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	Username string `json:"username" validate:"omitempty,min=3,max=20,username"`
	FullName string `json:"full_name" validate:"max=80"`
	Bio      string `json:"bio" validate:"max=160"`
}

// NewProfileService builds the profile service. objects may be nil; image
// uploads then report an internal error instead of panicking.
func NewProfileService(profileRepo repository.ProfileRepository, objects storage.ObjectStore) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, objects: objects}
}

func (s *ProfileService) Signup(ctx context.Context, in SignupInput) (*models.Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := validation.Struct(in); err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			return nil, models.NewFieldErrors(fields)
		}
		return nil, models.NewInternalError(err)
	}

	if existing, err := s.profileRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewFieldErrors(map[string]string{
			"username": "this username is already in use",
		})
	}

	if existing, err := s.profileRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewFieldErrors(map[string]string{
			"email": "this email is already registered",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	profile := &models.Profile{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Login verifies credentials and returns the profile. A wrong email and a
// wrong password produce the same error so the endpoint does not leak which
// accounts exist.
func (s *ProfileService) Login(ctx context.Context, in LoginInput) (*models.Profile, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.Struct(in); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}

	profile, err := s.profileRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return profile, nil
}

func (s *ProfileService) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// GetProfile returns the named profile with aggregates computed for the
// viewer. The email is stripped unless the viewer owns the profile.
func (s *ProfileService) GetProfile(ctx context.Context, username string, viewerID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUsernameWithStats(ctx, username, viewerID)
	if err != nil {
		return nil, err
	}
	if profile.ID != viewerID {
		profile.Sanitize()
	}
	return profile, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Bio = strings.TrimSpace(in.Bio)

	if err := validation.Struct(in); err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			return nil, models.NewFieldErrors(fields)
		}
		return nil, models.NewInternalError(err)
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldUsername := profile.Username
	if in.Username != "" && in.Username != profile.Username {
		existing, err := s.profileRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewFieldErrors(map[string]string{
				"username": "this username is already in use",
			})
		}
		profile.Username = in.Username
	}
	profile.FullName = in.FullName
	profile.Bio = in.Bio

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	if oldUsername != profile.Username {
		// The cache entry under the old name is now stale.
		cache.InvalidateProfile(ctx, oldUsername)
	}
	return profile, nil
}

// UpdateAvatar normalizes the uploaded image, stores it, and points the
// profile at the new URL.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID uint, data []byte) (*models.Profile, error) {
	return s.updateImage(ctx, userID, data, storage.MaxAvatarDim, func(ctx context.Context, normalized []byte, contentType string) (string, error) {
		return s.objects.PutAvatar(ctx, userID, normalized, contentType)
	}, func(p *models.Profile, url string) { p.AvatarURL = url })
}

// UpdateBanner normalizes the uploaded image, stores it, and points the
// profile at the new URL.
func (s *ProfileService) UpdateBanner(ctx context.Context, userID uint, data []byte) (*models.Profile, error) {
	return s.updateImage(ctx, userID, data, storage.MaxBannerDim, func(ctx context.Context, normalized []byte, contentType string) (string, error) {
		return s.objects.PutBanner(ctx, userID, normalized, contentType)
	}, func(p *models.Profile, url string) { p.BannerURL = url })
}

func (s *ProfileService) updateImage(
	ctx context.Context,
	userID uint,
	data []byte,
	maxDim int,
	put func(context.Context, []byte, string) (string, error),
	assign func(*models.Profile, string),
) (*models.Profile, error) {
	if s.objects == nil {
		return nil, models.NewInternalError(nil)
	}

	normalized, contentType, err := storage.NormalizeImage(data, maxDim)
	if err != nil {
		return nil, err
	}

	url, err := put(ctx, normalized, contentType)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	assign(profile, url)
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
