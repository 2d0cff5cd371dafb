package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teampulse/apperrors"
	"teampulse/models"
	"teampulse/utils"
)

type ProfileUpdateRequest struct {
	Position        *string `json:"position" validate:"omitempty,max=100"`
	Department      *string `json:"department" validate:"omitempty,max=100"`
	PhoneNumber     *string `json:"phone_number" validate:"omitempty,max=32"`
	Timezone        *string `json:"timezone" validate:"omitempty,max=64"`
	Skills          *string `json:"skills"`
	ProfileImageURL *string `json:"profile_image_url"`
	Bio             *string `json:"bio" validate:"omitempty,max=1000"`
}

// ProfileResponse is the shape consumed by the project service's identity
// client; user_id and email are the load-bearing fields.
type ProfileResponse struct {
	UserID          uint   `json:"user_id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Position        string `json:"position"`
	Department      string `json:"department"`
	PhoneNumber     string `json:"phone_number"`
	Timezone        string `json:"timezone"`
	Skills          string `json:"skills"`
	ProfileImageURL string `json:"profile_image_url"`
	Bio             string `json:"bio"`
}

type ProfileController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewProfileController(db *gorm.DB, logger *log.Logger) *ProfileController {
	return &ProfileController{DB: db, Logger: logger}
}

// getOrCreate loads the user's profile, creating the default row on first
// access. The insert is conflict-tolerant: two concurrent first accesses race
// on the user_id unique index and both end up reading the single surviving
// row.
func (pc *ProfileController) getOrCreate(userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := pc.DB.Where("user_id = ?", userID).First(&profile).Error; err == nil {
		return &profile, nil
	}

	fresh := models.UserProfile{UserID: userID, Timezone: "UTC"}
	if err := pc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	if err := pc.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetMyProfile returns the caller's profile, creating it lazily.
func (pc *ProfileController) GetMyProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	profile, err := pc.getOrCreate(user.ID)
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to load profile"))
	}

	return c.JSON(mapProfile(user, profile))
}

// UpdateMyProfile applies a partial update to the caller's profile.
func (pc *ProfileController) UpdateMyProfile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}

	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	profile, err := pc.getOrCreate(user.ID)
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to load profile"))
	}

	if req.Position != nil {
		profile.Position = *req.Position
	}
	if req.Department != nil {
		profile.Department = *req.Department
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = *req.PhoneNumber
	}
	if req.Timezone != nil {
		profile.Timezone = *req.Timezone
	}
	if req.Skills != nil {
		profile.Skills = *req.Skills
	}
	if req.ProfileImageURL != nil {
		profile.ProfileImageURL = *req.ProfileImageURL
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}

	if err := pc.DB.Save(profile).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to update profile"))
	}

	return c.JSON(mapProfile(user, profile))
}

func mapProfile(user *models.User, profile *models.UserProfile) ProfileResponse {
	return ProfileResponse{
		UserID:          user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Position:        profile.Position,
		Department:      profile.Department,
		PhoneNumber:     profile.PhoneNumber,
		Timezone:        profile.Timezone,
		Skills:          profile.Skills,
		ProfileImageURL: profile.ProfileImageURL,
		Bio:             profile.Bio,
	}
}
