// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/database"
	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/utils"
)

type UserService struct {
	db             *gorm.DB
	storageService *StorageService
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

func NewUserService(db *gorm.DB, storageService *StorageService) *UserService {
	return &UserService{
		db:             db,
		storageService: storageService,
	}
}

func (s *UserService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(user *models.User, req *UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{"name": strings.TrimSpace(req.Name)}

	var phone *string
	if req.Phone != "" {
		normalized := utils.NormalizePhone(req.Phone)
		var count int64
		if err := s.db.Model(&models.User{}).
			Where("phone = ? AND id <> ?", normalized, user.ID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			return nil, ErrPhoneTaken
		}
		phone = &normalized
	}
	updates["phone"] = phone

	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user.Name = updates["name"].(string)
	user.Phone = phone
	return user, nil
}

// UploadAvatar replaces the user's picture.
func (s *UserService) UploadAvatar(ctx context.Context, user *models.User, file *multipart.FileHeader) (*models.User, error) {
	options := s.storageService.GetDefaultUploadOptions("avatar")
	upload, err := s.storageService.UploadFile(ctx, file, options)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).Update("image", upload.URL).Error; err != nil {
		removeStored(ctx, s.storageService, upload.Key)
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	user.Image = upload.URL
	return user, nil
}

func (s *UserService) ChangePassword(user *models.User, req *ChangePasswordRequest) error {
	if !user.HasPassword() || user.CheckPassword(req.CurrentPassword) != nil {
		return ErrWrongPassword
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("password_hash", user.PasswordHash).Error; err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}
