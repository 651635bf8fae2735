package repository

import (
	"edu_assessment_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_seen", time.Now()).Error
}

// SyncFromClaims keeps the local identity projection aligned with what the
// external auth store asserts. The auth store is the source of truth; foreign
// keys never span the two.
func (r *UserRepository) SyncFromClaims(userID uint, email string, role model.UserRole) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, userID).Error
	if err == gorm.ErrRecordNotFound {
		user = model.User{
			BaseModel: model.BaseModel{ID: userID},
			Email:     email,
			Role:      role,
		}
		if err := r.DB.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Role != role || user.Email != email {
		user.Role = role
		user.Email = email
		if err := r.DB.Save(&user).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}
