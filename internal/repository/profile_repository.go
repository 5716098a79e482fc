package repository

import (
	"errors"

	"med-assist-go/internal/model"

	"gorm.io/gorm"
)

// ProfileRepository 接口定义了用户健康资料的持久化操作。
type ProfileRepository interface {
	FindByUserID(userID uint) (*model.Profile, error)
	Save(profile *model.Profile) error
}

// profileRepository 是 ProfileRepository 接口的 GORM 实现。
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建一个新的 ProfileRepository 实例。
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// FindByUserID 根据用户 ID 查找资料，不存在时返回 gorm.ErrRecordNotFound。
func (r *profileRepository) FindByUserID(userID uint) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Save 创建或更新用户资料，按 user_id 唯一约束去重。
func (r *profileRepository) Save(profile *model.Profile) error {
	var existing model.Profile
	err := r.db.Where("user_id = ?", profile.UserID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(profile).Error
	}
	if err != nil {
		return err
	}
	profile.ID = existing.ID
	return r.db.Save(profile).Error
}
