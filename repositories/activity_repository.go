package repositories

import (
	"context"

	"app-registry-cms/models"

	"gorm.io/gorm"
)

type ActivityRepository interface {
	WithTx(tx *gorm.DB) ActivityRepository
	Create(ctx context.Context, activity *models.Activity) error
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
	ForTrackable(ctx context.Context, trackableType string, trackableID uint) ([]models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) WithTx(tx *gorm.DB) ActivityRepository {
	return &activityRepository{db: tx}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	if limit <= 0 {
		limit = 50
	}
	err := r.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&activities).Error
	return activities, err
}

func (r *activityRepository) ForTrackable(ctx context.Context, trackableType string, trackableID uint) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Where("trackable_type = ? AND trackable_id = ?", trackableType, trackableID).
		Order("id").
		Find(&activities).Error
	return activities, err
}
