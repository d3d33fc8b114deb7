package services

import (
	"context"

	"app-registry-cms/models"
	"app-registry-cms/repositories"

	"gorm.io/gorm"
)

type ActivityService interface {
	Track(ctx context.Context, tx *gorm.DB, trackableType string, trackableID uint, key string, opts PublishOptions) error
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
	ForTrackable(ctx context.Context, trackableType string, trackableID uint) ([]models.Activity, error)
}

type activityService struct {
	activityRepo repositories.ActivityRepository
}

func NewActivityService(activityRepo repositories.ActivityRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

// Track writes one activity inside tx when the caller asked for it.
func (s *activityService) Track(ctx context.Context, tx *gorm.DB, trackableType string, trackableID uint, key string, opts PublishOptions) error {
	if !opts.EmitActivity {
		return nil
	}

	repo := s.activityRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.Create(ctx, &models.Activity{
		TrackableType: trackableType,
		TrackableID:   trackableID,
		OwnerID:       opts.ActorID(),
		Key:           key,
	})
}

func (s *activityService) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.activityRepo.Recent(ctx, limit)
}

func (s *activityService) ForTrackable(ctx context.Context, trackableType string, trackableID uint) ([]models.Activity, error) {
	return s.activityRepo.ForTrackable(ctx, trackableType, trackableID)
}
