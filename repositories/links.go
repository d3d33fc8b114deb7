package repositories

import (
	"context"

	"app-registry-cms/models"

	"gorm.io/gorm"
)

// LinkRepository owns the join rows between content items and agencies,
// contact users and official tags.
type LinkRepository interface {
	WithTx(tx *gorm.DB) LinkRepository
	ReplaceMobileAppLinks(ctx context.Context, appID uint, agencyIDs, userIDs, tagIDs []uint) error
	DeleteMobileAppLinks(ctx context.Context, appID uint) error
	ReplaceGalleryLinks(ctx context.Context, galleryID uint, agencyIDs, userIDs, tagIDs []uint) error
	DeleteGalleryLinks(ctx context.Context, galleryID uint) error
}

type linkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) WithTx(tx *gorm.DB) LinkRepository {
	return &linkRepository{db: tx}
}

func (r *linkRepository) ReplaceMobileAppLinks(ctx context.Context, appID uint, agencyIDs, userIDs, tagIDs []uint) error {
	db := r.db.WithContext(ctx)

	agencies := make([]models.MobileAppAgency, 0, len(agencyIDs))
	for _, id := range uniqueIDs(agencyIDs) {
		agencies = append(agencies, models.MobileAppAgency{MobileAppID: appID, AgencyID: id})
	}
	if err := replaceLinks(db, "mobile_app_id", appID, agencies); err != nil {
		return err
	}

	users := make([]models.MobileAppUser, 0, len(userIDs))
	for _, id := range uniqueIDs(userIDs) {
		users = append(users, models.MobileAppUser{MobileAppID: appID, UserID: id})
	}
	if err := replaceLinks(db, "mobile_app_id", appID, users); err != nil {
		return err
	}

	tags := make([]models.MobileAppOfficialTag, 0, len(tagIDs))
	for _, id := range uniqueIDs(tagIDs) {
		tags = append(tags, models.MobileAppOfficialTag{MobileAppID: appID, OfficialTagID: id})
	}
	return replaceLinks(db, "mobile_app_id", appID, tags)
}

func (r *linkRepository) DeleteMobileAppLinks(ctx context.Context, appID uint) error {
	return r.ReplaceMobileAppLinks(ctx, appID, nil, nil, nil)
}

func (r *linkRepository) ReplaceGalleryLinks(ctx context.Context, galleryID uint, agencyIDs, userIDs, tagIDs []uint) error {
	db := r.db.WithContext(ctx)

	agencies := make([]models.GalleryAgency, 0, len(agencyIDs))
	for _, id := range uniqueIDs(agencyIDs) {
		agencies = append(agencies, models.GalleryAgency{GalleryID: galleryID, AgencyID: id})
	}
	if err := replaceLinks(db, "gallery_id", galleryID, agencies); err != nil {
		return err
	}

	users := make([]models.GalleryUser, 0, len(userIDs))
	for _, id := range uniqueIDs(userIDs) {
		users = append(users, models.GalleryUser{GalleryID: galleryID, UserID: id})
	}
	if err := replaceLinks(db, "gallery_id", galleryID, users); err != nil {
		return err
	}

	tags := make([]models.GalleryOfficialTag, 0, len(tagIDs))
	for _, id := range uniqueIDs(tagIDs) {
		tags = append(tags, models.GalleryOfficialTag{GalleryID: galleryID, OfficialTagID: id})
	}
	return replaceLinks(db, "gallery_id", galleryID, tags)
}

func (r *linkRepository) DeleteGalleryLinks(ctx context.Context, galleryID uint) error {
	return r.ReplaceGalleryLinks(ctx, galleryID, nil, nil, nil)
}

func replaceLinks[T any](db *gorm.DB, ownerColumn string, ownerID uint, rows []T) error {
	if err := db.Where(ownerColumn+" = ?", ownerID).Delete(new(T)).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}
