package repositories

import (
	"context"

	"app-registry-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GalleryRepository interface {
	WithTx(tx *gorm.DB) GalleryRepository
	Create(ctx context.Context, gallery *models.Gallery) error
	GetByID(ctx context.Context, id uint) (*models.Gallery, error)
	GetPublished(ctx context.Context, draftID uint) (*models.Gallery, error)
	GetList(ctx context.Context, params models.ListParams) ([]models.Gallery, int64, error)
	GetAll(ctx context.Context, draftsOnly bool) ([]models.Gallery, error)
	Update(ctx context.Context, gallery *models.Gallery) error
	CompareAndSetStatus(ctx context.Context, id uint, lockVersion int, status models.ContentStatus) error
	Delete(ctx context.Context, id uint) error
	ReplaceItems(ctx context.Context, galleryID uint, items []models.GalleryItem) error
}

type galleryRepository struct {
	db *gorm.DB
}

func NewGalleryRepository(db *gorm.DB) GalleryRepository {
	return &galleryRepository{db: db}
}

func (r *galleryRepository) WithTx(tx *gorm.DB) GalleryRepository {
	return &galleryRepository{db: tx}
}

func (r *galleryRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Agencies", orderByID).
		Preload("Users", orderByID).
		Preload("OfficialTags", orderByID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") })
}

func (r *galleryRepository) Create(ctx context.Context, gallery *models.Gallery) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(gallery).Error
}

func (r *galleryRepository) GetByID(ctx context.Context, id uint) (*models.Gallery, error) {
	var gallery models.Gallery
	err := r.preloaded(ctx).First(&gallery, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	if gallery.IsDraft() {
		var published models.Gallery
		err := r.db.WithContext(ctx).Where("draft_id = ?", gallery.ID).Limit(1).Find(&published).Error
		if err != nil {
			return nil, err
		}
		if published.ID != 0 {
			gallery.Published = &published
		}
	}
	return &gallery, nil
}

func (r *galleryRepository) GetPublished(ctx context.Context, draftID uint) (*models.Gallery, error) {
	var gallery models.Gallery
	err := r.preloaded(ctx).Where("draft_id = ?", draftID).First(&gallery).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &gallery, nil
}

func (r *galleryRepository) GetList(ctx context.Context, params models.ListParams) ([]models.Gallery, int64, error) {
	var galleries []models.Gallery
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Gallery{}).Where("galleries.draft_id IS NULL")
	if params.AgencyID > 0 {
		query = query.Joins("JOIN gallery_agencies ON gallery_agencies.gallery_id = galleries.id").
			Where("gallery_agencies.agency_id = ?", params.AgencyID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 25
	}

	err := query.
		Preload("Agencies", orderByID).
		Preload("Users", orderByID).
		Preload("OfficialTags", orderByID).
		Preload("Items").
		Order("galleries.updated_at desc").
		Offset((params.Page - 1) * params.Limit).Limit(params.Limit).
		Find(&galleries).Error

	return galleries, total, err
}

func (r *galleryRepository) GetAll(ctx context.Context, draftsOnly bool) ([]models.Gallery, error) {
	var galleries []models.Gallery
	query := r.preloaded(ctx).Order("id")
	if draftsOnly {
		query = query.Where("draft_id IS NULL")
	}
	err := query.Find(&galleries).Error
	return galleries, err
}

func (r *galleryRepository) Update(ctx context.Context, gallery *models.Gallery) error {
	result := r.db.WithContext(ctx).Model(&models.Gallery{}).
		Where("id = ? AND lock_version = ?", gallery.ID, gallery.LockVersion).
		Updates(map[string]interface{}{
			"name":              gallery.Name,
			"short_description": gallery.ShortDescription,
			"long_description":  gallery.LongDescription,
			"status":            gallery.Status,
			"lock_version":      gallery.LockVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrConflict
	}
	gallery.LockVersion++
	return nil
}

func (r *galleryRepository) CompareAndSetStatus(ctx context.Context, id uint, lockVersion int, status models.ContentStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Gallery{}).
		Where("id = ? AND lock_version = ?", id, lockVersion).
		Updates(map[string]interface{}{
			"status":       status,
			"lock_version": gorm.Expr("lock_version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrConflict
	}
	return nil
}

func (r *galleryRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("gallery_id = ?", id).Delete(&models.GalleryItem{}).Error; err != nil {
		return err
	}
	if err := NewLinkRepository(db).DeleteGalleryLinks(ctx, id); err != nil {
		return err
	}
	return db.Delete(&models.Gallery{}, id).Error
}

func (r *galleryRepository) ReplaceItems(ctx context.Context, galleryID uint, items []models.GalleryItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("gallery_id = ?", galleryID).Delete(&models.GalleryItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].GalleryID = galleryID
	}
	return db.Create(&items).Error
}
