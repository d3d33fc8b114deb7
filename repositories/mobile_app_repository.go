package repositories

import (
	"context"

	"app-registry-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MobileAppRepository interface {
	WithTx(tx *gorm.DB) MobileAppRepository
	Create(ctx context.Context, app *models.MobileApp) error
	GetByID(ctx context.Context, id uint) (*models.MobileApp, error)
	GetPublished(ctx context.Context, draftID uint) (*models.MobileApp, error)
	GetList(ctx context.Context, params models.ListParams) ([]models.MobileApp, int64, error)
	GetAll(ctx context.Context, draftsOnly bool) ([]models.MobileApp, error)
	Update(ctx context.Context, app *models.MobileApp) error
	CompareAndSetStatus(ctx context.Context, id uint, lockVersion int, status models.ContentStatus) error
	Delete(ctx context.Context, id uint) error
	CreateVersions(ctx context.Context, appID uint, versions []models.MobileAppVersion) error
	UpdateVersion(ctx context.Context, version *models.MobileAppVersion) error
	DeleteVersions(ctx context.Context, appID uint, versionIDs []uint) error
	PlatformCounts(ctx context.Context) ([]models.PlatformCount, error)
}

type mobileAppRepository struct {
	db *gorm.DB
}

func NewMobileAppRepository(db *gorm.DB) MobileAppRepository {
	return &mobileAppRepository{db: db}
}

func (r *mobileAppRepository) WithTx(tx *gorm.DB) MobileAppRepository {
	return &mobileAppRepository{db: tx}
}

func (r *mobileAppRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Agencies", orderByID).
		Preload("Users", orderByID).
		Preload("OfficialTags", orderByID).
		Preload("Versions", orderByID)
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// Create inserts the row only; join rows and versions are written separately.
func (r *mobileAppRepository) Create(ctx context.Context, app *models.MobileApp) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error
}

func (r *mobileAppRepository) GetByID(ctx context.Context, id uint) (*models.MobileApp, error) {
	var app models.MobileApp
	err := r.preloaded(ctx).First(&app, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	if app.IsDraft() {
		var published models.MobileApp
		err := r.db.WithContext(ctx).Where("draft_id = ?", app.ID).Limit(1).Find(&published).Error
		if err != nil {
			return nil, err
		}
		if published.ID != 0 {
			app.Published = &published
		}
	}
	return &app, nil
}

func (r *mobileAppRepository) GetPublished(ctx context.Context, draftID uint) (*models.MobileApp, error) {
	var app models.MobileApp
	err := r.preloaded(ctx).Where("draft_id = ?", draftID).First(&app).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &app, nil
}

func (r *mobileAppRepository) GetList(ctx context.Context, params models.ListParams) ([]models.MobileApp, int64, error) {
	var apps []models.MobileApp
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MobileApp{}).Where("mobile_apps.draft_id IS NULL")
	if params.AgencyID > 0 {
		query = query.Joins("JOIN mobile_app_agencies ON mobile_app_agencies.mobile_app_id = mobile_apps.id").
			Where("mobile_app_agencies.agency_id = ?", params.AgencyID)
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
	offset := (params.Page - 1) * params.Limit

	err := query.
		Preload("Agencies", orderByID).
		Preload("Users", orderByID).
		Preload("OfficialTags", orderByID).
		Preload("Versions", orderByID).
		Order("mobile_apps.updated_at desc").
		Offset(offset).Limit(params.Limit).
		Find(&apps).Error

	return apps, total, err
}

func (r *mobileAppRepository) GetAll(ctx context.Context, draftsOnly bool) ([]models.MobileApp, error) {
	var apps []models.MobileApp
	query := r.preloaded(ctx).Order("id")
	if draftsOnly {
		query = query.Where("draft_id IS NULL")
	}
	err := query.Find(&apps).Error
	return apps, err
}

// Update saves the scalar columns if the row still carries app.LockVersion and
// bumps the lock version.
func (r *mobileAppRepository) Update(ctx context.Context, app *models.MobileApp) error {
	result := r.db.WithContext(ctx).Model(&models.MobileApp{}).
		Where("id = ? AND lock_version = ?", app.ID, app.LockVersion).
		Updates(map[string]interface{}{
			"name":              app.Name,
			"short_description": app.ShortDescription,
			"long_description":  app.LongDescription,
			"icon_url":          app.IconURL,
			"language":          app.Language,
			"status":            app.Status,
			"lock_version":      app.LockVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrConflict
	}
	app.LockVersion++
	return nil
}

// CompareAndSetStatus changes the status only if nobody changed the row since
// lockVersion was read.
func (r *mobileAppRepository) CompareAndSetStatus(ctx context.Context, id uint, lockVersion int, status models.ContentStatus) error {
	result := r.db.WithContext(ctx).Model(&models.MobileApp{}).
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

// Delete removes the row and everything it owns: versions, join rows and
// gallery placements.
func (r *mobileAppRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("mobile_app_id = ?", id).Delete(&models.MobileAppVersion{}).Error; err != nil {
		return err
	}
	if err := NewLinkRepository(db).DeleteMobileAppLinks(ctx, id); err != nil {
		return err
	}
	if err := db.Where("mobile_app_id = ?", id).Delete(&models.GalleryItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.MobileApp{}, id).Error
}

func (r *mobileAppRepository) CreateVersions(ctx context.Context, appID uint, versions []models.MobileAppVersion) error {
	if len(versions) == 0 {
		return nil
	}
	for i := range versions {
		versions[i].MobileAppID = appID
	}
	return r.db.WithContext(ctx).Create(&versions).Error
}

func (r *mobileAppRepository) UpdateVersion(ctx context.Context, version *models.MobileAppVersion) error {
	return r.db.WithContext(ctx).Save(version).Error
}

func (r *mobileAppRepository) DeleteVersions(ctx context.Context, appID uint, versionIDs []uint) error {
	if len(versionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("mobile_app_id = ? AND id IN ?", appID, versionIDs).
		Delete(&models.MobileAppVersion{}).Error
}

// PlatformCounts counts distinct drafts per version platform.
func (r *mobileAppRepository) PlatformCounts(ctx context.Context) ([]models.PlatformCount, error) {
	var counts []models.PlatformCount
	err := r.db.WithContext(ctx).Table("mobile_apps").
		Select("mobile_app_versions.platform AS platform, COUNT(DISTINCT mobile_apps.id) AS count").
		Joins("JOIN mobile_app_versions ON mobile_app_versions.mobile_app_id = mobile_apps.id").
		Where("mobile_apps.draft_id IS NULL").
		Group("mobile_app_versions.platform").
		Order("platform").
		Scan(&counts).Error
	return counts, err
}
