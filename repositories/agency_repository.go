package repositories

import (
	"context"

	"app-registry-cms/models"

	"gorm.io/gorm"
)

type AgencyRepository interface {
	Create(ctx context.Context, agency *models.Agency) error
	GetByID(ctx context.Context, id uint) (*models.Agency, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Agency, error)
	GetAll(ctx context.Context) ([]models.Agency, error)
}

type agencyRepository struct {
	db *gorm.DB
}

func NewAgencyRepository(db *gorm.DB) AgencyRepository {
	return &agencyRepository{db: db}
}

func (r *agencyRepository) Create(ctx context.Context, agency *models.Agency) error {
	return r.db.WithContext(ctx).Create(agency).Error
}

func (r *agencyRepository) GetByID(ctx context.Context, id uint) (*models.Agency, error) {
	var agency models.Agency
	err := r.db.WithContext(ctx).First(&agency, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &agency, nil
}

func (r *agencyRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Agency, error) {
	var agencies []models.Agency
	if len(ids) == 0 {
		return agencies, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", uniqueIDs(ids)).Order("id").Find(&agencies).Error
	return agencies, err
}

func (r *agencyRepository) GetAll(ctx context.Context) ([]models.Agency, error) {
	var agencies []models.Agency
	err := r.db.WithContext(ctx).Order("name").Find(&agencies).Error
	return agencies, err
}
