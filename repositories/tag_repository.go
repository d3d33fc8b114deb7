package repositories

import (
	"context"
	"strings"

	"app-registry-cms/models"

	"gorm.io/gorm"
)

type TagRepository interface {
	WithTx(tx *gorm.DB) TagRepository
	Create(ctx context.Context, tag *models.OfficialTag) error
	GetByText(ctx context.Context, text string) (*models.OfficialTag, error)
	GetByID(ctx context.Context, id uint) (*models.OfficialTag, error)
	GetAll(ctx context.Context) ([]models.OfficialTag, error)
	FindOrCreateByText(ctx context.Context, texts []string) ([]models.OfficialTag, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.OfficialTag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) GetByText(ctx context.Context, text string) (*models.OfficialTag, error) {
	var tag models.OfficialTag
	err := r.db.WithContext(ctx).Where("tag_text = ?", text).First(&tag).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.OfficialTag, error) {
	var tag models.OfficialTag
	err := r.db.WithContext(ctx).First(&tag, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

func (r *tagRepository) GetAll(ctx context.Context) ([]models.OfficialTag, error) {
	var tags []models.OfficialTag
	err := r.db.WithContext(ctx).Order("tag_text").Find(&tags).Error
	return tags, err
}

// FindOrCreateByText resolves tag tokens, creating the ones that do not exist yet.
func (r *tagRepository) FindOrCreateByText(ctx context.Context, texts []string) ([]models.OfficialTag, error) {
	var tags []models.OfficialTag
	seen := map[string]bool{}

	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true

		var tag models.OfficialTag
		err := r.db.WithContext(ctx).
			Where(models.OfficialTag{TagText: text}).
			FirstOrCreate(&tag).Error
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, nil
}
