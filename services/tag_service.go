// services/tag_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"app-registry-cms/models"
	"app-registry-cms/repositories"
)

type TagService interface {
	CreateTag(ctx context.Context, req models.CreateTagRequest) (*models.OfficialTag, error)
	GetTags(ctx context.Context) ([]models.OfficialTag, error)
	GetTag(ctx context.Context, id uint) (*models.OfficialTag, error)
}

type tagService struct {
	tagRepo repositories.TagRepository
}

func NewTagService(tagRepo repositories.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

func (s *tagService) CreateTag(ctx context.Context, req models.CreateTagRequest) (*models.OfficialTag, error) {
	text := strings.TrimSpace(req.TagText)

	// Check if tag already exists
	_, err := s.tagRepo.GetByText(ctx, text)
	if err == nil {
		return nil, fmt.Errorf("tag %q: %w", text, models.ErrDuplicate)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	tag := &models.OfficialTag{TagText: text}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

func (s *tagService) GetTags(ctx context.Context) ([]models.OfficialTag, error) {
	return s.tagRepo.GetAll(ctx)
}

func (s *tagService) GetTag(ctx context.Context, id uint) (*models.OfficialTag, error) {
	return s.tagRepo.GetByID(ctx, id)
}
