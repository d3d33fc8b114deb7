package services

import (
	"context"
	"fmt"
	"strconv"

	"app-registry-cms/models"
	"app-registry-cms/repositories"
	"app-registry-cms/search"

	"github.com/sirupsen/logrus"
)

type SearchService interface {
	EnsureIndices(ctx context.Context) error
	Search(ctx context.Context, kind string, params models.SearchParams) (*search.Result, error)
	Reindex(ctx context.Context, kind string) (int, error)
	ReindexAll(ctx context.Context) error
}

type searchService struct {
	index       search.Index
	prefix      string
	appRepo     repositories.MobileAppRepository
	galleryRepo repositories.GalleryRepository
	log         logrus.FieldLogger
}

func NewSearchService(index search.Index, prefix string, appRepo repositories.MobileAppRepository, galleryRepo repositories.GalleryRepository, log logrus.FieldLogger) SearchService {
	return &searchService{
		index:       index,
		prefix:      prefix,
		appRepo:     appRepo,
		galleryRepo: galleryRepo,
		log:         log.WithField("component", "search"),
	}
}

var searchKinds = []string{search.MobileAppIndex, search.GalleryIndex}

func checkKind(kind string) error {
	for _, k := range searchKinds {
		if k == kind {
			return nil
		}
	}
	return fmt.Errorf("search index %q: %w", kind, models.ErrNotFound)
}

func (s *searchService) EnsureIndices(ctx context.Context) error {
	for _, kind := range searchKinds {
		if err := s.index.EnsureIndex(ctx, s.prefix+kind, search.IndexSettings(kind)); err != nil {
			return fmt.Errorf("ensure index %s: %w", kind, err)
		}
	}
	return nil
}

// Search runs the admin filters against the drafts of one kind.
func (s *searchService) Search(ctx context.Context, kind string, params models.SearchParams) (*search.Result, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.index.Search(ctx, s.prefix+kind, search.BuildQuery(kind, params))
}

// Reindex pushes every row of a kind, drafts and snapshots, straight to the
// index and returns how many documents were written.
func (s *searchService) Reindex(ctx context.Context, kind string) (int, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	name := s.prefix + kind
	if err := s.index.EnsureIndex(ctx, name, search.IndexSettings(kind)); err != nil {
		return 0, err
	}

	docs := map[string]interface{}{}
	switch kind {
	case search.MobileAppIndex:
		apps, err := s.appRepo.GetAll(ctx, false)
		if err != nil {
			return 0, err
		}
		for i := range apps {
			docs[strconv.FormatUint(uint64(apps[i].ID), 10)] = search.NewMobileAppDocument(&apps[i])
		}
	case search.GalleryIndex:
		galleries, err := s.galleryRepo.GetAll(ctx, false)
		if err != nil {
			return 0, err
		}
		for i := range galleries {
			docs[strconv.FormatUint(uint64(galleries[i].ID), 10)] = search.NewGalleryDocument(&galleries[i])
		}
	}

	for id, doc := range docs {
		if err := s.index.Upsert(ctx, name, id, doc); err != nil {
			return 0, fmt.Errorf("reindex %s/%s: %w", kind, id, err)
		}
	}

	s.log.WithFields(logrus.Fields{"index": name, "documents": len(docs)}).Info("Reindexed")
	return len(docs), nil
}

func (s *searchService) ReindexAll(ctx context.Context) error {
	for _, kind := range searchKinds {
		if _, err := s.Reindex(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}
