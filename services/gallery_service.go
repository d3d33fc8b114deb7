package services

import (
	"context"
	"errors"
	"strings"

	"app-registry-cms/helper"
	"app-registry-cms/metrics"
	"app-registry-cms/models"
	"app-registry-cms/repositories"
	"app-registry-cms/search"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const galleryKind = "gallery"

type GalleryService interface {
	Create(ctx context.Context, req models.GalleryRequest, opts PublishOptions) (*models.Gallery, error)
	Update(ctx context.Context, id uint, req models.GalleryRequest, opts PublishOptions) (*models.Gallery, error)
	Delete(ctx context.Context, id uint, opts PublishOptions) error
	Get(ctx context.Context, id uint) (*models.Gallery, error)
	List(ctx context.Context, params models.ListParams) ([]models.Gallery, int64, error)
	Publish(ctx context.Context, id uint, opts PublishOptions) (*models.Gallery, error)
	Archive(ctx context.Context, id uint, opts PublishOptions) (*models.Gallery, error)
	RequestPublish(ctx context.Context, id uint, opts PublishOptions) (*models.Gallery, error)
	RequestArchive(ctx context.Context, id uint, opts PublishOptions) (*models.Gallery, error)
}

type galleryService struct {
	repos      *repositories.Repositories
	validator  *helper.Validator
	sync       search.Synchronizer
	activities ActivityService
	notifier   NotificationService
	metrics    metrics.Recorder
	log        logrus.FieldLogger
}

func NewGalleryService(
	repos *repositories.Repositories,
	validator *helper.Validator,
	sync search.Synchronizer,
	activities ActivityService,
	notifier NotificationService,
	rec metrics.Recorder,
	log logrus.FieldLogger,
) GalleryService {
	return &galleryService{
		repos:      repos,
		validator:  validator,
		sync:       sync,
		activities: activities,
		notifier:   notifier,
		metrics:    rec,
		log:        log.WithField("component", "galleries"),
	}
}

func galleryItems(appIDs []uint) []models.GalleryItem {
	items := make([]models.GalleryItem, 0, len(appIDs))
	seen := map[uint]bool{}
	for _, id := range appIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, models.GalleryItem{MobileAppID: id, Position: len(items)})
	}
	return items
}

func (s *galleryService) Create(ctx context.Context, req models.GalleryRequest, opts PublishOptions) (*models.Gallery, error) {
	if opts.Actor != nil && opts.Actor.IsBanned() {
		return nil, models.ErrBanned
	}

	agencies, err := s.repos.Agencies.GetByIDs(ctx, req.AgencyIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.repos.Users.GetByIDs(ctx, req.UserIDs)
	if err != nil {
		return nil, err
	}

	gallery := &models.Gallery{
		Name:             strings.TrimSpace(req.Name),
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Status:           models.StatusUnderReview,
		Agencies:         agencies,
		Users:            users,
		Items:            galleryItems(req.MobileAppIDs),
	}
	if err := s.validator.Struct(gallery); err != nil {
		return nil, err
	}

	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		tags, err := s.repos.Tags.WithTx(tx).FindOrCreateByText(ctx, req.Tags)
		if err != nil {
			return err
		}
		gallery.OfficialTags = tags

		galleries := s.repos.Galleries.WithTx(tx)
		if err := galleries.Create(ctx, gallery); err != nil {
			return err
		}
		if err := s.repos.Links.WithTx(tx).ReplaceGalleryLinks(ctx, gallery.ID, gallery.AgencyIDs(), gallery.UserIDs(), gallery.TagIDs()); err != nil {
			return err
		}
		if err := galleries.ReplaceItems(ctx, gallery.ID, gallery.Items); err != nil {
			return err
		}
		if err := s.refreshCounters(ctx, tx, gallery.AgencyIDs(), gallery.TagIDs()); err != nil {
			return err
		}
		return s.activities.Track(ctx, tx, models.TrackableGallery, gallery.ID, "gallery.create", opts)
	})
	if err != nil {
		return nil, err
	}

	return s.reloadAndIndex(ctx, gallery.ID)
}

func (s *galleryService) Update(ctx context.Context, id uint, req models.GalleryRequest, opts PublishOptions) (*models.Gallery, error) {
	gallery, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeEdit(opts.Actor, gallery.UserIDs()); err != nil {
		return nil, err
	}
	if req.LockVersion != nil && *req.LockVersion != gallery.LockVersion {
		return nil, models.ErrConflict
	}

	oldAgencyIDs, oldTagIDs := gallery.AgencyIDs(), gallery.TagIDs()

	gallery.Name = strings.TrimSpace(req.Name)
	gallery.ShortDescription = req.ShortDescription
	gallery.LongDescription = req.LongDescription
	if req.AgencyIDs != nil {
		if gallery.Agencies, err = s.repos.Agencies.GetByIDs(ctx, req.AgencyIDs); err != nil {
			return nil, err
		}
	}
	if req.UserIDs != nil {
		if gallery.Users, err = s.repos.Users.GetByIDs(ctx, req.UserIDs); err != nil {
			return nil, err
		}
	}
	if req.MobileAppIDs != nil {
		gallery.Items = galleryItems(req.MobileAppIDs)
	}
	if err := s.validator.Struct(gallery); err != nil {
		return nil, err
	}

	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		if req.Tags != nil {
			tags, err := s.repos.Tags.WithTx(tx).FindOrCreateByText(ctx, req.Tags)
			if err != nil {
				return err
			}
			gallery.OfficialTags = tags
		}

		galleries := s.repos.Galleries.WithTx(tx)
		if err := galleries.Update(ctx, gallery); err != nil {
			return err
		}
		if err := s.repos.Links.WithTx(tx).ReplaceGalleryLinks(ctx, gallery.ID, gallery.AgencyIDs(), gallery.UserIDs(), gallery.TagIDs()); err != nil {
			return err
		}
		if req.MobileAppIDs != nil {
			if err := galleries.ReplaceItems(ctx, gallery.ID, gallery.Items); err != nil {
				return err
			}
		}
		if err := s.refreshCounters(ctx, tx, append(oldAgencyIDs, gallery.AgencyIDs()...), append(oldTagIDs, gallery.TagIDs()...)); err != nil {
			return err
		}
		return s.activities.Track(ctx, tx, models.TrackableGallery, gallery.ID, "gallery.update", opts)
	})
	if err != nil {
		return nil, err
	}

	return s.reloadAndIndex(ctx, gallery.ID)
}

func (s *galleryService) Delete(ctx context.Context, id uint, opts PublishOptions) error {
	gallery, err := s.loadDraft(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeEdit(opts.Actor, gallery.UserIDs()); err != nil {
		return err
	}

	var snapshotID uint
	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		galleries := s.repos.Galleries.WithTx(tx)
		agencyIDs, tagIDs := gallery.AgencyIDs(), gallery.TagIDs()

		snapshot, err := s.removeSnapshot(ctx, galleries, gallery.ID)
		if err != nil {
			return err
		}
		if snapshot != nil {
			snapshotID = snapshot.ID
			agencyIDs = append(agencyIDs, snapshot.AgencyIDs()...)
			tagIDs = append(tagIDs, snapshot.TagIDs()...)
		}

		if err := galleries.Delete(ctx, gallery.ID); err != nil {
			return err
		}
		if err := s.refreshCounters(ctx, tx, agencyIDs, tagIDs); err != nil {
			return err
		}
		return s.activities.Track(ctx, tx, models.TrackableGallery, gallery.ID, "gallery.destroy", opts)
	})
	if err != nil {
		return err
	}

	if snapshotID != 0 {
		s.sync.GalleryDeleted(snapshotID)
	}
	s.sync.GalleryDeleted(gallery.ID)
	return nil
}

func (s *galleryService) Get(ctx context.Context, id uint) (*models.Gallery, error) {
	return s.repos.Galleries.GetByID(ctx, id)
}

func (s *galleryService) List(ctx context.Context, params models.ListParams) ([]models.Gallery, int64, error) {
	return s.repos.Galleries.GetList(ctx, params)
}

func (s *galleryService) Publish(ctx context.Context, id uint, opts PublishOptions) (*models.Gallery, error) {
	if err := requireAdmin(opts.Actor); err != nil {
		return nil, err
	}
	draft, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(draft); err != nil {
		return nil, err
	}

	snapshot := draft.Snapshot()
	snapshot.Status = models.StatusPublished
	if err := s.validator.Struct(snapshot); err != nil {
		return nil, err
	}

	var previousID uint
	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		galleries := s.repos.Galleries.WithTx(tx)
		if err := galleries.CompareAndSetStatus(ctx, draft.ID, draft.LockVersion, models.StatusPublished); err != nil {
			return err
		}

		agencyIDs, tagIDs := draft.AgencyIDs(), draft.TagIDs()
		previous, err := s.removeSnapshot(ctx, galleries, draft.ID)
		if err != nil {
			return err
		}
		if previous != nil {
			previousID = previous.ID
			agencyIDs = append(agencyIDs, previous.AgencyIDs()...)
			tagIDs = append(tagIDs, previous.TagIDs()...)
		}

		if err := galleries.Create(ctx, snapshot); err != nil {
			return err
		}
		if err := s.repos.Links.WithTx(tx).ReplaceGalleryLinks(ctx, snapshot.ID, snapshot.AgencyIDs(), snapshot.UserIDs(), snapshot.TagIDs()); err != nil {
			return err
		}
		if err := galleries.ReplaceItems(ctx, snapshot.ID, snapshot.Items); err != nil {
			return err
		}
		if err := s.refreshCounters(ctx, tx, agencyIDs, tagIDs); err != nil {
			return err
		}
		return s.activities.Track(ctx, tx, models.TrackableGallery, draft.ID, "gallery.published", opts)
	})
	if err != nil {
		return nil, err
	}

	if previousID != 0 {
		s.sync.GalleryDeleted(previousID)
	}
	s.sync.GallerySaved(snapshot)
	s.metrics.RecordTransition(galleryKind, string(models.StatusPublished))

	gallery, err := s.reloadAndIndex(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"id": gallery.ID, "status": models.StatusPublished}).Info("Status changed")
	s.notify(ctx, gallery, string(models.StatusPublished))
	return gallery, nil
}

func (s *galleryService) Archive(ctx context.Context, id uint, opts PublishOptions) (*models.Gallery, error) {
	if err := requireAdmin(opts.Actor); err != nil {
		return nil, err
	}
	draft, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	var previousID uint
	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		galleries := s.repos.Galleries.WithTx(tx)
		if err := galleries.CompareAndSetStatus(ctx, draft.ID, draft.LockVersion, models.StatusArchived); err != nil {
			return err
		}

		previous, err := s.removeSnapshot(ctx, galleries, draft.ID)
		if err != nil {
			return err
		}
		if previous != nil {
			previousID = previous.ID
			if err := s.refreshCounters(ctx, tx, previous.AgencyIDs(), previous.TagIDs()); err != nil {
				return err
			}
		}
		return s.activities.Track(ctx, tx, models.TrackableGallery, draft.ID, "gallery.archived", opts)
	})
	if err != nil {
		return nil, err
	}

	if previousID != 0 {
		s.sync.GalleryDeleted(previousID)
	}
	s.metrics.RecordTransition(galleryKind, string(models.StatusArchived))

	gallery, err := s.reloadAndIndex(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"id": gallery.ID, "status": models.StatusArchived}).Info("Status changed")
	s.notify(ctx, gallery, string(models.StatusArchived))
	return gallery, nil
}

func (s *galleryService) RequestPublish(ctx context.Context, id uint, opts PublishOptions) (*models.Gallery, error) {
	return s.request(ctx, id, models.StatusPublishRequested, opts)
}

func (s *galleryService) RequestArchive(ctx context.Context, id uint, opts PublishOptions) (*models.Gallery, error) {
	return s.request(ctx, id, models.StatusArchiveRequested, opts)
}

func (s *galleryService) request(ctx context.Context, id uint, status models.ContentStatus, opts PublishOptions) (*models.Gallery, error) {
	draft, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeEdit(opts.Actor, draft.UserIDs()); err != nil {
		return nil, err
	}

	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Galleries.WithTx(tx).CompareAndSetStatus(ctx, draft.ID, draft.LockVersion, status); err != nil {
			return err
		}
		return s.activities.Track(ctx, tx, models.TrackableGallery, draft.ID, "gallery."+string(status), opts)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(galleryKind, string(status))

	gallery, err := s.reloadAndIndex(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, gallery, string(status))
	return gallery, nil
}

func (s *galleryService) loadDraft(ctx context.Context, id uint) (*models.Gallery, error) {
	gallery, err := s.repos.Galleries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !gallery.IsDraft() {
		return nil, models.ErrNotDraft
	}
	return gallery, nil
}

func (s *galleryService) removeSnapshot(ctx context.Context, galleries repositories.GalleryRepository, draftID uint) (*models.Gallery, error) {
	snapshot, err := galleries.GetPublished(ctx, draftID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := galleries.Delete(ctx, snapshot.ID); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *galleryService) refreshCounters(ctx context.Context, tx *gorm.DB, agencyIDs, tagIDs []uint) error {
	counters := s.repos.Counters.WithTx(tx)
	if err := counters.RefreshAgencies(ctx, agencyIDs); err != nil {
		return err
	}
	return counters.RefreshTags(ctx, tagIDs)
}

func (s *galleryService) reloadAndIndex(ctx context.Context, id uint) (*models.Gallery, error) {
	gallery, err := s.repos.Galleries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.sync.GallerySaved(gallery)
	return gallery, nil
}

func (s *galleryService) notify(ctx context.Context, gallery *models.Gallery, event string) {
	s.notifier.Notify(ctx, Item{
		Type:      galleryKind,
		ID:        gallery.ID,
		Name:      gallery.Name,
		AgencyIDs: gallery.AgencyIDs(),
		Contacts:  gallery.Users,
	}, event)
}
