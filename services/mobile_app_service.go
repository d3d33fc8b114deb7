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

const mobileAppKind = "mobile_app"

type MobileAppService interface {
	Create(ctx context.Context, req models.MobileAppRequest, opts PublishOptions) (*models.MobileApp, error)
	Update(ctx context.Context, id uint, req models.MobileAppRequest, opts PublishOptions) (*models.MobileApp, error)
	Delete(ctx context.Context, id uint, opts PublishOptions) error
	Get(ctx context.Context, id uint) (*models.MobileApp, error)
	List(ctx context.Context, params models.ListParams) ([]models.MobileApp, int64, error)
	Publish(ctx context.Context, id uint, opts PublishOptions) (*models.MobileApp, error)
	Archive(ctx context.Context, id uint, opts PublishOptions) (*models.MobileApp, error)
	RequestPublish(ctx context.Context, id uint, opts PublishOptions) (*models.MobileApp, error)
	RequestArchive(ctx context.Context, id uint, opts PublishOptions) (*models.MobileApp, error)
	PlatformCounts(ctx context.Context) ([]models.PlatformCount, error)
}

type mobileAppService struct {
	repos      *repositories.Repositories
	validator  *helper.Validator
	sync       search.Synchronizer
	activities ActivityService
	notifier   NotificationService
	metrics    metrics.Recorder
	log        logrus.FieldLogger
}

func NewMobileAppService(
	repos *repositories.Repositories,
	validator *helper.Validator,
	sync search.Synchronizer,
	activities ActivityService,
	notifier NotificationService,
	rec metrics.Recorder,
	log logrus.FieldLogger,
) MobileAppService {
	return &mobileAppService{
		repos:      repos,
		validator:  validator,
		sync:       sync,
		activities: activities,
		notifier:   notifier,
		metrics:    rec,
		log:        log.WithField("component", "mobile_apps"),
	}
}

// versionPlan is the outcome of applying nested version entries to a draft.
type versionPlan struct {
	kept    []models.MobileAppVersion
	created []models.MobileAppVersion
	removed []uint
}

func (p versionPlan) all() []models.MobileAppVersion {
	out := make([]models.MobileAppVersion, 0, len(p.kept)+len(p.created))
	out = append(out, p.kept...)
	return append(out, p.created...)
}

func planVersions(existing []models.MobileAppVersion, inputs []models.MobileAppVersionInput) (versionPlan, error) {
	byID := make(map[uint]*models.MobileAppVersion, len(existing))
	order := make([]uint, 0, len(existing))
	for i := range existing {
		v := existing[i]
		byID[v.ID] = &v
		order = append(order, v.ID)
	}

	var plan versionPlan
	for _, in := range inputs {
		if in.Blank() {
			continue
		}
		if in.ID == nil {
			if in.Destroy {
				continue
			}
			var v models.MobileAppVersion
			in.Apply(&v)
			plan.created = append(plan.created, v)
			continue
		}

		v, ok := byID[*in.ID]
		if !ok {
			return plan, models.ErrNotFound
		}
		if in.Destroy {
			plan.removed = append(plan.removed, v.ID)
			delete(byID, v.ID)
			continue
		}
		in.Apply(v)
	}

	for _, id := range order {
		if v, ok := byID[id]; ok {
			plan.kept = append(plan.kept, *v)
		}
	}
	return plan, nil
}

// resolveLinks loads the agencies and contacts named by the request; unknown
// ids are dropped and left to validation.
func (s *mobileAppService) resolveLinks(ctx context.Context, agencyIDs, userIDs []uint) ([]models.Agency, []models.User, error) {
	agencies, err := s.repos.Agencies.GetByIDs(ctx, agencyIDs)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.repos.Users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, err
	}
	return agencies, users, nil
}

func (s *mobileAppService) Create(ctx context.Context, req models.MobileAppRequest, opts PublishOptions) (*models.MobileApp, error) {
	if opts.Actor != nil && opts.Actor.IsBanned() {
		return nil, models.ErrBanned
	}

	agencies, users, err := s.resolveLinks(ctx, req.AgencyIDs, req.UserIDs)
	if err != nil {
		return nil, err
	}
	plan, err := planVersions(nil, req.Versions)
	if err != nil {
		return nil, err
	}

	app := &models.MobileApp{
		Name:             strings.TrimSpace(req.Name),
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		IconURL:          req.IconURL,
		Language:         req.Language,
		Status:           models.StatusUnderReview,
		Agencies:         agencies,
		Users:            users,
		Versions:         plan.created,
	}
	if err := s.validator.Struct(app); err != nil {
		return nil, err
	}

	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		tags, err := s.repos.Tags.WithTx(tx).FindOrCreateByText(ctx, req.Tags)
		if err != nil {
			return err
		}
		app.OfficialTags = tags

		apps := s.repos.MobileApps.WithTx(tx)
		if err := apps.Create(ctx, app); err != nil {
			return err
		}
		if err := s.repos.Links.WithTx(tx).ReplaceMobileAppLinks(ctx, app.ID, app.AgencyIDs(), app.UserIDs(), app.TagIDs()); err != nil {
			return err
		}
		if err := apps.CreateVersions(ctx, app.ID, app.Versions); err != nil {
			return err
		}
		if err := s.refreshCounters(ctx, tx, app.AgencyIDs(), app.TagIDs()); err != nil {
			return err
		}
		return s.activities.Track(ctx, tx, models.TrackableMobileApp, app.ID, "mobile_app.create", opts)
	})
	if err != nil {
		return nil, err
	}

	return s.reloadAndIndex(ctx, app.ID)
}

func (s *mobileAppService) Update(ctx context.Context, id uint, req models.MobileAppRequest, opts PublishOptions) (*models.MobileApp, error) {
	app, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeEdit(opts.Actor, app.UserIDs()); err != nil {
		return nil, err
	}
	if req.LockVersion != nil && *req.LockVersion != app.LockVersion {
		return nil, models.ErrConflict
	}

	oldAgencyIDs, oldTagIDs := app.AgencyIDs(), app.TagIDs()

	app.Name = strings.TrimSpace(req.Name)
	app.ShortDescription = req.ShortDescription
	app.LongDescription = req.LongDescription
	app.IconURL = req.IconURL
	app.Language = req.Language

	if req.AgencyIDs != nil || req.UserIDs != nil {
		agencies, users, err := s.resolveLinks(ctx, req.AgencyIDs, req.UserIDs)
		if err != nil {
			return nil, err
		}
		if req.AgencyIDs != nil {
			app.Agencies = agencies
		}
		if req.UserIDs != nil {
			app.Users = users
		}
	}

	plan, err := planVersions(app.Versions, req.Versions)
	if err != nil {
		return nil, err
	}
	app.Versions = plan.all()
	if err := s.validator.Struct(app); err != nil {
		return nil, err
	}

	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		if req.Tags != nil {
			tags, err := s.repos.Tags.WithTx(tx).FindOrCreateByText(ctx, req.Tags)
			if err != nil {
				return err
			}
			app.OfficialTags = tags
		}

		apps := s.repos.MobileApps.WithTx(tx)
		if err := apps.Update(ctx, app); err != nil {
			return err
		}
		if err := s.repos.Links.WithTx(tx).ReplaceMobileAppLinks(ctx, app.ID, app.AgencyIDs(), app.UserIDs(), app.TagIDs()); err != nil {
			return err
		}
		if err := apps.DeleteVersions(ctx, app.ID, plan.removed); err != nil {
			return err
		}
		for i := range plan.kept {
			if err := apps.UpdateVersion(ctx, &plan.kept[i]); err != nil {
				return err
			}
		}
		if err := apps.CreateVersions(ctx, app.ID, plan.created); err != nil {
			return err
		}
		if err := s.refreshCounters(ctx, tx, append(oldAgencyIDs, app.AgencyIDs()...), append(oldTagIDs, app.TagIDs()...)); err != nil {
			return err
		}
		return s.activities.Track(ctx, tx, models.TrackableMobileApp, app.ID, "mobile_app.update", opts)
	})
	if err != nil {
		return nil, err
	}

	return s.reloadAndIndex(ctx, app.ID)
}

// Delete removes a draft together with its published snapshot.
func (s *mobileAppService) Delete(ctx context.Context, id uint, opts PublishOptions) error {
	app, err := s.loadDraft(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeEdit(opts.Actor, app.UserIDs()); err != nil {
		return err
	}

	var snapshotID uint
	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		apps := s.repos.MobileApps.WithTx(tx)
		agencyIDs, tagIDs := app.AgencyIDs(), app.TagIDs()

		snapshot, err := s.removeSnapshot(ctx, apps, app.ID)
		if err != nil {
			return err
		}
		if snapshot != nil {
			snapshotID = snapshot.ID
			agencyIDs = append(agencyIDs, snapshot.AgencyIDs()...)
			tagIDs = append(tagIDs, snapshot.TagIDs()...)
		}

		if err := apps.Delete(ctx, app.ID); err != nil {
			return err
		}
		if err := s.refreshCounters(ctx, tx, agencyIDs, tagIDs); err != nil {
			return err
		}
		return s.activities.Track(ctx, tx, models.TrackableMobileApp, app.ID, "mobile_app.destroy", opts)
	})
	if err != nil {
		return err
	}

	if snapshotID != 0 {
		s.sync.MobileAppDeleted(snapshotID)
	}
	s.sync.MobileAppDeleted(app.ID)
	return nil
}

func (s *mobileAppService) Get(ctx context.Context, id uint) (*models.MobileApp, error) {
	return s.repos.MobileApps.GetByID(ctx, id)
}

func (s *mobileAppService) List(ctx context.Context, params models.ListParams) ([]models.MobileApp, int64, error) {
	return s.repos.MobileApps.GetList(ctx, params)
}

func (s *mobileAppService) PlatformCounts(ctx context.Context) ([]models.PlatformCount, error) {
	return s.repos.MobileApps.PlatformCounts(ctx)
}

// Publish replaces the draft's published snapshot with a fresh copy of the
// draft. Everything from the status change to the counters commits together.
func (s *mobileAppService) Publish(ctx context.Context, id uint, opts PublishOptions) (*models.MobileApp, error) {
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
		apps := s.repos.MobileApps.WithTx(tx)
		if err := apps.CompareAndSetStatus(ctx, draft.ID, draft.LockVersion, models.StatusPublished); err != nil {
			return err
		}

		agencyIDs, tagIDs := draft.AgencyIDs(), draft.TagIDs()
		previous, err := s.removeSnapshot(ctx, apps, draft.ID)
		if err != nil {
			return err
		}
		if previous != nil {
			previousID = previous.ID
			agencyIDs = append(agencyIDs, previous.AgencyIDs()...)
			tagIDs = append(tagIDs, previous.TagIDs()...)
		}

		if err := apps.Create(ctx, snapshot); err != nil {
			return err
		}
		if err := s.repos.Links.WithTx(tx).ReplaceMobileAppLinks(ctx, snapshot.ID, snapshot.AgencyIDs(), snapshot.UserIDs(), snapshot.TagIDs()); err != nil {
			return err
		}
		if err := apps.CreateVersions(ctx, snapshot.ID, snapshot.Versions); err != nil {
			return err
		}
		if err := s.refreshCounters(ctx, tx, agencyIDs, tagIDs); err != nil {
			return err
		}
		return s.activities.Track(ctx, tx, models.TrackableMobileApp, draft.ID, "mobile_app.published", opts)
	})
	if err != nil {
		return nil, err
	}

	if previousID != 0 {
		s.sync.MobileAppDeleted(previousID)
	}
	s.sync.MobileAppSaved(snapshot)
	s.metrics.RecordTransition(mobileAppKind, string(models.StatusPublished))

	app, err := s.reloadAndIndex(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"id": app.ID, "status": models.StatusPublished}).Info("Status changed")
	s.notify(ctx, app, string(models.StatusPublished))
	return app, nil
}

// Archive takes the published snapshot down. The draft survives.
func (s *mobileAppService) Archive(ctx context.Context, id uint, opts PublishOptions) (*models.MobileApp, error) {
	if err := requireAdmin(opts.Actor); err != nil {
		return nil, err
	}
	draft, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	var previousID uint
	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		apps := s.repos.MobileApps.WithTx(tx)
		if err := apps.CompareAndSetStatus(ctx, draft.ID, draft.LockVersion, models.StatusArchived); err != nil {
			return err
		}

		previous, err := s.removeSnapshot(ctx, apps, draft.ID)
		if err != nil {
			return err
		}
		if previous != nil {
			previousID = previous.ID
			if err := s.refreshCounters(ctx, tx, previous.AgencyIDs(), previous.TagIDs()); err != nil {
				return err
			}
		}
		return s.activities.Track(ctx, tx, models.TrackableMobileApp, draft.ID, "mobile_app.archived", opts)
	})
	if err != nil {
		return nil, err
	}

	if previousID != 0 {
		s.sync.MobileAppDeleted(previousID)
	}
	s.metrics.RecordTransition(mobileAppKind, string(models.StatusArchived))

	app, err := s.reloadAndIndex(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"id": app.ID, "status": models.StatusArchived}).Info("Status changed")
	s.notify(ctx, app, string(models.StatusArchived))
	return app, nil
}

func (s *mobileAppService) RequestPublish(ctx context.Context, id uint, opts PublishOptions) (*models.MobileApp, error) {
	return s.request(ctx, id, models.StatusPublishRequested, opts)
}

func (s *mobileAppService) RequestArchive(ctx context.Context, id uint, opts PublishOptions) (*models.MobileApp, error) {
	return s.request(ctx, id, models.StatusArchiveRequested, opts)
}

func (s *mobileAppService) request(ctx context.Context, id uint, status models.ContentStatus, opts PublishOptions) (*models.MobileApp, error) {
	draft, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeEdit(opts.Actor, draft.UserIDs()); err != nil {
		return nil, err
	}

	err = s.repos.Transactor.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repos.MobileApps.WithTx(tx).CompareAndSetStatus(ctx, draft.ID, draft.LockVersion, status); err != nil {
			return err
		}
		return s.activities.Track(ctx, tx, models.TrackableMobileApp, draft.ID, "mobile_app."+string(status), opts)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(mobileAppKind, string(status))

	app, err := s.reloadAndIndex(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, app, string(status))
	return app, nil
}

func (s *mobileAppService) loadDraft(ctx context.Context, id uint) (*models.MobileApp, error) {
	app, err := s.repos.MobileApps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.IsDraft() {
		return nil, models.ErrNotDraft
	}
	return app, nil
}

// removeSnapshot deletes the published copy of draftID if there is one and
// returns it with its links loaded.
func (s *mobileAppService) removeSnapshot(ctx context.Context, apps repositories.MobileAppRepository, draftID uint) (*models.MobileApp, error) {
	snapshot, err := apps.GetPublished(ctx, draftID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := apps.Delete(ctx, snapshot.ID); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *mobileAppService) refreshCounters(ctx context.Context, tx *gorm.DB, agencyIDs, tagIDs []uint) error {
	counters := s.repos.Counters.WithTx(tx)
	if err := counters.RefreshAgencies(ctx, agencyIDs); err != nil {
		return err
	}
	return counters.RefreshTags(ctx, tagIDs)
}

func (s *mobileAppService) reloadAndIndex(ctx context.Context, id uint) (*models.MobileApp, error) {
	app, err := s.repos.MobileApps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.sync.MobileAppSaved(app)
	return app, nil
}

func (s *mobileAppService) notify(ctx context.Context, app *models.MobileApp, event string) {
	s.notifier.Notify(ctx, Item{
		Type:      mobileAppKind,
		ID:        app.ID,
		Name:      app.Name,
		AgencyIDs: app.AgencyIDs(),
		Contacts:  app.Users,
	}, event)
}
