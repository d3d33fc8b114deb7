package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"app-registry-cms/config"
	"app-registry-cms/helper"
	"app-registry-cms/metrics"
	"app-registry-cms/models"
	"app-registry-cms/repositories"
	"app-registry-cms/search"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

type delivery struct {
	userID uint
	kind   models.NotificationType
}

type recordingDeliverer struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (d *recordingDeliverer) Deliver(_ context.Context, n *models.Notification, user *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deliveries = append(d.deliveries, delivery{userID: user.ID, kind: n.NotificationType})
	return nil
}

func (d *recordingDeliverer) all() []delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]delivery(nil), d.deliveries...)
}

type transitionRecorder struct {
	metrics.Nop
	transitions []string
}

func (r *transitionRecorder) RecordTransition(kind, status string) {
	r.transitions = append(r.transitions, kind+":"+status)
}

type harness struct {
	db         *gorm.DB
	repos      *repositories.Repositories
	index      *search.MemoryIndex
	dispatcher *search.Dispatcher
	deliverer  *recordingDeliverer
	recorder   *transitionRecorder

	activities    ActivityService
	notifications NotificationService
	apps          MobileAppService
	galleries     GalleryService
	search        SearchService

	agency   models.Agency
	admin    models.User
	contact  models.User
	member   models.User
	outsider models.User
	banned   models.User
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newTestDB(t)
	log := quietLogger()
	repos := repositories.NewRepositories(db)

	index := search.NewMemoryIndex()
	dispatcher := search.NewDispatcher(index, 64, time.Second, log, metrics.Nop{})
	t.Cleanup(dispatcher.Close)
	syncer := search.NewIndexSynchronizer(dispatcher, "")

	h := &harness{
		db:         db,
		repos:      repos,
		index:      index,
		dispatcher: dispatcher,
		deliverer:  &recordingDeliverer{},
		recorder:   &transitionRecorder{},
	}
	validator, err := helper.NewStructValidator()
	require.NoError(t, err)
	h.activities = NewActivityService(repos.Activities)
	h.notifications = NewNotificationService(repos.Notifications, repos.Users, h.deliverer, log)
	h.apps = NewMobileAppService(repos, validator, syncer, h.activities, h.notifications, h.recorder, log)
	h.galleries = NewGalleryService(repos, validator, syncer, h.activities, h.notifications, h.recorder, log)
	h.search = NewSearchService(index, "", repos.MobileApps, repos.Galleries, log)
	require.NoError(t, h.search.EnsureIndices(context.Background()))

	ctx := context.Background()
	h.agency = models.Agency{Name: "National Park Service", Shortname: "NPS"}
	require.NoError(t, repos.Agencies.Create(ctx, &h.agency))
	other := models.Agency{Name: "Department of State"}
	require.NoError(t, repos.Agencies.Create(ctx, &other))

	h.admin = models.User{Email: "admin@gsa.gov", Role: models.RoleAdmin}
	h.contact = models.User{Email: "contact@nps.gov", Role: models.RoleUser, AgencyID: &h.agency.ID, ContactNotificationsEmails: true}
	h.member = models.User{Email: "member@nps.gov", Role: models.RoleUser, AgencyID: &h.agency.ID, AgencyNotificationsEmails: true}
	h.outsider = models.User{Email: "outsider@state.gov", Role: models.RoleUser, AgencyID: &other.ID}
	h.banned = models.User{Email: "banned@nps.gov", Role: models.RoleBanned, AgencyID: &h.agency.ID}
	for _, u := range []*models.User{&h.admin, &h.contact, &h.member, &h.outsider, &h.banned} {
		require.NoError(t, repos.Users.Create(ctx, u))
	}
	return h
}

func (h *harness) appRequest(name string) models.MobileAppRequest {
	return models.MobileAppRequest{
		Name:             name,
		ShortDescription: "Find a park",
		LongDescription:  "Find a park and plan your visit.",
		Language:         "English",
		AgencyIDs:        []uint{h.agency.ID},
		UserIDs:          []uint{h.contact.ID},
		Tags:             []string{"outdoors", "maps"},
		Versions: []models.MobileAppVersionInput{
			{Platform: "iOS", StoreURL: "https://apps.apple.com/app/parks", VersionNumber: "1.0"},
			{Platform: "Android", StoreURL: "https://play.google.com/store/apps/parks", VersionNumber: "1.1"},
		},
	}
}

func (h *harness) createApp(t *testing.T, name string) *models.MobileApp {
	t.Helper()
	app, err := h.apps.Create(context.Background(), h.appRequest(name), AsUser(&h.contact))
	require.NoError(t, err)
	return app
}

func (h *harness) agencyCounts(t *testing.T) *models.Agency {
	t.Helper()
	agency, err := h.repos.Agencies.GetByID(context.Background(), h.agency.ID)
	require.NoError(t, err)
	return agency
}

func (h *harness) indexed(index string, id uint) (map[string]interface{}, bool) {
	h.dispatcher.Flush()
	return h.index.Get(index, fmt.Sprint(id))
}

func (h *harness) activityKeys(t *testing.T, trackableType string, id uint) []string {
	t.Helper()
	activities, err := h.activities.ForTrackable(context.Background(), trackableType, id)
	require.NoError(t, err)
	keys := make([]string, 0, len(activities))
	for _, a := range activities {
		keys = append(keys, a.Key)
	}
	return keys
}
