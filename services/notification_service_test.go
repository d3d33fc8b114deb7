package services

import (
	"context"
	"errors"
	"testing"

	"app-registry-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingDeliverer struct{ calls int }

func (d *failingDeliverer) Deliver(context.Context, *models.Notification, *models.User) error {
	d.calls++
	return errors.New("smtp unavailable")
}

func TestNotifyRoutesToContactsAndAgencyUsers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.notifications.Notify(ctx, Item{
		Type:      "mobile_app",
		ID:        3,
		Name:      "Parks",
		AgencyIDs: []uint{h.agency.ID},
		Contacts:  []models.User{h.contact, h.outsider, h.banned},
	}, string(models.StatusPublished))

	contactNotes, err := h.notifications.GetForUser(ctx, h.contact.ID, false)
	require.NoError(t, err)
	require.Len(t, contactNotes, 1)
	assert.Equal(t, models.NotificationContact, contactNotes[0].NotificationType)
	assert.Equal(t, `Mobile app "Parks" published`, contactNotes[0].Message)
	assert.Equal(t, "published", contactNotes[0].MessageType)
	assert.Equal(t, "mobile_app", contactNotes[0].ItemType)
	assert.Equal(t, uint(3), contactNotes[0].ItemID)

	memberNotes, err := h.notifications.GetForUser(ctx, h.member.ID, false)
	require.NoError(t, err)
	require.Len(t, memberNotes, 1)
	assert.Equal(t, models.NotificationAgency, memberNotes[0].NotificationType)

	outsiderNotes, err := h.notifications.GetForUser(ctx, h.outsider.ID, false)
	require.NoError(t, err)
	assert.Len(t, outsiderNotes, 1)

	for _, id := range []uint{h.banned.ID, h.admin.ID} {
		notes, err := h.notifications.GetForUser(ctx, id, false)
		require.NoError(t, err)
		assert.Empty(t, notes)
	}

	deliveries := h.deliverer.all()
	assert.Contains(t, deliveries, delivery{userID: h.contact.ID, kind: models.NotificationContact})
	assert.Contains(t, deliveries, delivery{userID: h.member.ID, kind: models.NotificationAgency})
}

func TestNotifySkipsEmailWhenUserOptedOut(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	quiet := models.User{Email: "quiet@nps.gov", AgencyID: &h.agency.ID}
	require.NoError(t, h.repos.Users.Create(ctx, &quiet))

	h.notifications.Notify(ctx, Item{Type: "gallery", ID: 1, Name: "Outdoors", AgencyIDs: []uint{h.agency.ID}}, string(models.StatusArchived))

	notes, err := h.notifications.GetForUser(ctx, quiet.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.NotContains(t, h.deliverer.all(), delivery{userID: quiet.ID, kind: models.NotificationAgency})
}

func TestNotifyDeliveryFailureKeepsNotification(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	deliverer := &failingDeliverer{}
	notifier := NewNotificationService(h.repos.Notifications, h.repos.Users, deliverer, quietLogger())

	notifier.Notify(ctx, Item{Type: "mobile_app", ID: 1, Name: "Parks"}, string(models.StatusPublishRequested))

	assert.Equal(t, 1, deliverer.calls)
	notes, err := notifier.GetForUser(ctx, h.admin.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	require.NoError(t, notifier.MarkRead(ctx, h.admin.ID, notes[0].ID))
	unread, err := notifier.GetForUser(ctx, h.admin.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
	assert.ErrorIs(t, notifier.MarkRead(ctx, h.contact.ID, notes[0].ID), models.ErrNotFound)
}

func TestActivityRecentClampsLimit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	opts := AsUser(&h.admin)

	for i := uint(1); i <= 25; i++ {
		require.NoError(t, h.activities.Track(ctx, nil, models.TrackableMobileApp, i, "mobile_app.update", opts))
	}
	require.NoError(t, h.activities.Track(ctx, nil, models.TrackableMobileApp, 99, "mobile_app.update", PublishOptions{}))

	recent, err := h.activities.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 20)
	assert.Equal(t, uint(25), recent[0].TrackableID)

	recent, err = h.activities.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}
