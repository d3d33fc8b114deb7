package services

import (
	"context"
	"testing"
	"time"

	"app-registry-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingDeliverer struct {
	started chan struct{}
	release chan struct{}
	inner   recordingDeliverer
}

func (d *blockingDeliverer) Deliver(ctx context.Context, n *models.Notification, user *models.User) error {
	d.started <- struct{}{}
	<-d.release
	return d.inner.Deliver(ctx, n, user)
}

func TestQueuedDelivererDeliversCopiesInBackground(t *testing.T) {
	rec := &recordingDeliverer{}
	q := NewQueuedDeliverer(rec, 8, time.Second, quietLogger())
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	n := &models.Notification{ID: 1, NotificationType: models.NotificationContact}
	user := &models.User{ID: 7}
	require.NoError(t, q.Deliver(ctx, n, user))
	cancel()
	n.NotificationType = models.NotificationAdmin
	user.ID = 8

	q.Flush()
	assert.Equal(t, []delivery{{userID: 7, kind: models.NotificationContact}}, rec.all())
}

func TestQueuedDelivererRejectsWhenFull(t *testing.T) {
	d := &blockingDeliverer{started: make(chan struct{}), release: make(chan struct{})}
	q := NewQueuedDeliverer(d, 1, time.Second, quietLogger())
	defer q.Close()
	ctx := context.Background()

	require.NoError(t, q.Deliver(ctx, &models.Notification{ID: 1}, &models.User{ID: 1}))
	<-d.started
	require.NoError(t, q.Deliver(ctx, &models.Notification{ID: 2}, &models.User{ID: 2}))
	assert.ErrorIs(t, q.Deliver(ctx, &models.Notification{ID: 3}, &models.User{ID: 3}), ErrDeliveryQueueFull)

	close(d.release)
	<-d.started
	q.Flush()
	assert.Len(t, d.inner.all(), 2)
}

func TestQueuedDelivererDoesNotRetryFailures(t *testing.T) {
	d := &failingDeliverer{}
	q := NewQueuedDeliverer(d, 4, time.Second, quietLogger())

	require.NoError(t, q.Deliver(context.Background(), &models.Notification{ID: 1}, &models.User{ID: 1}))
	q.Close()

	assert.Equal(t, 1, d.calls)
	assert.ErrorIs(t, q.Deliver(context.Background(), &models.Notification{ID: 2}, &models.User{ID: 1}), ErrDeliveryQueueClosed)
}

func TestNotifyStoresBeforeQueuedDelivery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := NewQueuedDeliverer(h.deliverer, 8, time.Second, quietLogger())
	defer q.Close()
	notifications := NewNotificationService(h.repos.Notifications, h.repos.Users, q, quietLogger())

	notifications.Notify(ctx, Item{Type: "mobile_app", ID: 3, Name: "Parks", Contacts: []models.User{h.contact}}, string(models.StatusArchived))

	notes, err := notifications.GetForUser(ctx, h.contact.ID, false)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	q.Flush()
	assert.Equal(t, []delivery{{userID: h.contact.ID, kind: models.NotificationContact}}, h.deliverer.all())
}
