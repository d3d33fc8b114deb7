package services

import (
	"context"
	"testing"

	"app-registry-cms/models"
	"app-registry-cms/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) galleryRequest(name string, appIDs ...uint) models.GalleryRequest {
	return models.GalleryRequest{
		Name:             name,
		ShortDescription: "Apps for the outdoors",
		AgencyIDs:        []uint{h.agency.ID},
		UserIDs:          []uint{h.contact.ID},
		Tags:             []string{"outdoors"},
		MobileAppIDs:     appIDs,
	}
}

func itemAppIDs(gallery *models.Gallery) []uint {
	ids := make([]uint, 0, len(gallery.Items))
	for _, item := range gallery.Items {
		ids = append(ids, item.MobileAppID)
	}
	return ids
}

func TestGalleryItemsDeduplicateAndKeepOrder(t *testing.T) {
	items := galleryItems([]uint{7, 3, 7, 0, 5})

	require.Len(t, items, 3)
	assert.Equal(t, uint(7), items[0].MobileAppID)
	assert.Equal(t, uint(3), items[1].MobileAppID)
	assert.Equal(t, 1, items[1].Position)
	assert.Equal(t, 2, items[2].Position)
}

func TestGalleryLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.createApp(t, "Parks")
	second := h.createApp(t, "Trails")

	gallery, err := h.galleries.Create(ctx, h.galleryRequest("Outdoors", second.ID, first.ID), AsUser(&h.contact))
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID, first.ID}, itemAppIDs(gallery))
	assert.EqualValues(t, 1, h.agencyCounts(t).DraftGalleryCount)

	published, err := h.galleries.Publish(ctx, gallery.ID, AsUser(&h.admin))
	require.NoError(t, err)
	require.NotNil(t, published.Published)
	snapshotID := published.Published.ID

	snapshot, err := h.repos.Galleries.GetPublished(ctx, gallery.ID)
	require.NoError(t, err)
	assert.Equal(t, snapshotID, snapshot.ID)
	assert.Equal(t, []uint{second.ID, first.ID}, itemAppIDs(snapshot))
	assert.EqualValues(t, 1, h.agencyCounts(t).PublishedGalleryCount)

	doc, ok := h.indexed(search.GalleryIndex, snapshotID)
	require.True(t, ok)
	assert.EqualValues(t, gallery.ID, doc["draft_id"])

	req := h.galleryRequest("Outdoors", first.ID)
	req.Tags = nil
	updated, err := h.galleries.Update(ctx, gallery.ID, req, AsUser(&h.contact))
	require.NoError(t, err)
	assert.Equal(t, []uint{first.ID}, itemAppIDs(updated))
	assert.Len(t, updated.OfficialTags, 1)

	republished, err := h.galleries.Publish(ctx, gallery.ID, AsUser(&h.admin))
	require.NoError(t, err)
	assert.NotEqual(t, snapshotID, republished.Published.ID)
	_, ok = h.indexed(search.GalleryIndex, snapshotID)
	assert.False(t, ok)

	archived, err := h.galleries.Archive(ctx, gallery.ID, AsUser(&h.admin))
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, archived.Status)
	assert.Nil(t, archived.Published)
	assert.EqualValues(t, 0, h.agencyCounts(t).PublishedGalleryCount)
	assert.EqualValues(t, 1, h.agencyCounts(t).DraftGalleryCount)

	assert.Equal(t, []string{"gallery.create", "gallery.published", "gallery.update", "gallery.published", "gallery.archived"},
		h.activityKeys(t, models.TrackableGallery, gallery.ID))
	assert.Equal(t, []string{"gallery:published", "gallery:published", "gallery:archived"}, h.recorder.transitions)
}

func TestGalleryValidationAndAuthorization(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.galleries.Create(ctx, models.GalleryRequest{Name: "Empty"}, AsUser(&h.contact))
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("short_description"))
	assert.True(t, verr.Has("agencies"))
	assert.True(t, verr.Has("users"))

	gallery, err := h.galleries.Create(ctx, h.galleryRequest("Outdoors"), AsUser(&h.contact))
	require.NoError(t, err)

	_, err = h.galleries.Publish(ctx, gallery.ID, AsUser(&h.contact))
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = h.galleries.Update(ctx, gallery.ID, h.galleryRequest("Mine"), AsUser(&h.outsider))
	assert.ErrorIs(t, err, models.ErrForbidden)

	requested, err := h.galleries.RequestArchive(ctx, gallery.ID, AsUser(&h.contact))
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchiveRequested, requested.Status)

	adminNotes, err := h.notifications.GetForUser(ctx, h.admin.ID, false)
	require.NoError(t, err)
	require.Len(t, adminNotes, 1)
	assert.Equal(t, `Gallery "Outdoors" archive requested`, adminNotes[0].Message)
}

func TestGalleryDeleteRemovesSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	gallery, err := h.galleries.Create(ctx, h.galleryRequest("Outdoors"), AsUser(&h.contact))
	require.NoError(t, err)
	published, err := h.galleries.Publish(ctx, gallery.ID, AsUser(&h.admin))
	require.NoError(t, err)

	require.NoError(t, h.galleries.Delete(ctx, gallery.ID, AsUser(&h.contact)))

	_, err = h.galleries.Get(ctx, gallery.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = h.galleries.Get(ctx, published.Published.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	h.dispatcher.Flush()
	assert.Zero(t, h.index.Count(search.GalleryIndex))
	agency := h.agencyCounts(t)
	assert.EqualValues(t, 0, agency.DraftGalleryCount)
	assert.EqualValues(t, 0, agency.PublishedGalleryCount)
}

func TestDeletingAppRemovesItFromGalleries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.createApp(t, "Parks")
	gallery, err := h.galleries.Create(ctx, h.galleryRequest("Outdoors", app.ID), AsUser(&h.contact))
	require.NoError(t, err)

	require.NoError(t, h.apps.Delete(ctx, app.ID, AsUser(&h.contact)))

	got, err := h.galleries.Get(ctx, gallery.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}
