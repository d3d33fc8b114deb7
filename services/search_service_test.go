package services

import (
	"context"
	"encoding/json"
	"testing"

	"app-registry-cms/models"
	"app-registry-cms/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchReturnsDraftsOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	draft := h.createApp(t, "Parks")
	h.createApp(t, "Passports")
	_, err := h.apps.Publish(ctx, draft.ID, AsUser(&h.admin))
	require.NoError(t, err)
	h.dispatcher.Flush()

	result, err := h.search.Search(ctx, search.MobileAppIndex, models.SearchParams{Text: "parks"})
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Total)

	var doc search.MobileAppDocument
	require.NoError(t, json.Unmarshal(result.Hits[0].Source, &doc))
	assert.Equal(t, draft.ID, doc.ID)
	assert.Nil(t, doc.DraftID)

	result, err = h.search.Search(ctx, search.MobileAppIndex, models.SearchParams{Status: "published"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Total)

	_, err = h.search.Search(ctx, "articles", models.SearchParams{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReindexRebuildsFromDatabase(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	draft := h.createApp(t, "Parks")
	_, err := h.apps.Publish(ctx, draft.ID, AsUser(&h.admin))
	require.NoError(t, err)
	_, err = h.galleries.Create(ctx, models.GalleryRequest{
		Name:             "Outdoors",
		ShortDescription: "Apps for the outdoors",
		AgencyIDs:        []uint{h.agency.ID},
		UserIDs:          []uint{h.contact.ID},
	}, AsUser(&h.contact))
	require.NoError(t, err)
	h.dispatcher.Flush()

	fresh := search.NewMemoryIndex()
	svc := NewSearchService(fresh, "rebuilt_", h.repos.MobileApps, h.repos.Galleries, quietLogger())

	count, err := svc.Reindex(ctx, search.MobileAppIndex)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, fresh.Count("rebuilt_"+search.MobileAppIndex))

	require.NoError(t, svc.ReindexAll(ctx))
	assert.Equal(t, 1, fresh.Count("rebuilt_"+search.GalleryIndex))

	_, err = svc.Reindex(ctx, "users")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
