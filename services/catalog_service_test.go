package services

import (
	"context"
	"testing"

	"app-registry-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tags := NewTagService(h.repos.Tags)

	tag, err := tags.CreateTag(ctx, models.CreateTagRequest{TagText: " health "})
	require.NoError(t, err)
	assert.Equal(t, "health", tag.TagText)

	_, err = tags.CreateTag(ctx, models.CreateTagRequest{TagText: "health"})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	got, err := tags.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag.ID, got.ID)

	_, err = tags.GetTag(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAgencyService(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	agencies := NewAgencyService(h.repos.Agencies)

	child, err := agencies.CreateAgency(ctx, models.CreateAgencyRequest{Name: "Yosemite", ParentID: &h.agency.ID})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, h.agency.ID, *child.ParentID)

	missing := uint(999)
	_, err = agencies.CreateAgency(ctx, models.CreateAgencyRequest{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := agencies.GetAgencies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCounterServiceRepairsDrift(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createApp(t, "Parks")

	require.NoError(t, h.db.Model(&models.Agency{}).Where("id = ?", h.agency.ID).
		Update("draft_mobile_app_count", 42).Error)

	require.NoError(t, NewCounterService(h.repos.Counters).RefreshAll(ctx))
	assert.EqualValues(t, 1, h.agencyCounts(t).DraftMobileAppCount)
}
