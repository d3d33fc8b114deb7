package repositories

import (
	"context"
	"fmt"

	"app-registry-cms/models"

	"gorm.io/gorm"
)

// CounterCache recomputes the denormalized draft/published counters on
// agencies and official tags. Counters are always recounted from the join
// rows, never adjusted by a delta.
type CounterCache interface {
	WithTx(tx *gorm.DB) CounterCache
	RefreshAgencies(ctx context.Context, agencyIDs []uint) error
	RefreshTags(ctx context.Context, tagIDs []uint) error
	RefreshAll(ctx context.Context) error
}

type counterCache struct {
	db *gorm.DB
}

type counterSource struct {
	itemTable string
	joinTable string
	itemFK    string
	ownerFK   string
	draftCol  string
	pubCol    string
}

var agencyCounters = []counterSource{
	{"mobile_apps", "mobile_app_agencies", "mobile_app_id", "agency_id", "draft_mobile_app_count", "published_mobile_app_count"},
	{"galleries", "gallery_agencies", "gallery_id", "agency_id", "draft_gallery_count", "published_gallery_count"},
}

var tagCounters = []counterSource{
	{"mobile_apps", "mobile_app_official_tags", "mobile_app_id", "official_tag_id", "draft_mobile_app_count", "published_mobile_app_count"},
	{"galleries", "gallery_official_tags", "gallery_id", "official_tag_id", "draft_gallery_count", "published_gallery_count"},
}

func NewCounterCache(db *gorm.DB) CounterCache {
	return &counterCache{db: db}
}

func (c *counterCache) WithTx(tx *gorm.DB) CounterCache {
	return &counterCache{db: tx}
}

func (c *counterCache) RefreshAgencies(ctx context.Context, agencyIDs []uint) error {
	for _, id := range uniqueIDs(agencyIDs) {
		if err := c.refresh(ctx, &models.Agency{}, id, agencyCounters); err != nil {
			return fmt.Errorf("refresh agency %d counters: %w", id, err)
		}
	}
	return nil
}

func (c *counterCache) RefreshTags(ctx context.Context, tagIDs []uint) error {
	for _, id := range uniqueIDs(tagIDs) {
		if err := c.refresh(ctx, &models.OfficialTag{}, id, tagCounters); err != nil {
			return fmt.Errorf("refresh tag %d counters: %w", id, err)
		}
	}
	return nil
}

func (c *counterCache) RefreshAll(ctx context.Context) error {
	var agencyIDs, tagIDs []uint
	db := c.db.WithContext(ctx)
	if err := db.Model(&models.Agency{}).Pluck("id", &agencyIDs).Error; err != nil {
		return err
	}
	if err := db.Model(&models.OfficialTag{}).Pluck("id", &tagIDs).Error; err != nil {
		return err
	}
	if err := c.RefreshAgencies(ctx, agencyIDs); err != nil {
		return err
	}
	return c.RefreshTags(ctx, tagIDs)
}

func (c *counterCache) refresh(ctx context.Context, owner interface{}, ownerID uint, sources []counterSource) error {
	db := c.db.WithContext(ctx)
	updates := make(map[string]interface{}, len(sources)*2)

	for _, src := range sources {
		join := fmt.Sprintf("JOIN %s ON %s.%s = %s.id", src.joinTable, src.joinTable, src.itemFK, src.itemTable)
		owned := fmt.Sprintf("%s.%s = ?", src.joinTable, src.ownerFK)

		var drafts, published int64
		if err := db.Table(src.itemTable).Joins(join).
			Where(owned, ownerID).
			Where(src.itemTable + ".draft_id IS NULL").
			Count(&drafts).Error; err != nil {
			return err
		}
		if err := db.Table(src.itemTable).Joins(join).
			Where(owned, ownerID).
			Where(src.itemTable + ".draft_id IS NOT NULL").
			Count(&published).Error; err != nil {
			return err
		}

		updates[src.draftCol] = drafts
		updates[src.pubCol] = published
	}

	return db.Model(owner).Where("id = ?", ownerID).Updates(updates).Error
}
