package models

import "time"

// Gallery groups mobile apps. It follows the same draft/published pairing as
// MobileApp.
type Gallery struct {
	ID               uint          `json:"id" gorm:"primarykey"`
	Name             string        `json:"name" validate:"required"`
	ShortDescription string        `json:"short_description" gorm:"type:text" validate:"required"`
	LongDescription  string        `json:"long_description" gorm:"type:text"`
	Status           ContentStatus `json:"status" gorm:"default:'under_review';index"`
	DraftID          *uint         `json:"draft_id" gorm:"uniqueIndex"`
	LockVersion      int           `json:"lock_version" gorm:"not null;default:0"`
	Published        *Gallery      `json:"published,omitempty" gorm:"-" validate:"-"`
	Agencies         []Agency      `json:"agencies" gorm:"many2many:gallery_agencies;" validate:"min=1"`
	Users            []User        `json:"users" gorm:"many2many:gallery_users;" validate:"min=1"`
	OfficialTags     []OfficialTag `json:"official_tags" gorm:"many2many:gallery_official_tags;"`
	Items            []GalleryItem `json:"items" gorm:"foreignKey:GalleryID"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// GalleryItem places a mobile app inside a gallery.
type GalleryItem struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	GalleryID   uint      `json:"gallery_id" gorm:"not null;index"`
	MobileAppID uint      `json:"mobile_app_id" gorm:"not null;index"`
	Position    int       `json:"position" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
}

func (g *Gallery) IsDraft() bool {
	return g.DraftID == nil
}

func (g *Gallery) AgencyIDs() []uint {
	ids := make([]uint, 0, len(g.Agencies))
	for _, a := range g.Agencies {
		ids = append(ids, a.ID)
	}
	return ids
}

func (g *Gallery) UserIDs() []uint {
	ids := make([]uint, 0, len(g.Users))
	for _, u := range g.Users {
		ids = append(ids, u.ID)
	}
	return ids
}

func (g *Gallery) TagIDs() []uint {
	ids := make([]uint, 0, len(g.OfficialTags))
	for _, t := range g.OfficialTags {
		ids = append(ids, t.ID)
	}
	return ids
}

func (g *Gallery) Snapshot() *Gallery {
	draftID := g.ID
	snapshot := &Gallery{
		Name:             g.Name,
		ShortDescription: g.ShortDescription,
		LongDescription:  g.LongDescription,
		Status:           g.Status,
		DraftID:          &draftID,
		Agencies:         g.Agencies,
		Users:            g.Users,
		OfficialTags:     g.OfficialTags,
	}
	for _, item := range g.Items {
		snapshot.Items = append(snapshot.Items, GalleryItem{
			MobileAppID: item.MobileAppID,
			Position:    item.Position,
		})
	}
	return snapshot
}
