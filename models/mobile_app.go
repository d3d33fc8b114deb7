package models

import (
	"strings"
	"time"
)

type ContentStatus string

const (
	StatusUnderReview      ContentStatus = "under_review"
	StatusPublished        ContentStatus = "published"
	StatusArchived         ContentStatus = "archived"
	StatusPublishRequested ContentStatus = "publish_requested"
	StatusArchiveRequested ContentStatus = "archive_requested"
)

var contentStatuses = []ContentStatus{
	StatusUnderReview,
	StatusPublished,
	StatusArchived,
	StatusPublishRequested,
	StatusArchiveRequested,
}

// Valid reports whether s is one of the known statuses.
func (s ContentStatus) Valid() bool {
	for _, known := range contentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Humanize returns the label stored in the search index, e.g. "Publish requested".
func (s ContentStatus) Humanize() string {
	return Humanize(string(s))
}

// Humanize turns a snake_case key into a sentence-cased label.
func Humanize(key string) string {
	label := strings.ReplaceAll(strings.TrimSpace(key), "_", " ")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// MobileApp is either a draft (DraftID nil) or the published snapshot of the
// draft whose id is DraftID.
type MobileApp struct {
	ID               uint               `json:"id" gorm:"primarykey"`
	Name             string             `json:"name" validate:"required"`
	ShortDescription string             `json:"short_description" gorm:"type:text" validate:"required"`
	LongDescription  string             `json:"long_description" gorm:"type:text" validate:"required"`
	IconURL          string             `json:"icon_url" gorm:"type:text"`
	Language         string             `json:"language"`
	Status           ContentStatus      `json:"status" gorm:"default:'under_review';index"`
	DraftID          *uint              `json:"draft_id" gorm:"uniqueIndex"`
	LockVersion      int                `json:"lock_version" gorm:"not null;default:0"`
	Published        *MobileApp         `json:"published,omitempty" gorm:"-" validate:"-"`
	Agencies         []Agency           `json:"agencies" gorm:"many2many:mobile_app_agencies;" validate:"min=1"`
	Users            []User             `json:"users" gorm:"many2many:mobile_app_users;" validate:"min=1"`
	OfficialTags     []OfficialTag      `json:"official_tags" gorm:"many2many:mobile_app_official_tags;"`
	Versions         []MobileAppVersion `json:"versions" gorm:"foreignKey:MobileAppID" validate:"min=1"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func (m *MobileApp) IsDraft() bool {
	return m.DraftID == nil
}

func (m *MobileApp) AgencyIDs() []uint {
	ids := make([]uint, 0, len(m.Agencies))
	for _, a := range m.Agencies {
		ids = append(ids, a.ID)
	}
	return ids
}

func (m *MobileApp) UserIDs() []uint {
	ids := make([]uint, 0, len(m.Users))
	for _, u := range m.Users {
		ids = append(ids, u.ID)
	}
	return ids
}

func (m *MobileApp) TagIDs() []uint {
	ids := make([]uint, 0, len(m.OfficialTags))
	for _, t := range m.OfficialTags {
		ids = append(ids, t.ID)
	}
	return ids
}

// Snapshot builds the published copy of a draft. Versions are cloned by value
// without identity or parent linkage; association slices are shared so the
// caller can write the join rows.
func (m *MobileApp) Snapshot() *MobileApp {
	draftID := m.ID
	snapshot := &MobileApp{
		Name:             m.Name,
		ShortDescription: m.ShortDescription,
		LongDescription:  m.LongDescription,
		IconURL:          m.IconURL,
		Language:         m.Language,
		Status:           m.Status,
		DraftID:          &draftID,
		Agencies:         m.Agencies,
		Users:            m.Users,
		OfficialTags:     m.OfficialTags,
	}
	for _, v := range m.Versions {
		snapshot.Versions = append(snapshot.Versions, v.Clone())
	}
	return snapshot
}
