package models

import "time"

type OfficialTag struct {
	ID                      uint      `json:"id" gorm:"primarykey"`
	TagText                 string    `json:"tag_text" gorm:"uniqueIndex;not null"`
	DraftMobileAppCount     int64     `json:"draft_mobile_app_count" gorm:"default:0"`
	PublishedMobileAppCount int64     `json:"published_mobile_app_count" gorm:"default:0"`
	DraftGalleryCount       int64     `json:"draft_gallery_count" gorm:"default:0"`
	PublishedGalleryCount   int64     `json:"published_gallery_count" gorm:"default:0"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}
