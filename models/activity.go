package models

import "time"

const (
	TrackableMobileApp = "MobileApp"
	TrackableGallery   = "Gallery"
)

// Activity is one entry of the audit trail, e.g. key "mobile_app.published".
type Activity struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	TrackableType string    `json:"trackable_type" gorm:"index:idx_activity_trackable"`
	TrackableID   uint      `json:"trackable_id" gorm:"index:idx_activity_trackable"`
	OwnerID       *uint     `json:"owner_id" gorm:"index"`
	Key           string    `json:"key" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}
