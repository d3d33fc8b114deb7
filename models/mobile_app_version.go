package models

import "time"

// MobileAppVersion is a platform-specific release of a mobile app.
type MobileAppVersion struct {
	ID              uint       `json:"id" gorm:"primarykey"`
	MobileAppID     uint       `json:"mobile_app_id" gorm:"not null;index"`
	StoreURL        string     `json:"store_url" gorm:"type:text"`
	Platform        string     `json:"platform" gorm:"index"`
	VersionNumber   string     `json:"version_number"`
	PublishDate     *time.Time `json:"publish_date"`
	Description     string     `json:"description" gorm:"type:text"`
	WhatsNew        string     `json:"whats_new" gorm:"type:text"`
	Screenshot      string     `json:"screenshot" gorm:"type:text"`
	Device          string     `json:"device"`
	Language        string     `json:"language"`
	AverageRating   float64    `json:"average_rating" gorm:"default:0"`
	NumberOfRatings int        `json:"number_of_ratings" gorm:"default:0"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Clone copies every attribute except the identity and the parent key.
func (v MobileAppVersion) Clone() MobileAppVersion {
	v.ID = 0
	v.MobileAppID = 0
	if v.PublishDate != nil {
		d := *v.PublishDate
		v.PublishDate = &d
	}
	return v
}
