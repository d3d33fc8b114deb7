package models

// Join rows. Each pair of foreign keys is the primary key, which matches the
// tables gorm builds for the many2many associations on MobileApp and Gallery.

type MobileAppAgency struct {
	MobileAppID uint `gorm:"primaryKey"`
	AgencyID    uint `gorm:"primaryKey;index"`
}

type MobileAppUser struct {
	MobileAppID uint `gorm:"primaryKey"`
	UserID      uint `gorm:"primaryKey;index"`
}

type MobileAppOfficialTag struct {
	MobileAppID   uint `gorm:"primaryKey"`
	OfficialTagID uint `gorm:"primaryKey;index"`
}

type GalleryAgency struct {
	GalleryID uint `gorm:"primaryKey"`
	AgencyID  uint `gorm:"primaryKey;index"`
}

type GalleryUser struct {
	GalleryID uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey;index"`
}

type GalleryOfficialTag struct {
	GalleryID     uint `gorm:"primaryKey"`
	OfficialTagID uint `gorm:"primaryKey;index"`
}
