package repositories

import "gorm.io/gorm"

// Repositories bundles every store built on one database handle.
type Repositories struct {
	Transactor    Transactor
	MobileApps    MobileAppRepository
	Galleries     GalleryRepository
	Links         LinkRepository
	Counters      CounterCache
	Tags          TagRepository
	Agencies      AgencyRepository
	Users         UserRepository
	Activities    ActivityRepository
	Notifications NotificationRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Transactor:    NewTransactor(db),
		MobileApps:    NewMobileAppRepository(db),
		Galleries:     NewGalleryRepository(db),
		Links:         NewLinkRepository(db),
		Counters:      NewCounterCache(db),
		Tags:          NewTagRepository(db),
		Agencies:      NewAgencyRepository(db),
		Users:         NewUserRepository(db),
		Activities:    NewActivityRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
