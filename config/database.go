package config

import (
	"app-registry-cms/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logrus.WithField("database", cfg.DBName).Info("Database connected")
	return db, nil
}

// Migrate creates or updates every table the service uses. Join tables are
// migrated first so their composite keys win over the ones gorm would derive.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.MobileAppAgency{},
		&models.MobileAppUser{},
		&models.MobileAppOfficialTag{},
		&models.GalleryAgency{},
		&models.GalleryUser{},
		&models.GalleryOfficialTag{},
		&models.Agency{},
		&models.User{},
		&models.OfficialTag{},
		&models.MobileApp{},
		&models.MobileAppVersion{},
		&models.Gallery{},
		&models.GalleryItem{},
		&models.Activity{},
		&models.Notification{},
	)
}
