// Package search projects content items into the external search index and
// builds the admin search queries.
package search

import (
	"strings"
	"time"

	"app-registry-cms/models"
)

const (
	MobileAppIndex = "mobile_apps"
	GalleryIndex   = "galleries"
)

type MobileAppDocument struct {
	ID        uint      `json:"id"`
	DraftID   *uint     `json:"draft_id"`
	Name      string    `json:"name"`
	Agencies  string    `json:"agencies"`
	Contacts  string    `json:"contacts"`
	Platform  string    `json:"platform"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GalleryDocument struct {
	ID        uint      `json:"id"`
	DraftID   *uint     `json:"draft_id"`
	Name      string    `json:"name"`
	Agencies  string    `json:"agencies"`
	Contacts  string    `json:"contacts"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMobileAppDocument expects the app with agencies, users and versions loaded.
func NewMobileAppDocument(app *models.MobileApp) MobileAppDocument {
	platforms := make([]string, 0, len(app.Versions))
	for _, v := range app.Versions {
		platforms = append(platforms, v.Platform)
	}

	return MobileAppDocument{
		ID:        app.ID,
		DraftID:   app.DraftID,
		Name:      app.Name,
		Agencies:  agencyNames(app.Agencies),
		Contacts:  userEmails(app.Users),
		Platform:  strings.Join(platforms, ", "),
		Status:    app.Status.Humanize(),
		UpdatedAt: app.UpdatedAt,
	}
}

func NewGalleryDocument(gallery *models.Gallery) GalleryDocument {
	return GalleryDocument{
		ID:        gallery.ID,
		DraftID:   gallery.DraftID,
		Name:      gallery.Name,
		Agencies:  agencyNames(gallery.Agencies),
		Contacts:  userEmails(gallery.Users),
		Status:    gallery.Status.Humanize(),
		UpdatedAt: gallery.UpdatedAt,
	}
}

func agencyNames(agencies []models.Agency) string {
	names := make([]string, 0, len(agencies))
	for _, a := range agencies {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func userEmails(users []models.User) string {
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return strings.Join(emails, ", ")
}
