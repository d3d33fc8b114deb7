package services

import (
	"context"
	"io"
	"strings"
	"time"

	"app-registry-cms/models"
	"app-registry-cms/repositories"

	"github.com/gocarina/gocsv"
)

const (
	listSeparator     = "|"
	publishDateLayout = "January _2, 2006 15:04"
)

// DetailedRow is one line of the detailed export: the app columns repeated
// for each of its versions.
type DetailedRow struct {
	ID               uint    `csv:"id"`
	Name             string  `csv:"name"`
	ShortDescription string  `csv:"short_description"`
	LongDescription  string  `csv:"long_description"`
	IconURL          string  `csv:"icon_url"`
	Language         string  `csv:"language"`
	Status           string  `csv:"status"`
	CreatedAt        string  `csv:"created_at"`
	UpdatedAt        string  `csv:"updated_at"`
	Agencies         string  `csv:"agencies"`
	Contacts         string  `csv:"contacts"`
	Tags             string  `csv:"tags"`
	StoreURL         string  `csv:"store_url"`
	Platform         string  `csv:"platform"`
	VersionNumber    string  `csv:"version_number"`
	PublishDate      string  `csv:"publish_date"`
	Screenshot       string  `csv:"screenshot"`
	Device           string  `csv:"device"`
	AverageRating    float64 `csv:"average_rating"`
	NumberOfRatings  int     `csv:"number_of_ratings"`
}

func (r DetailedRow) AgencyNames() []string { return splitList(r.Agencies) }
func (r DetailedRow) ContactEmails() []string { return splitList(r.Contacts) }
func (r DetailedRow) TagTexts() []string { return splitList(r.Tags) }

// SummaryRow is one line per app.
type SummaryRow struct {
	Agencies     string `csv:"agencies"`
	Platforms    string `csv:"platforms"`
	PlatformURLs string `csv:"platform_urls"`
	Name         string `csv:"name"`
	Tags         string `csv:"tags"`
	Updated      string `csv:"updated"`
}

type ExportService interface {
	ExportDetailed(ctx context.Context, w io.Writer) error
	ExportSummary(ctx context.Context, w io.Writer) error
	ParseDetailed(r io.Reader) ([]DetailedRow, error)
}

type exportService struct {
	appRepo repositories.MobileAppRepository
}

func NewExportService(appRepo repositories.MobileAppRepository) ExportService {
	return &exportService{appRepo: appRepo}
}

func (s *exportService) ExportDetailed(ctx context.Context, w io.Writer) error {
	apps, err := s.appRepo.GetAll(ctx, true)
	if err != nil {
		return err
	}

	rows := make([]DetailedRow, 0, len(apps))
	for i := range apps {
		rows = append(rows, DetailedRows(&apps[i])...)
	}
	return gocsv.Marshal(&rows, w)
}

func (s *exportService) ExportSummary(ctx context.Context, w io.Writer) error {
	apps, err := s.appRepo.GetAll(ctx, true)
	if err != nil {
		return err
	}

	rows := make([]SummaryRow, 0, len(apps))
	for i := range apps {
		app := &apps[i]
		platforms := make([]string, 0, len(app.Versions))
		urls := make([]string, 0, len(app.Versions))
		for _, v := range app.Versions {
			platforms = append(platforms, v.Platform)
			urls = append(urls, v.StoreURL)
		}
		rows = append(rows, SummaryRow{
			Agencies:     joinAgencies(app.Agencies),
			Platforms:    strings.Join(platforms, listSeparator),
			PlatformURLs: strings.Join(urls, listSeparator),
			Name:         app.Name,
			Tags:         joinTags(app.OfficialTags),
			Updated:      app.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return gocsv.Marshal(&rows, w)
}

func (s *exportService) ParseDetailed(r io.Reader) ([]DetailedRow, error) {
	var rows []DetailedRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DetailedRows flattens one app; an app without versions still yields a row.
func DetailedRows(app *models.MobileApp) []DetailedRow {
	base := DetailedRow{
		ID:               app.ID,
		Name:             app.Name,
		ShortDescription: app.ShortDescription,
		LongDescription:  app.LongDescription,
		IconURL:          app.IconURL,
		Language:         app.Language,
		Status:           string(app.Status),
		CreatedAt:        app.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        app.UpdatedAt.UTC().Format(time.RFC3339),
		Agencies:         joinAgencies(app.Agencies),
		Contacts:         joinContacts(app.Users),
		Tags:             joinTags(app.OfficialTags),
	}
	if len(app.Versions) == 0 {
		return []DetailedRow{base}
	}

	rows := make([]DetailedRow, 0, len(app.Versions))
	for _, v := range app.Versions {
		row := base
		row.StoreURL = v.StoreURL
		row.Platform = v.Platform
		row.VersionNumber = v.VersionNumber
		if v.PublishDate != nil {
			row.PublishDate = v.PublishDate.Format(publishDateLayout)
		}
		row.Screenshot = v.Screenshot
		row.Device = v.Device
		row.AverageRating = v.AverageRating
		row.NumberOfRatings = v.NumberOfRatings
		rows = append(rows, row)
	}
	return rows
}

func joinAgencies(agencies []models.Agency) string {
	names := make([]string, 0, len(agencies))
	for _, a := range agencies {
		names = append(names, a.Name)
	}
	return strings.Join(names, listSeparator)
}

func joinContacts(users []models.User) string {
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return strings.Join(emails, listSeparator)
}

func joinTags(tags []models.OfficialTag) string {
	texts := make([]string, 0, len(tags))
	for _, t := range tags {
		texts = append(texts, t.TagText)
	}
	return strings.Join(texts, listSeparator)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}
