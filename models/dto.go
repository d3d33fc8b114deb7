package models

import (
	"strings"
	"time"
)

type MobileAppRequest struct {
	Name             string                  `json:"name" binding:"max=255"`
	ShortDescription string                  `json:"short_description"`
	LongDescription  string                  `json:"long_description"`
	IconURL          string                  `json:"icon_url"`
	Language         string                  `json:"language"`
	AgencyIDs        []uint                  `json:"agency_ids"`
	UserIDs          []uint                  `json:"user_ids"`
	Tags             []string                `json:"tags"`
	Versions         []MobileAppVersionInput `json:"versions"`
	LockVersion      *int                    `json:"lock_version"`
}

// MobileAppVersionInput is a nested version entry. Entries with an ID update
// the existing version, entries without one are created and Destroy removes.
type MobileAppVersionInput struct {
	ID              *uint      `json:"id"`
	StoreURL        string     `json:"store_url"`
	Platform        string     `json:"platform"`
	VersionNumber   string     `json:"version_number"`
	PublishDate     *time.Time `json:"publish_date"`
	Description     string     `json:"description"`
	WhatsNew        string     `json:"whats_new"`
	Screenshot      string     `json:"screenshot"`
	Device          string     `json:"device"`
	Language        string     `json:"language"`
	AverageRating   float64    `json:"average_rating"`
	NumberOfRatings int        `json:"number_of_ratings"`
	Destroy         bool       `json:"_destroy"`
}

// Blank reports an entry where every attribute is empty; such entries are ignored.
func (in MobileAppVersionInput) Blank() bool {
	return in.ID == nil && !in.Destroy &&
		strings.TrimSpace(in.StoreURL+in.Platform+in.VersionNumber+in.Description+
			in.WhatsNew+in.Screenshot+in.Device+in.Language) == "" &&
		in.PublishDate == nil && in.AverageRating == 0 && in.NumberOfRatings == 0
}

func (in MobileAppVersionInput) Apply(v *MobileAppVersion) {
	v.StoreURL = in.StoreURL
	v.Platform = in.Platform
	v.VersionNumber = in.VersionNumber
	v.PublishDate = in.PublishDate
	v.Description = in.Description
	v.WhatsNew = in.WhatsNew
	v.Screenshot = in.Screenshot
	v.Device = in.Device
	v.Language = in.Language
	v.AverageRating = in.AverageRating
	v.NumberOfRatings = in.NumberOfRatings
}

type GalleryRequest struct {
	Name             string   `json:"name" binding:"max=255"`
	ShortDescription string   `json:"short_description"`
	LongDescription  string   `json:"long_description"`
	AgencyIDs        []uint   `json:"agency_ids"`
	UserIDs          []uint   `json:"user_ids"`
	Tags             []string `json:"tags"`
	MobileAppIDs     []uint   `json:"mobile_app_ids"`
	LockVersion      *int     `json:"lock_version"`
}

type CreateTagRequest struct {
	TagText string `json:"tag_text" binding:"required,min=1,max=100"`
}

type CreateAgencyRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	Shortname string `json:"shortname"`
	InfoURL   string `json:"info_url"`
	ParentID  *uint  `json:"parent_id"`
}

type CreateUserRequest struct {
	Email     string   `json:"email" binding:"required,email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	AgencyID  *uint    `json:"agency_id"`
	Role      UserRole `json:"role,omitempty"`
}

type UpdateUserRoleRequest struct {
	Role UserRole `json:"role" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ListParams struct {
	AgencyID uint `form:"agency_id"`
	Page     int  `form:"page,default=1"`
	Limit    int  `form:"limit,default=25"`
}

// SearchParams mirrors the filters of the admin data table.
type SearchParams struct {
	Text          string `form:"sSearch"`
	Platform      string `form:"platform"`
	Status        string `form:"status"`
	Agency        string `form:"agency"`
	SortColumn    string `form:"sort_column"`
	SortDirection string `form:"sort_direction"`
	From          int    `form:"from"`
	Size          int    `form:"size"`
}

type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int64  `json:"count"`
}
