package models

import (
	"time"
)

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleSuperUser UserRole = "super_user"
	RoleAdmin     UserRole = "admin"
	RoleBanned    UserRole = "banned"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleSuperUser, RoleAdmin, RoleBanned:
		return true
	}
	return false
}

type User struct {
	ID                         uint      `json:"id" gorm:"primarykey"`
	Email                      string    `json:"email" gorm:"uniqueIndex;not null"`
	FirstName                  string    `json:"first_name"`
	LastName                   string    `json:"last_name"`
	Phone                      string    `json:"phone"`
	AgencyID                   *uint     `json:"agency_id"`
	Role                       UserRole  `json:"role" gorm:"default:'user'"`
	AgencyNotificationsEmails  bool      `json:"agency_notifications_emails" gorm:"default:false"`
	ContactNotificationsEmails bool      `json:"contact_notifications_emails" gorm:"default:true"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsBanned() bool {
	return u.Role == RoleBanned
}

// CrossAgency users may edit records of any agency.
func (u *User) CrossAgency() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperUser
}
