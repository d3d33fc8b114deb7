package models

import "time"

type NotificationType string

const (
	NotificationAgency  NotificationType = "agency"
	NotificationContact NotificationType = "contact"
	NotificationAdmin   NotificationType = "admin"
)

type Notification struct {
	ID               uint             `json:"id" gorm:"primarykey"`
	UserID           uint             `json:"user_id" gorm:"index"`
	User             *User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ItemType         string           `json:"item_type"`
	ItemID           uint             `json:"item_id"`
	Message          string           `json:"message"`
	MessageType      string           `json:"message_type"`
	NotificationType NotificationType `json:"notification_type"`
	HasRead          bool             `json:"has_read" gorm:"default:false"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ShouldEmail mirrors the user's email preferences for the notification kind.
func (n *Notification) ShouldEmail(user *User) bool {
	switch n.NotificationType {
	case NotificationAdmin:
		return true
	case NotificationAgency:
		return user.AgencyNotificationsEmails
	case NotificationContact:
		return user.ContactNotificationsEmails
	}
	return false
}
