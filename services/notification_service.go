package services

import (
	"context"
	"fmt"
	"strings"

	"app-registry-cms/models"
	"app-registry-cms/repositories"

	"github.com/sirupsen/logrus"
)

// Deliverer sends a notification out of band, e.g. by email.
type Deliverer interface {
	Deliver(ctx context.Context, notification *models.Notification, user *models.User) error
}

// LogDeliverer only writes the notification to the log.
type LogDeliverer struct {
	Log logrus.FieldLogger
}

func (d LogDeliverer) Deliver(_ context.Context, n *models.Notification, user *models.User) error {
	d.Log.WithFields(logrus.Fields{
		"user_id":           user.ID,
		"email":             user.Email,
		"item_type":         n.ItemType,
		"item_id":           n.ItemID,
		"notification_type": n.NotificationType,
	}).Info(n.Message)
	return nil
}

// Item identifies the record a notification is about. Type is the
// snake_case kind, e.g. "mobile_app".
type Item struct {
	Type      string
	ID        uint
	Name      string
	AgencyIDs []uint
	Contacts  []models.User
}

type NotificationService interface {
	Notify(ctx context.Context, item Item, event string)
	GetForUser(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uint) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	deliverer        Deliverer
	log              logrus.FieldLogger
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, userRepo repositories.UserRepository, deliverer Deliverer, log logrus.FieldLogger) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		deliverer:        deliverer,
		log:              log,
	}
}

// Notify fans an event out to its recipients. Requests go to admins, every
// other event to the item's contacts and to the users of its agencies.
// Failures are logged, the change that triggered them already committed.
func (s *notificationService) Notify(ctx context.Context, item Item, event string) {
	message := fmt.Sprintf("%s %q %s", models.Humanize(item.Type), item.Name, strings.ReplaceAll(event, "_", " "))

	recipients := map[uint]bool{}
	send := func(user models.User, kind models.NotificationType) {
		if recipients[user.ID] || user.IsBanned() {
			return
		}
		recipients[user.ID] = true
		s.send(ctx, item, event, message, user, kind)
	}

	if event == string(models.StatusPublishRequested) || event == string(models.StatusArchiveRequested) {
		admins, err := s.userRepo.GetByRole(ctx, models.RoleAdmin)
		if err != nil {
			s.log.WithError(err).Error("Failed to load admins for notification")
			return
		}
		for _, admin := range admins {
			send(admin, models.NotificationAdmin)
		}
		return
	}

	for _, contact := range item.Contacts {
		send(contact, models.NotificationContact)
	}

	members, err := s.userRepo.GetByAgencyIDs(ctx, item.AgencyIDs)
	if err != nil {
		s.log.WithError(err).Error("Failed to load agency users for notification")
		return
	}
	for _, member := range members {
		send(member, models.NotificationAgency)
	}
}

func (s *notificationService) send(ctx context.Context, item Item, event, message string, user models.User, kind models.NotificationType) {
	n := &models.Notification{
		UserID:           user.ID,
		ItemType:         item.Type,
		ItemID:           item.ID,
		Message:          message,
		MessageType:      event,
		NotificationType: kind,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("Failed to store notification")
		return
	}
	if !n.ShouldEmail(&user) {
		return
	}
	if err := s.deliverer.Deliver(ctx, n, &user); err != nil {
		s.log.WithError(err).WithField("notification_id", n.ID).Warn("Failed to deliver notification")
	}
}

func (s *notificationService) GetForUser(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	return s.notificationRepo.GetForUser(ctx, userID, unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uint) error {
	return s.notificationRepo.MarkRead(ctx, userID, id)
}
