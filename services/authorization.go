package services

import (
	"app-registry-cms/models"
)

// PublishOptions carries who performs a change and whether it lands in the
// activity trail. A nil Actor is the system itself (jobs, seeds) and skips
// authorization.
type PublishOptions struct {
	Actor        *models.User
	EmitActivity bool
}

// AsUser is the usual option set for a change made through the API.
func AsUser(user *models.User) PublishOptions {
	return PublishOptions{Actor: user, EmitActivity: true}
}

// ActorID returns the owner recorded on activities, nil for the system.
func (o PublishOptions) ActorID() *uint {
	if o.Actor == nil {
		return nil
	}
	id := o.Actor.ID
	return &id
}

// CanEdit reports whether user may change an item with the given contacts.
func CanEdit(user *models.User, contactIDs []uint) bool {
	if user == nil {
		return true
	}
	if user.IsBanned() {
		return false
	}
	if user.CrossAgency() {
		return true
	}
	for _, id := range contactIDs {
		if id == user.ID {
			return true
		}
	}
	return false
}

func authorizeEdit(user *models.User, contactIDs []uint) error {
	if user != nil && user.IsBanned() {
		return models.ErrBanned
	}
	if !CanEdit(user, contactIDs) {
		return models.ErrForbidden
	}
	return nil
}

func requireAdmin(user *models.User) error {
	if user == nil {
		return nil
	}
	if user.IsBanned() {
		return models.ErrBanned
	}
	if !user.IsAdmin() {
		return models.ErrForbidden
	}
	return nil
}
