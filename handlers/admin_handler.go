package handlers

import (
	"strconv"

	"app-registry-cms/helper"
	"app-registry-cms/middleware"
	"app-registry-cms/models"
	"app-registry-cms/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the signed-in user's own pages and the admin-only
// maintenance endpoints.
type AdminHandler struct {
	authService         services.AuthService
	activityService     services.ActivityService
	notificationService services.NotificationService
	searchService       services.SearchService
	counterService      services.CounterService
	Helper              *helper.HTTPHelper
}

func NewAdminHandler(
	authService services.AuthService,
	activityService services.ActivityService,
	notificationService services.NotificationService,
	searchService services.SearchService,
	counterService services.CounterService,
) *AdminHandler {
	return &AdminHandler{
		authService:         authService,
		activityService:     activityService,
		notificationService: notificationService,
		searchService:       searchService,
		counterService:      counterService,
		Helper:              &helper.HTTPHelper{},
	}
}

func (h *AdminHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Profile loaded", user)
}

func (h *AdminHandler) GetNotifications(c *gin.Context) {
	user := middleware.CurrentUser(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	notifications, err := h.notificationService.GetForUser(c.Request.Context(), user.ID, unreadOnly)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", notifications)
}

func (h *AdminHandler) MarkNotificationRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid notification ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), middleware.CurrentUser(c).ID, id); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Notification marked as read", h.Helper.EmptyJsonMap())
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	users, err := h.authService.GetUsers(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", users)
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "User created successfully", user)
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid user ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	user, err := h.authService.UpdateRole(c.Request.Context(), middleware.CurrentUser(c), id, req.Role)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Role updated", user)
}

func (h *AdminHandler) Impersonate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid user ID", h.Helper.EmptyJsonMap())
		return
	}

	response, err := h.authService.Impersonate(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Impersonation token issued", response)
}

func (h *AdminHandler) GetActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	activities, err := h.activityService.Recent(c.Request.Context(), limit)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", activities)
}

func (h *AdminHandler) Reindex(c *gin.Context) {
	kind := c.Param("kind")

	count, err := h.searchService.Reindex(c.Request.Context(), kind)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Reindexed", map[string]interface{}{
		"index":     kind,
		"documents": count,
	})
}

func (h *AdminHandler) RefreshCounters(c *gin.Context) {
	if err := h.counterService.RefreshAll(c.Request.Context()); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Counters refreshed", h.Helper.EmptyJsonMap())
}
