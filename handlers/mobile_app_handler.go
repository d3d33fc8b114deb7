package handlers

import (
	"bytes"
	"context"
	"net/http"

	"app-registry-cms/helper"
	"app-registry-cms/models"
	"app-registry-cms/search"
	"app-registry-cms/services"

	"github.com/gin-gonic/gin"
)

type MobileAppHandler struct {
	mobileAppService services.MobileAppService
	searchService    services.SearchService
	exportService    services.ExportService
	activityService  services.ActivityService
	Helper           *helper.HTTPHelper
}

func NewMobileAppHandler(mobileAppService services.MobileAppService, searchService services.SearchService, exportService services.ExportService, activityService services.ActivityService) *MobileAppHandler {
	return &MobileAppHandler{
		mobileAppService: mobileAppService,
		searchService:    searchService,
		exportService:    exportService,
		activityService:  activityService,
		Helper:           &helper.HTTPHelper{},
	}
}

func (h *MobileAppHandler) CreateMobileApp(c *gin.Context) {
	var req models.MobileAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	app, err := h.mobileAppService.Create(c.Request.Context(), req, options(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Mobile app created successfully", app)
}

func (h *MobileAppHandler) GetMobileApps(c *gin.Context) {
	var params models.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	// Set defaults
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 25
	}

	apps, total, err := h.mobileAppService.List(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", map[string]interface{}{
		"mobile_apps": apps,
		"paging":      h.Helper.GeneratePaging(c, params.Limit, params.Page, int(total)),
	})
}

func (h *MobileAppHandler) GetMobileApp(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid mobile app ID", h.Helper.EmptyJsonMap())
		return
	}

	app, err := h.mobileAppService.Get(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", app)
}

func (h *MobileAppHandler) UpdateMobileApp(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid mobile app ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.MobileAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	app, err := h.mobileAppService.Update(c.Request.Context(), id, req, options(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Mobile app updated successfully", app)
}

func (h *MobileAppHandler) DeleteMobileApp(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid mobile app ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.mobileAppService.Delete(c.Request.Context(), id, options(c)); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Mobile app deleted successfully", h.Helper.EmptyJsonMap())
}

func (h *MobileAppHandler) Publish(c *gin.Context) {
	h.transition(c, h.mobileAppService.Publish, "Mobile app published")
}

func (h *MobileAppHandler) Archive(c *gin.Context) {
	h.transition(c, h.mobileAppService.Archive, "Mobile app archived")
}

func (h *MobileAppHandler) RequestPublish(c *gin.Context) {
	h.transition(c, h.mobileAppService.RequestPublish, "Publish requested")
}

func (h *MobileAppHandler) RequestArchive(c *gin.Context) {
	h.transition(c, h.mobileAppService.RequestArchive, "Archive requested")
}

type mobileAppTransition func(ctx context.Context, id uint, opts services.PublishOptions) (*models.MobileApp, error)

func (h *MobileAppHandler) transition(c *gin.Context, fn mobileAppTransition, message string) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid mobile app ID", h.Helper.EmptyJsonMap())
		return
	}

	app, err := fn(c.Request.Context(), id, options(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, message, app)
}

func (h *MobileAppHandler) GetActivities(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid mobile app ID", h.Helper.EmptyJsonMap())
		return
	}

	activities, err := h.activityService.ForTrackable(c.Request.Context(), models.TrackableMobileApp, id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", activities)
}

func (h *MobileAppHandler) PlatformCounts(c *gin.Context) {
	counts, err := h.mobileAppService.PlatformCounts(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", counts)
}

func (h *MobileAppHandler) Search(c *gin.Context) {
	var params models.SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), search.MobileAppIndex, params)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", result)
}

func (h *MobileAppHandler) ExportDetailed(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exportService.ExportDetailed(c.Request.Context(), &buf); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="mobile_apps.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *MobileAppHandler) ExportSummary(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exportService.ExportSummary(c.Request.Context(), &buf); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="mobile_apps_summary.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
