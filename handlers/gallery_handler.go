package handlers

import (
	"context"

	"app-registry-cms/helper"
	"app-registry-cms/models"
	"app-registry-cms/search"
	"app-registry-cms/services"

	"github.com/gin-gonic/gin"
)

type GalleryHandler struct {
	galleryService  services.GalleryService
	searchService   services.SearchService
	activityService services.ActivityService
	Helper          *helper.HTTPHelper
}

func NewGalleryHandler(galleryService services.GalleryService, searchService services.SearchService, activityService services.ActivityService) *GalleryHandler {
	return &GalleryHandler{
		galleryService:  galleryService,
		searchService:   searchService,
		activityService: activityService,
		Helper:          &helper.HTTPHelper{},
	}
}

func (h *GalleryHandler) CreateGallery(c *gin.Context) {
	var req models.GalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	gallery, err := h.galleryService.Create(c.Request.Context(), req, options(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Gallery created successfully", gallery)
}

func (h *GalleryHandler) GetGalleries(c *gin.Context) {
	var params models.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 25
	}

	galleries, total, err := h.galleryService.List(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", map[string]interface{}{
		"galleries": galleries,
		"paging":    h.Helper.GeneratePaging(c, params.Limit, params.Page, int(total)),
	})
}

func (h *GalleryHandler) GetGallery(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid gallery ID", h.Helper.EmptyJsonMap())
		return
	}

	gallery, err := h.galleryService.Get(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", gallery)
}

func (h *GalleryHandler) UpdateGallery(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid gallery ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.GalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	gallery, err := h.galleryService.Update(c.Request.Context(), id, req, options(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Gallery updated successfully", gallery)
}

func (h *GalleryHandler) DeleteGallery(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid gallery ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.galleryService.Delete(c.Request.Context(), id, options(c)); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Gallery deleted successfully", h.Helper.EmptyJsonMap())
}

func (h *GalleryHandler) Publish(c *gin.Context) {
	h.transition(c, h.galleryService.Publish, "Gallery published")
}

func (h *GalleryHandler) Archive(c *gin.Context) {
	h.transition(c, h.galleryService.Archive, "Gallery archived")
}

func (h *GalleryHandler) RequestPublish(c *gin.Context) {
	h.transition(c, h.galleryService.RequestPublish, "Publish requested")
}

func (h *GalleryHandler) RequestArchive(c *gin.Context) {
	h.transition(c, h.galleryService.RequestArchive, "Archive requested")
}

type galleryTransition func(ctx context.Context, id uint, opts services.PublishOptions) (*models.Gallery, error)

func (h *GalleryHandler) transition(c *gin.Context, fn galleryTransition, message string) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid gallery ID", h.Helper.EmptyJsonMap())
		return
	}

	gallery, err := fn(c.Request.Context(), id, options(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, message, gallery)
}

func (h *GalleryHandler) GetActivities(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid gallery ID", h.Helper.EmptyJsonMap())
		return
	}

	activities, err := h.activityService.ForTrackable(c.Request.Context(), models.TrackableGallery, id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", activities)
}

func (h *GalleryHandler) Search(c *gin.Context) {
	var params models.SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), search.GalleryIndex, params)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", result)
}
