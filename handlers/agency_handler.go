package handlers

import (
	"app-registry-cms/helper"
	"app-registry-cms/models"
	"app-registry-cms/services"

	"github.com/gin-gonic/gin"
)

type AgencyHandler struct {
	agencyService services.AgencyService
	Helper        *helper.HTTPHelper
}

func NewAgencyHandler(agencyService services.AgencyService) *AgencyHandler {
	return &AgencyHandler{agencyService: agencyService, Helper: &helper.HTTPHelper{}}
}

func (h *AgencyHandler) CreateAgency(c *gin.Context) {
	var req models.CreateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	agency, err := h.agencyService.CreateAgency(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Agency created successfully", agency)
}

func (h *AgencyHandler) GetAgencies(c *gin.Context) {
	agencies, err := h.agencyService.GetAgencies(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", agencies)
}

func (h *AgencyHandler) GetAgency(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid agency ID", h.Helper.EmptyJsonMap())
		return
	}

	agency, err := h.agencyService.GetAgency(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", agency)
}
