package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plantation-manager/backend/internal/services"
)

type SeasonHandler struct {
	service services.SeasonService
}

func NewSeasonHandler(service services.SeasonService) *SeasonHandler {
	return &SeasonHandler{service: service}
}

func (h *SeasonHandler) CreateSeason(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.SeasonInput
	if !bindJSON(c, &input) {
		return
	}

	season, err := h.service.CreateSeason(c.Request.Context(), userID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, season, "Season created successfully")
}

func (h *SeasonHandler) ListSeasons(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	seasons, err := h.service.ListSeasons(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, seasons, "")
}

func (h *SeasonHandler) ListSeasonsByFarm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	seasons, err := h.service.ListSeasonsByFarm(c.Request.Context(), userID, c.Param("farmId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, seasons, "")
}

func (h *SeasonHandler) GetSeason(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	season, err := h.service.GetSeason(c.Request.Context(), userID, c.Param("seasonId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, season, "")
}

func (h *SeasonHandler) UpdateSeason(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.UpdateSeasonInput
	if !bindJSON(c, &input) {
		return
	}

	season, err := h.service.UpdateSeason(c.Request.Context(), userID, c.Param("seasonId"), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, season, "Season updated successfully")
}

func (h *SeasonHandler) EndSeason(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	season, err := h.service.EndSeason(c.Request.Context(), userID, c.Param("seasonId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, season, "Season ended successfully")
}

func (h *SeasonHandler) DeleteSeason(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSeason(c.Request.Context(), userID, c.Param("seasonId")); err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Season deleted successfully")
}
