package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plantation-manager/backend/internal/services"
)

type PlantationHandler struct {
	service services.PlantationService
}

func NewPlantationHandler(service services.PlantationService) *PlantationHandler {
	return &PlantationHandler{service: service}
}

func (h *PlantationHandler) StartPlantation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.StartPlantationInput
	if !bindJSON(c, &input) {
		return
	}

	farm, err := h.service.StartPlantation(c.Request.Context(), userID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, farm, "Plantation started successfully")
}

func (h *PlantationHandler) ListFarms(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	farms, err := h.service.ListFarms(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, farms, "")
}

func (h *PlantationHandler) GetFarm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	farm, err := h.service.GetFarm(c.Request.Context(), userID, c.Param("farmId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, farm, "")
}

func (h *PlantationHandler) UpdateFarm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.UpdateFarmInput
	if !bindJSON(c, &input) {
		return
	}

	farm, err := h.service.UpdateFarm(c.Request.Context(), userID, c.Param("farmId"), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, farm, "Farm updated successfully")
}

func (h *PlantationHandler) DeleteFarm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteFarm(c.Request.Context(), userID, c.Param("farmId")); err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Farm deleted successfully")
}

func (h *PlantationHandler) RegenerateSchedule(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tasks, err := h.service.RegenerateSchedule(c.Request.Context(), userID, c.Param("farmId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, tasks, "Schedule regenerated")
}
