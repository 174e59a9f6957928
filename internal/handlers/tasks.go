package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plantation-manager/backend/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tasks, err := h.service.ListTasks(c.Request.Context(), userID, c.Param("farmId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, tasks, "")
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), userID, c.Param("taskId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, task, "")
}

func (h *TaskHandler) CreateManualTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.ManualTaskInput
	if !bindJSON(c, &input) {
		return
	}

	task, err := h.service.CreateManualTask(c.Request.Context(), userID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, task, "Task created successfully")
}

func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.CompleteTaskInput
	if !bindJSON(c, &input) {
		return
	}

	task, err := h.service.CompleteTask(c.Request.Context(), userID, c.Param("taskId"), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, task, "Task completed successfully")
}

func (h *TaskHandler) UpdateCompletionDetails(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.CompletionDetailsInput
	if !bindJSON(c, &input) {
		return
	}

	task, err := h.service.UpdateCompletionDetails(c.Request.Context(), userID, c.Param("taskId"), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, task, "Completion details updated successfully")
}

func (h *TaskHandler) UpdateTaskDetails(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.UpdateTaskInput
	if !bindJSON(c, &input) {
		return
	}

	task, err := h.service.UpdateTaskDetails(c.Request.Context(), userID, c.Param("taskId"), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, task, "Task updated successfully")
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), userID, c.Param("taskId")); err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Task deleted successfully")
}
