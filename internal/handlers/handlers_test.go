package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantation-manager/backend/internal/handlers"
	"plantation-manager/backend/internal/models"
	"plantation-manager/backend/internal/services"
)

type MockPlantationService struct {
	err   error
	input services.StartPlantationInput
}

func (m *MockPlantationService) StartPlantation(ctx context.Context, userID uuid.UUID, input services.StartPlantationInput) (*models.Farm, error) {
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	return &models.Farm{ID: uuid.Must(uuid.NewV4()), UserID: userID, FarmName: input.FarmName}, nil
}

func (m *MockPlantationService) ListFarms(ctx context.Context, userID uuid.UUID) ([]models.Farm, error) {
	return []models.Farm{}, m.err
}

func (m *MockPlantationService) GetFarm(ctx context.Context, userID uuid.UUID, farmID string) (*models.Farm, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Farm{ID: uuid.FromStringOrNil(farmID), UserID: userID}, nil
}

func (m *MockPlantationService) UpdateFarm(ctx context.Context, userID uuid.UUID, farmID string, input services.UpdateFarmInput) (*models.Farm, error) {
	return m.GetFarm(ctx, userID, farmID)
}

func (m *MockPlantationService) DeleteFarm(ctx context.Context, userID uuid.UUID, farmID string) error {
	return m.err
}

func (m *MockPlantationService) RegenerateSchedule(ctx context.Context, userID uuid.UUID, farmID string) ([]models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.Task{{TaskName: "Prepare pits"}}, nil
}

type MockTaskService struct {
	err        error
	completion *services.CompletionDetailsInput
}

func (m *MockTaskService) task(taskID string) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Task{ID: uuid.FromStringOrNil(taskID), Status: models.TaskStatusScheduled, DetailedSteps: []string{}}, nil
}

func (m *MockTaskService) ListTasks(ctx context.Context, userID uuid.UUID, farmID string) ([]models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.Task{{TaskName: "Weeding", Status: models.TaskStatusOverdue}}, nil
}

func (m *MockTaskService) GetTask(ctx context.Context, userID uuid.UUID, taskID string) (*models.Task, error) {
	return m.task(taskID)
}

func (m *MockTaskService) CreateManualTask(ctx context.Context, userID uuid.UUID, input services.ManualTaskInput) (*models.Task, error) {
	return m.task(uuid.Must(uuid.NewV4()).String())
}

func (m *MockTaskService) CompleteTask(ctx context.Context, userID uuid.UUID, taskID string, input services.CompleteTaskInput) (*models.Task, error) {
	return m.task(taskID)
}

func (m *MockTaskService) UpdateCompletionDetails(ctx context.Context, userID uuid.UUID, taskID string, input services.CompletionDetailsInput) (*models.Task, error) {
	m.completion = &input
	return m.task(taskID)
}

func (m *MockTaskService) UpdateTaskDetails(ctx context.Context, userID uuid.UUID, taskID string, input services.UpdateTaskInput) (*models.Task, error) {
	return m.task(taskID)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, userID uuid.UUID, taskID string) error {
	return m.err
}

func (m *MockTaskService) SweepOverdue(ctx context.Context) (int64, error) {
	return 0, m.err
}

type MockSeasonService struct {
	err error
}

func (m *MockSeasonService) season(id string) (*models.HarvestSeason, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.HarvestSeason{ID: uuid.FromStringOrNil(id), Status: models.SeasonStatusStarted}, nil
}

func (m *MockSeasonService) CreateSeason(ctx context.Context, userID uuid.UUID, input services.SeasonInput) (*models.HarvestSeason, error) {
	return m.season(uuid.Must(uuid.NewV4()).String())
}

func (m *MockSeasonService) ListSeasons(ctx context.Context, userID uuid.UUID) ([]models.HarvestSeason, error) {
	return []models.HarvestSeason{}, m.err
}

func (m *MockSeasonService) ListSeasonsByFarm(ctx context.Context, userID uuid.UUID, farmID string) ([]models.HarvestSeason, error) {
	return []models.HarvestSeason{}, m.err
}

func (m *MockSeasonService) GetSeason(ctx context.Context, userID uuid.UUID, seasonID string) (*models.HarvestSeason, error) {
	return m.season(seasonID)
}

func (m *MockSeasonService) UpdateSeason(ctx context.Context, userID uuid.UUID, seasonID string, input services.UpdateSeasonInput) (*models.HarvestSeason, error) {
	return m.season(seasonID)
}

func (m *MockSeasonService) EndSeason(ctx context.Context, userID uuid.UUID, seasonID string) (*models.HarvestSeason, error) {
	s, err := m.season(seasonID)
	if err != nil {
		return nil, err
	}
	s.Status = models.SeasonStatusEnded
	return s, nil
}

func (m *MockSeasonService) DeleteSeason(ctx context.Context, userID uuid.UUID, seasonID string) error {
	return m.err
}

type fixture struct {
	router     *gin.Engine
	plantation *MockPlantationService
	tasks      *MockTaskService
	seasons    *MockSeasonService
}

func setupRouter(authenticated bool) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		router:     gin.New(),
		plantation: &MockPlantationService{},
		tasks:      &MockTaskService{},
		seasons:    &MockSeasonService{},
	}

	api := f.router.Group("/api")
	if authenticated {
		api.Use(func(c *gin.Context) {
			c.Set("user_id", uuid.Must(uuid.NewV4()).String())
			c.Next()
		})
	}
	handlers.Register(api,
		handlers.NewPlantationHandler(f.plantation),
		handlers.NewTaskHandler(f.tasks),
		handlers.NewSeasonHandler(f.seasons),
	)
	return f
}

func (f *fixture) do(method, path string, body interface{}) (*httptest.ResponseRecorder, handlers.Response) {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp handlers.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestStartPlantation_Created(t *testing.T) {
	f := setupRouter(true)

	w, resp := f.do(http.MethodPost, "/api/plantation/start", map[string]interface{}{
		"farm_name":         "North block",
		"district_id":       2,
		"soil_type_id":      1,
		"chosen_variety_id": "panniyur-1",
		"farm_start_date":   "2025-01-10T00:00:00+05:30",
		"area_hectares":     1.5,
		"total_vines":       1200,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Plantation started successfully", resp.Message)
	assert.Equal(t, 10, f.plantation.input.FarmStartDate.Day())
}

func TestStartPlantation_MissingFields(t *testing.T) {
	f := setupRouter(true)

	w, resp := f.do(http.MethodPost, "/api/plantation/start", map[string]interface{}{"farm_name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)

	w, _ = f.do(http.MethodPost, "/api/plantation/start", "invalid json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequiresAuthenticatedUser(t *testing.T) {
	f := setupRouter(false)

	w, resp := f.do(http.MethodGet, "/api/plantation/farms", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User not authenticated", resp.Message)
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &services.Error{Kind: services.ErrValidation, Message: "Invalid task ID format"}, http.StatusBadRequest, "Invalid task ID format"},
		{"invalid state", &services.Error{Kind: services.ErrInvalidState, Message: "Only manual tasks can be deleted"}, http.StatusBadRequest, "Only manual tasks can be deleted"},
		{"not found", &services.Error{Kind: services.ErrNotFound, Message: "Task not found"}, http.StatusNotFound, "Task not found"},
		{"forbidden", &services.Error{Kind: services.ErrForbidden, Message: "You do not have access to this task"}, http.StatusForbidden, "You do not have access to this task"},
		{"infrastructure", fmt.Errorf("delete task: %w", errors.New("connection refused")), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRouter(true)
			f.tasks.err = tt.err

			w, resp := f.do(http.MethodDelete, "/api/plantation/tasks/"+uuid.Must(uuid.NewV4()).String(), nil)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.msg, resp.Message)
		})
	}
}

func TestListTasks_Envelope(t *testing.T) {
	f := setupRouter(true)

	w, resp := f.do(http.MethodGet, "/api/plantation/tasks/"+uuid.Must(uuid.NewV4()).String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	tasks, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Overdue", tasks[0].(map[string]interface{})["status"])
}

func TestUpdateCompletionDetails_ItemsPresence(t *testing.T) {
	f := setupRouter(true)
	path := "/api/plantation/tasks/" + uuid.Must(uuid.NewV4()).String() + "/completion"

	w, _ := f.do(http.MethodPut, path, `{"labor_hours": 2, "notes": "n"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.tasks.completion)
	assert.Nil(t, f.tasks.completion.Items)

	w, _ = f.do(http.MethodPut, path, `{"items": [], "labor_hours": 2}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.tasks.completion.Items)
	assert.Empty(t, *f.tasks.completion.Items)

	w, _ = f.do(http.MethodPut, path, `{"items": [{"item_name": "Urea", "quantity": 2}], "labor_hours": 1}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.tasks.completion.Items)
	assert.Equal(t, "Urea", (*f.tasks.completion.Items)[0].ItemName)
}

func TestTaskRoutes(t *testing.T) {
	f := setupRouter(true)
	id := uuid.Must(uuid.NewV4()).String()

	w, _ := f.do(http.MethodGet, "/api/plantation/task/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(http.MethodPut, "/api/plantation/task/complete/"+id, `{"labor_hours": 1}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(http.MethodPost, "/api/plantation/tasks/manual", map[string]interface{}{
		"farm_id":   id,
		"task_name": "Repair fence",
		"due_date":  time.Now().UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = f.do(http.MethodPut, "/api/plantation/tasks/"+id, map[string]interface{}{
		"task_name": "Repair gate",
		"due_date":  time.Now().UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := f.do(http.MethodDelete, "/api/plantation/tasks/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Task deleted successfully", resp.Message)
}

func TestFarmRoutes(t *testing.T) {
	f := setupRouter(true)
	id := uuid.Must(uuid.NewV4()).String()

	w, _ := f.do(http.MethodGet, "/api/plantation/farms", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(http.MethodGet, "/api/plantation/farm/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(http.MethodPut, "/api/plantation/farm/"+id, `{"farm_name": "Renamed"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := f.do(http.MethodPost, "/api/plantation/farm/"+id+"/schedule", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data, 1)

	w, _ = f.do(http.MethodDelete, "/api/plantation/farm/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	f.plantation.err = &services.Error{Kind: services.ErrForbidden, Message: "You do not have access to this farm"}
	w, _ = f.do(http.MethodGet, "/api/plantation/farm/"+id, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSeasonRoutes(t *testing.T) {
	f := setupRouter(true)
	id := uuid.Must(uuid.NewV4()).String()

	w, _ := f.do(http.MethodPost, "/api/seasons", map[string]interface{}{
		"season_name": "Maha",
		"start_month": 10,
		"start_year":  2025,
		"end_month":   2,
		"end_year":    2026,
		"farm_id":     id,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = f.do(http.MethodGet, "/api/seasons", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(http.MethodGet, "/api/seasons/farm/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(http.MethodGet, "/api/seasons/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(http.MethodPut, "/api/seasons/"+id, `{"season_name": "Yala"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := f.do(http.MethodPut, "/api/seasons/"+id+"/end", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "season-end", resp.Data.(map[string]interface{})["status"])

	w, _ = f.do(http.MethodDelete, "/api/seasons/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	f.seasons.err = &services.Error{Kind: services.ErrNotFound, Message: "Season not found"}
	w, _ = f.do(http.MethodGet, "/api/seasons/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
