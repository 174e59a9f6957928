package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"plantation-manager/backend/internal/models"
	"plantation-manager/backend/internal/monitoring"
)

type TaskService interface {
	ListTasks(ctx context.Context, userID uuid.UUID, farmID string) ([]models.Task, error)
	GetTask(ctx context.Context, userID uuid.UUID, taskID string) (*models.Task, error)
	CreateManualTask(ctx context.Context, userID uuid.UUID, input ManualTaskInput) (*models.Task, error)
	CompleteTask(ctx context.Context, userID uuid.UUID, taskID string, input CompleteTaskInput) (*models.Task, error)
	UpdateCompletionDetails(ctx context.Context, userID uuid.UUID, taskID string, input CompletionDetailsInput) (*models.Task, error)
	UpdateTaskDetails(ctx context.Context, userID uuid.UUID, taskID string, input UpdateTaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, userID uuid.UUID, taskID string) error
	SweepOverdue(ctx context.Context) (int64, error)
}

type TaskServiceImpl struct {
	tasks TaskStore
	farms FarmStore
	now   func() time.Time
}

func NewTaskService(tasks TaskStore, farms FarmStore) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks, farms: farms, now: time.Now}
}

// ownedFarm loads a farm and checks that userID owns it.
func ownedFarm(ctx context.Context, farms FarmStore, userID, farmID uuid.UUID) (*models.Farm, error) {
	farm, err := farms.GetByID(ctx, farmID)
	if err != nil {
		return nil, lookup(err, "Farm")
	}
	if farm.UserID != userID {
		return nil, forbidden("farm")
	}
	return farm, nil
}

func (s *TaskServiceImpl) ownedTask(ctx context.Context, userID uuid.UUID, rawID string) (*models.Task, error) {
	id, err := parseID(rawID, "task")
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Task")
	}
	if _, err := ownedFarm(ctx, s.farms, userID, task.FarmID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("Task")
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, userID uuid.UUID, farmID string) ([]models.Task, error) {
	id, err := parseID(farmID, "farm")
	if err != nil {
		return nil, err
	}
	if _, err := ownedFarm(ctx, s.farms, userID, id); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.GetByFarmID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	s.promoteOverdue(ctx, tasks)
	return tasks, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, userID uuid.UUID, taskID string) (*models.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return s.promoteOne(ctx, task), nil
}

// promoteOne applies overdue promotion to a single task about to be returned.
func (s *TaskServiceImpl) promoteOne(ctx context.Context, task *models.Task) *models.Task {
	tasks := []models.Task{*task}
	s.promoteOverdue(ctx, tasks)
	return &tasks[0]
}

// promoteOverdue flips past-due Scheduled tasks to Overdue in place and
// persists the change. A failed write still leaves the projected status.
func (s *TaskServiceImpl) promoteOverdue(ctx context.Context, tasks []models.Task) {
	now := s.now().UTC()

	var ids []uuid.UUID
	for i := range tasks {
		if projected := tasks[i].ProjectedStatus(now); projected != tasks[i].Status {
			tasks[i].Status = projected
			ids = append(ids, tasks[i].ID)
		}
	}
	if len(ids) == 0 {
		return
	}

	n, err := s.tasks.MarkOverdue(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Int("tasks", len(ids)).Msg("failed to persist overdue promotion")
		return
	}
	monitoring.RecordOverduePromotions(n)
}

// SweepOverdue promotes every past-due Scheduled task, independent of reads.
func (s *TaskServiceImpl) SweepOverdue(ctx context.Context) (int64, error) {
	stale, err := s.tasks.ScheduledDueBefore(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(stale))
	for _, task := range stale {
		ids = append(ids, task.ID)
	}
	n, err := s.tasks.MarkOverdue(ctx, ids)
	if err != nil {
		return 0, err
	}
	monitoring.RecordOverduePromotions(n)
	log.Info().Int64("promoted", n).Msg("overdue sweep finished")
	return n, nil
}

func (s *TaskServiceImpl) CreateManualTask(ctx context.Context, userID uuid.UUID, input ManualTaskInput) (*models.Task, error) {
	farmID, err := parseID(input.FarmID, "farm")
	if err != nil {
		return nil, err
	}
	if _, err := ownedFarm(ctx, s.farms, userID, farmID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.TaskName)
	if name == "" {
		return nil, validationError("Task name is required")
	}
	if input.DueDate.IsZero() {
		return nil, validationError("Due date is required")
	}
	priority, ok := models.ParsePriority(input.Priority)
	if !ok {
		return nil, validationError("Priority must be one of Low, Medium, High, Emergency")
	}

	phase := input.Phase
	if phase == "" {
		phase = models.DefaultTaskPhase
	}
	steps := input.DetailedSteps
	if steps == nil {
		steps = []string{}
	}

	task := &models.Task{
		FarmID:        farmID,
		TaskName:      name,
		Phase:         phase,
		TaskType:      input.TaskType,
		VarietyKey:    models.WildcardVarietyKey,
		DueDate:       input.DueDate.UTC(),
		Status:        models.TaskStatusScheduled,
		DetailedSteps: steps,
		ReasonWhy:     input.ReasonWhy,
		IsManual:      true,
		Priority:      priority,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return s.promoteOne(ctx, task), nil
}

func (s *TaskServiceImpl) CompleteTask(ctx context.Context, userID uuid.UUID, taskID string, input CompleteTaskInput) (*models.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsCompleted() {
		return nil, stateError("Task is already completed. Use update completion details instead.")
	}

	completedAt := s.now().UTC()
	task.Status = models.TaskStatusCompleted
	task.DateCompleted = &completedAt
	task.InputDetails = &models.CompletionRecord{
		Items:      toInputItems(input.Items),
		LaborHours: input.LaborHours,
		Notes:      input.Notes,
	}

	updated, err := s.tasks.Update(ctx, task.ID, task)
	if err != nil {
		return nil, lookup(err, "Task")
	}
	monitoring.RecordTaskCompleted()
	return updated, nil
}

func (s *TaskServiceImpl) UpdateCompletionDetails(ctx context.Context, userID uuid.UUID, taskID string, input CompletionDetailsInput) (*models.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsCompleted() {
		return nil, stateError("Task must be completed before updating completion details")
	}

	items := []models.InputItem{}
	if task.InputDetails != nil && task.InputDetails.Items != nil {
		items = task.InputDetails.Items
	}
	if input.Items != nil {
		items = toInputItems(*input.Items)
	}

	task.InputDetails = &models.CompletionRecord{
		Items:      items,
		LaborHours: input.LaborHours,
		Notes:      input.Notes,
	}

	updated, err := s.tasks.Update(ctx, task.ID, task)
	if err != nil {
		return nil, lookup(err, "Task")
	}
	return updated, nil
}

// checkEditable rejects generated and completed tasks.
func checkEditable(task *models.Task, action string) error {
	if !task.IsManual {
		return stateError("Only manual tasks can be %s", action)
	}
	if task.IsCompleted() {
		return stateError("Completed tasks cannot be %s", action)
	}
	return nil
}

func (s *TaskServiceImpl) UpdateTaskDetails(ctx context.Context, userID uuid.UUID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := checkEditable(task, "updated"); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.TaskName)
	if name == "" {
		return nil, validationError("Task name is required")
	}
	if input.DueDate.IsZero() {
		return nil, validationError("Due date is required")
	}

	task.TaskName = name
	task.DueDate = input.DueDate.UTC()
	if input.Priority != "" {
		priority, ok := models.ParsePriority(input.Priority)
		if !ok {
			return nil, validationError("Priority must be one of Low, Medium, High, Emergency")
		}
		task.Priority = priority
	}
	if input.Phase != nil {
		task.Phase = *input.Phase
	}
	if input.TaskType != nil {
		task.TaskType = *input.TaskType
	}
	if input.DetailedSteps != nil {
		task.DetailedSteps = input.DetailedSteps
	}
	if input.ReasonWhy != nil {
		task.ReasonWhy = *input.ReasonWhy
	}

	updated, err := s.tasks.Update(ctx, task.ID, task)
	if err != nil {
		return nil, lookup(err, "Task")
	}
	return s.promoteOne(ctx, updated), nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, userID uuid.UUID, taskID string) error {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if err := checkEditable(task, "deleted"); err != nil {
		return err
	}

	deleted, err := s.tasks.Delete(ctx, task.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("Task")
	}
	return nil
}
