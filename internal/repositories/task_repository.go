package repositories

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"plantation-manager/backend/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) GetByFarmID(ctx context.Context, farmID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// Update overwrites every mutable column of the task identified by id.
func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, task *models.Task) (*models.Task, error) {
	var existing models.Task
	if err := r.db.WithContext(ctx).Select("id").First(&existing, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}

	err := r.db.WithContext(ctx).
		Model(&existing).
		Select("*").
		Omit("ID", "FarmID", "CreatedAt").
		Updates(task).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// MarkOverdue flips the given tasks to Overdue. Only rows still Scheduled
// are touched so a concurrent completion is never overwritten.
func (r *TaskRepository) MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id IN ? AND status = ?", ids, models.TaskStatusScheduled).
		Update("status", models.TaskStatusOverdue)
	return result.RowsAffected, result.Error
}

// ScheduledDueBefore lists Scheduled tasks whose due date precedes cutoff.
// On sqlite the comparison runs in Go because timestamps are stored as text
// with mixed offsets.
func (r *TaskRepository) ScheduledDueBefore(ctx context.Context, cutoff time.Time) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Where("status = ?", models.TaskStatusScheduled)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Where("due_date < ?", cutoff)
	}

	var scheduled []models.Task
	if err := query.Find(&scheduled).Error; err != nil {
		return nil, err
	}

	due := scheduled[:0]
	for _, t := range scheduled {
		if t.DueDate.Before(cutoff) {
			due = append(due, t)
		}
	}
	return due, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByFarmID reports true on success even when the farm had no tasks.
func (r *TaskRepository) DeleteByFarmID(ctx context.Context, farmID uuid.UUID) (bool, error) {
	if err := r.db.WithContext(ctx).Delete(&models.Task{}, "farm_id = ?", farmID).Error; err != nil {
		return false, err
	}
	return true, nil
}

// DeletePendingGenerated removes template-derived tasks that have not been
// completed, leaving manual tasks and completion history in place.
func (r *TaskRepository) DeletePendingGenerated(ctx context.Context, farmID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("farm_id = ? AND is_manual = ? AND status <> ?", farmID, false, models.TaskStatusCompleted).
		Delete(&models.Task{})
	return result.RowsAffected, result.Error
}
