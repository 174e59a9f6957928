package services

import (
	"context"
	"time"

	"github.com/gofrs/uuid"

	"plantation-manager/backend/internal/models"
)

// TemplateCatalog supplies agronomy templates. GetByVarietyKey returns
// templates for the key plus the wildcard ones.
type TemplateCatalog interface {
	GetByVarietyKey(ctx context.Context, key string) ([]models.AgronomyTemplate, error)
	GetAll(ctx context.Context) ([]models.AgronomyTemplate, error)
}

// TaskCreator is the slice of the task store the generator needs.
type TaskCreator interface {
	Create(ctx context.Context, task *models.Task) error
}

type TaskStore interface {
	TaskCreator
	GetByFarmID(ctx context.Context, farmID uuid.UUID) ([]models.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByFarmID(ctx context.Context, farmID uuid.UUID) (bool, error)
	DeletePendingGenerated(ctx context.Context, farmID uuid.UUID) (int64, error)
	MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error)
	ScheduledDueBefore(ctx context.Context, cutoff time.Time) ([]models.Task, error)
}

type FarmStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Farm, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Farm, error)
	Create(ctx context.Context, farm *models.Farm) (*models.Farm, error)
	Update(ctx context.Context, farm *models.Farm) (*models.Farm, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type SeasonStore interface {
	Create(ctx context.Context, season *models.HarvestSeason) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.HarvestSeason, error)
	GetByFarmID(ctx context.Context, farmID uuid.UUID) ([]models.HarvestSeason, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.HarvestSeason, error)
	Update(ctx context.Context, season *models.HarvestSeason) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByFarmID(ctx context.Context, farmID uuid.UUID) error
}

// ReferenceChecker validates the foreign keys a farm points at.
type ReferenceChecker interface {
	DistrictExists(ctx context.Context, id int) (bool, error)
	SoilTypeExists(ctx context.Context, id int) (bool, error)
	VarietyExists(ctx context.Context, id string) (bool, error)
}
