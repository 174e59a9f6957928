package repositories

import (
	"context"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plantation-manager/backend/internal/models"
)

type FarmRepository struct {
	db *gorm.DB
}

func NewFarmRepository(db *gorm.DB) *FarmRepository {
	return &FarmRepository{db: db}
}

func (r *FarmRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("District").Preload("SoilType").Preload("Variety")
}

func (r *FarmRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Farm, error) {
	var farm models.Farm
	if err := r.withRefs(ctx).First(&farm, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &farm, nil
}

func (r *FarmRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Farm, error) {
	var farms []models.Farm
	err := r.withRefs(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&farms).Error
	if err != nil {
		return nil, err
	}
	return farms, nil
}

// ListIDs returns every farm id; used by operator tooling.
func (r *FarmRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Farm{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Create inserts the farm and reloads it so the reference names are resolved.
func (r *FarmRepository) Create(ctx context.Context, farm *models.Farm) (*models.Farm, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(farm).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, farm.ID)
}

func (r *FarmRepository) Update(ctx context.Context, farm *models.Farm) (*models.Farm, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Farm{ID: farm.ID}).
		Select("FarmName", "DistrictID", "SoilTypeID", "ChosenVarietyID", "FarmStartDate", "AreaHectares", "TotalVines").
		Omit(clause.Associations).
		Updates(farm)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, farm.ID)
}

func (r *FarmRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Farm{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
