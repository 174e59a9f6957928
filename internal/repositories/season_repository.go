package repositories

import (
	"context"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"plantation-manager/backend/internal/models"
)

type SeasonRepository struct {
	db *gorm.DB
}

func NewSeasonRepository(db *gorm.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) Create(ctx context.Context, season *models.HarvestSeason) error {
	return r.db.WithContext(ctx).Create(season).Error
}

func (r *SeasonRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.HarvestSeason, error) {
	var season models.HarvestSeason
	if err := r.db.WithContext(ctx).First(&season, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &season, nil
}

func (r *SeasonRepository) GetByFarmID(ctx context.Context, farmID uuid.UUID) ([]models.HarvestSeason, error) {
	var seasons []models.HarvestSeason
	err := r.db.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("start_year DESC, start_month DESC").
		Find(&seasons).Error
	return seasons, err
}

func (r *SeasonRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.HarvestSeason, error) {
	var seasons []models.HarvestSeason
	err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("start_year DESC, start_month DESC").
		Find(&seasons).Error
	return seasons, err
}

func (r *SeasonRepository) Update(ctx context.Context, season *models.HarvestSeason) error {
	result := r.db.WithContext(ctx).
		Model(&models.HarvestSeason{ID: season.ID}).
		Select("SeasonName", "StartMonth", "StartYear", "EndMonth", "EndYear", "FarmID", "TotalHarvestedYield", "Status").
		Updates(season)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SeasonRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.HarvestSeason{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByFarmID removes a farm's seasons along with the farm.
func (r *SeasonRepository) DeleteByFarmID(ctx context.Context, farmID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.HarvestSeason{}, "farm_id = ?", farmID).Error
}
