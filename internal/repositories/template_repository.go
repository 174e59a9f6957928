package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plantation-manager/backend/internal/models"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// GetByVarietyKey returns templates for key plus the wildcard rows. An empty
// key yields wildcard rows only.
func (r *TemplateRepository) GetByVarietyKey(ctx context.Context, key string) ([]models.AgronomyTemplate, error) {
	keys := []string{models.WildcardVarietyKey}
	if key != "" && key != models.WildcardVarietyKey {
		keys = append(keys, key)
	}

	var templates []models.AgronomyTemplate
	err := r.db.WithContext(ctx).
		Where("variety_key IN ?", keys).
		Order("timing_days_after_start ASC, id ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *TemplateRepository) GetAll(ctx context.Context) ([]models.AgronomyTemplate, error) {
	var templates []models.AgronomyTemplate
	if err := r.db.WithContext(ctx).Order("variety_key, timing_days_after_start, id").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Replace swaps the whole catalog in one transaction.
func (r *TemplateRepository) Replace(ctx context.Context, templates []models.AgronomyTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.AgronomyTemplate{}).Error; err != nil {
			return err
		}
		if len(templates) == 0 {
			return nil
		}
		for i := range templates {
			templates[i].ID = 0
		}
		return tx.CreateInBatches(templates, 100).Error
	})
}

type ReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) exists(ctx context.Context, model interface{}, id interface{}) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ReferenceRepository) DistrictExists(ctx context.Context, id int) (bool, error) {
	return r.exists(ctx, &models.District{}, id)
}

func (r *ReferenceRepository) SoilTypeExists(ctx context.Context, id int) (bool, error) {
	return r.exists(ctx, &models.SoilType{}, id)
}

func (r *ReferenceRepository) VarietyExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, &models.Variety{}, id)
}

func (r *ReferenceRepository) Districts(ctx context.Context) ([]models.District, error) {
	var out []models.District
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReferenceRepository) SoilTypes(ctx context.Context) ([]models.SoilType, error) {
	var out []models.SoilType
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReferenceRepository) Varieties(ctx context.Context) ([]models.Variety, error) {
	var out []models.Variety
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts or renames reference rows by primary key.
func (r *ReferenceRepository) Upsert(ctx context.Context, districts []models.District, soils []models.SoilType, varieties []models.Variety) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		onConflict := clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}
		if len(districts) > 0 {
			if err := tx.Clauses(onConflict).Create(&districts).Error; err != nil {
				return err
			}
		}
		if len(soils) > 0 {
			if err := tx.Clauses(onConflict).Create(&soils).Error; err != nil {
				return err
			}
		}
		if len(varieties) > 0 {
			if err := tx.Clauses(onConflict).Create(&varieties).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
