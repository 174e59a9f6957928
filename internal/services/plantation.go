package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"plantation-manager/backend/internal/models"
)

const maxFarmNameLength = 200

type PlantationService interface {
	StartPlantation(ctx context.Context, userID uuid.UUID, input StartPlantationInput) (*models.Farm, error)
	ListFarms(ctx context.Context, userID uuid.UUID) ([]models.Farm, error)
	GetFarm(ctx context.Context, userID uuid.UUID, farmID string) (*models.Farm, error)
	UpdateFarm(ctx context.Context, userID uuid.UUID, farmID string, input UpdateFarmInput) (*models.Farm, error)
	DeleteFarm(ctx context.Context, userID uuid.UUID, farmID string) error
	RegenerateSchedule(ctx context.Context, userID uuid.UUID, farmID string) ([]models.Task, error)
}

// Scheduler is the generator as seen by the plantation service.
type Scheduler interface {
	Generate(ctx context.Context, farm *models.Farm) ([]models.Task, error)
}

type PlantationServiceImpl struct {
	farms     FarmStore
	tasks     TaskStore
	seasons   SeasonStore
	refs      ReferenceChecker
	scheduler Scheduler
}

func NewPlantationService(farms FarmStore, tasks TaskStore, seasons SeasonStore, refs ReferenceChecker, scheduler Scheduler) *PlantationServiceImpl {
	return &PlantationServiceImpl{
		farms:     farms,
		tasks:     tasks,
		seasons:   seasons,
		refs:      refs,
		scheduler: scheduler,
	}
}

func (s *PlantationServiceImpl) StartPlantation(ctx context.Context, userID uuid.UUID, input StartPlantationInput) (*models.Farm, error) {
	name := strings.TrimSpace(input.FarmName)
	if err := validateFarmName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ChosenVarietyID) == "" {
		return nil, validationError("Variety is required")
	}
	if input.FarmStartDate.IsZero() {
		return nil, validationError("Farm start date is required")
	}
	if input.AreaHectares <= 0 {
		return nil, validationError("Area must be greater than 0")
	}
	if input.TotalVines < 1 {
		return nil, validationError("Total vines must be at least 1")
	}
	if err := s.checkReferences(ctx, &input.DistrictID, &input.SoilTypeID, &input.ChosenVarietyID); err != nil {
		return nil, err
	}

	start := models.NormalizeStartDate(input.FarmStartDate)
	farm := &models.Farm{
		UserID:          userID,
		FarmName:        name,
		DistrictID:      &input.DistrictID,
		SoilTypeID:      &input.SoilTypeID,
		ChosenVarietyID: &input.ChosenVarietyID,
		FarmStartDate:   &start,
		AreaHectares:    &input.AreaHectares,
		TotalVines:      &input.TotalVines,
	}

	created, err := s.farms.Create(ctx, farm)
	if err != nil {
		return nil, fmt.Errorf("create farm: %w", err)
	}
	log.Info().Str("farm_id", created.ID.String()).Str("user_id", userID.String()).Msg("farm created")

	s.generateBestEffort(ctx, created)
	return created, nil
}

// generateBestEffort runs the scheduler without letting any failure,
// including a panic, reach the caller. The farm is already committed.
func (s *PlantationServiceImpl) generateBestEffort(ctx context.Context, farm *models.Farm) {
	logger := log.With().Str("farm_id", farm.ID.String()).Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("schedule generation panicked, farm was created")
		}
	}()

	tasks, err := s.scheduler.Generate(ctx, farm)
	if err != nil {
		logger.Error().Err(err).Msg("schedule generation failed, farm was created")
		return
	}
	logger.Info().Int("tasks", len(tasks)).Msg("schedule generated")
}

func (s *PlantationServiceImpl) ListFarms(ctx context.Context, userID uuid.UUID) ([]models.Farm, error) {
	farms, err := s.farms.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if farms == nil {
		farms = []models.Farm{}
	}
	return farms, nil
}

func (s *PlantationServiceImpl) GetFarm(ctx context.Context, userID uuid.UUID, farmID string) (*models.Farm, error) {
	id, err := parseID(farmID, "farm")
	if err != nil {
		return nil, err
	}
	return ownedFarm(ctx, s.farms, userID, id)
}

func (s *PlantationServiceImpl) UpdateFarm(ctx context.Context, userID uuid.UUID, farmID string, input UpdateFarmInput) (*models.Farm, error) {
	farm, err := s.GetFarm(ctx, userID, farmID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, input.DistrictID, input.SoilTypeID, input.ChosenVarietyID); err != nil {
		return nil, err
	}

	if input.FarmName != nil {
		name := strings.TrimSpace(*input.FarmName)
		if err := validateFarmName(name); err != nil {
			return nil, err
		}
		farm.FarmName = name
	}
	if input.DistrictID != nil {
		farm.DistrictID = input.DistrictID
	}
	if input.SoilTypeID != nil {
		farm.SoilTypeID = input.SoilTypeID
	}
	if input.ChosenVarietyID != nil && *input.ChosenVarietyID != "" {
		farm.ChosenVarietyID = input.ChosenVarietyID
	}
	if input.FarmStartDate != nil {
		start := models.NormalizeStartDate(*input.FarmStartDate)
		farm.FarmStartDate = &start
	}
	if input.AreaHectares != nil {
		if *input.AreaHectares <= 0 {
			return nil, validationError("Area must be greater than 0")
		}
		farm.AreaHectares = input.AreaHectares
	}
	if input.TotalVines != nil {
		if *input.TotalVines < 1 {
			return nil, validationError("Total vines must be at least 1")
		}
		farm.TotalVines = input.TotalVines
	}

	updated, err := s.farms.Update(ctx, farm)
	if err != nil {
		return nil, lookup(err, "Farm")
	}
	return updated, nil
}

// DeleteFarm removes the farm's tasks and seasons before the farm itself.
func (s *PlantationServiceImpl) DeleteFarm(ctx context.Context, userID uuid.UUID, farmID string) error {
	farm, err := s.GetFarm(ctx, userID, farmID)
	if err != nil {
		return err
	}

	if _, err := s.tasks.DeleteByFarmID(ctx, farm.ID); err != nil {
		return fmt.Errorf("delete tasks of farm %s: %w", farm.ID, err)
	}
	if err := s.seasons.DeleteByFarmID(ctx, farm.ID); err != nil {
		return fmt.Errorf("delete seasons of farm %s: %w", farm.ID, err)
	}

	deleted, err := s.farms.Delete(ctx, farm.ID)
	if err != nil {
		return fmt.Errorf("delete farm %s: %w", farm.ID, err)
	}
	if !deleted {
		return notFound("Farm")
	}
	log.Info().Str("farm_id", farm.ID.String()).Msg("farm deleted")
	return nil
}

func (s *PlantationServiceImpl) RegenerateSchedule(ctx context.Context, userID uuid.UUID, farmID string) ([]models.Task, error) {
	farm, err := s.GetFarm(ctx, userID, farmID)
	if err != nil {
		return nil, err
	}
	return s.regenerate(ctx, farm)
}

// RegenerateFarm is RegenerateSchedule without the ownership check, for
// background jobs and operator tooling.
func (s *PlantationServiceImpl) RegenerateFarm(ctx context.Context, farmID uuid.UUID) ([]models.Task, error) {
	farm, err := s.farms.GetByID(ctx, farmID)
	if err != nil {
		return nil, lookup(err, "Farm")
	}
	return s.regenerate(ctx, farm)
}

// regenerate drops pending generated tasks and plans again. Manual and
// completed tasks are kept.
func (s *PlantationServiceImpl) regenerate(ctx context.Context, farm *models.Farm) ([]models.Task, error) {
	removed, err := s.tasks.DeletePendingGenerated(ctx, farm.ID)
	if err != nil {
		return nil, fmt.Errorf("clear generated tasks: %w", err)
	}
	log.Info().Str("farm_id", farm.ID.String()).Int64("removed", removed).Msg("regenerating schedule")

	tasks, err := s.scheduler.Generate(ctx, farm)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func validateFarmName(name string) error {
	if name == "" {
		return validationError("Farm name is required")
	}
	if len(name) > maxFarmNameLength {
		return validationError("Farm name must be at most %d characters", maxFarmNameLength)
	}
	return nil
}

// checkReferences verifies each non-nil foreign key exists.
func (s *PlantationServiceImpl) checkReferences(ctx context.Context, districtID, soilTypeID *int, varietyID *string) error {
	if districtID != nil {
		ok, err := s.refs.DistrictExists(ctx, *districtID)
		if err != nil {
			return err
		}
		if !ok {
			return validationError("District with ID %d does not exist", *districtID)
		}
	}
	if soilTypeID != nil {
		ok, err := s.refs.SoilTypeExists(ctx, *soilTypeID)
		if err != nil {
			return err
		}
		if !ok {
			return validationError("Soil type with ID %d does not exist", *soilTypeID)
		}
	}
	if varietyID != nil && *varietyID != "" {
		ok, err := s.refs.VarietyExists(ctx, *varietyID)
		if err != nil {
			return err
		}
		if !ok {
			return validationError("Variety with ID %s does not exist", *varietyID)
		}
	}
	return nil
}
