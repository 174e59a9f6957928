package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"

	"plantation-manager/backend/internal/models"
)

const (
	minSeasonYear       = 2000
	maxSeasonYear       = 2100
	maxSeasonNameLength = 100
)

type SeasonService interface {
	CreateSeason(ctx context.Context, userID uuid.UUID, input SeasonInput) (*models.HarvestSeason, error)
	ListSeasons(ctx context.Context, userID uuid.UUID) ([]models.HarvestSeason, error)
	ListSeasonsByFarm(ctx context.Context, userID uuid.UUID, farmID string) ([]models.HarvestSeason, error)
	GetSeason(ctx context.Context, userID uuid.UUID, seasonID string) (*models.HarvestSeason, error)
	UpdateSeason(ctx context.Context, userID uuid.UUID, seasonID string, input UpdateSeasonInput) (*models.HarvestSeason, error)
	EndSeason(ctx context.Context, userID uuid.UUID, seasonID string) (*models.HarvestSeason, error)
	DeleteSeason(ctx context.Context, userID uuid.UUID, seasonID string) error
}

type SeasonServiceImpl struct {
	seasons SeasonStore
	farms   FarmStore
}

func NewSeasonService(seasons SeasonStore, farms FarmStore) *SeasonServiceImpl {
	return &SeasonServiceImpl{seasons: seasons, farms: farms}
}

func validateSeason(season *models.HarvestSeason) error {
	if season.SeasonName == "" || len(season.SeasonName) > maxSeasonNameLength {
		return validationError("Season name must be between 1 and %d characters", maxSeasonNameLength)
	}
	for _, month := range []int{season.StartMonth, season.EndMonth} {
		if month < 1 || month > 12 {
			return validationError("Month must be between 1 and 12")
		}
	}
	for _, year := range []int{season.StartYear, season.EndYear} {
		if year < minSeasonYear || year > maxSeasonYear {
			return validationError("Year must be between %d and %d", minSeasonYear, maxSeasonYear)
		}
	}
	if season.EndYear*12+season.EndMonth < season.StartYear*12+season.StartMonth {
		return validationError("Season cannot end before it starts")
	}
	if season.TotalHarvestedYield < 0 {
		return validationError("Harvested yield cannot be negative")
	}
	return nil
}

func (s *SeasonServiceImpl) ownedSeason(ctx context.Context, userID uuid.UUID, rawID string) (*models.HarvestSeason, error) {
	id, err := parseID(rawID, "season")
	if err != nil {
		return nil, err
	}
	season, err := s.seasons.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Season")
	}
	if season.CreatedBy != userID {
		return nil, forbidden("season")
	}
	return season, nil
}

func (s *SeasonServiceImpl) CreateSeason(ctx context.Context, userID uuid.UUID, input SeasonInput) (*models.HarvestSeason, error) {
	farmID, err := parseID(input.FarmID, "farm")
	if err != nil {
		return nil, err
	}

	season := &models.HarvestSeason{
		SeasonName:          strings.TrimSpace(input.SeasonName),
		StartMonth:          input.StartMonth,
		StartYear:           input.StartYear,
		EndMonth:            input.EndMonth,
		EndYear:             input.EndYear,
		FarmID:              farmID,
		TotalHarvestedYield: input.TotalHarvestedYield,
		Status:              models.SeasonStatusStarted,
		CreatedBy:           userID,
	}
	if err := validateSeason(season); err != nil {
		return nil, err
	}
	if _, err := ownedFarm(ctx, s.farms, userID, farmID); err != nil {
		return nil, err
	}

	if err := s.seasons.Create(ctx, season); err != nil {
		return nil, fmt.Errorf("create season: %w", err)
	}
	return season, nil
}

func (s *SeasonServiceImpl) ListSeasons(ctx context.Context, userID uuid.UUID) ([]models.HarvestSeason, error) {
	seasons, err := s.seasons.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if seasons == nil {
		seasons = []models.HarvestSeason{}
	}
	return seasons, nil
}

func (s *SeasonServiceImpl) ListSeasonsByFarm(ctx context.Context, userID uuid.UUID, farmID string) ([]models.HarvestSeason, error) {
	id, err := parseID(farmID, "farm")
	if err != nil {
		return nil, err
	}
	if _, err := ownedFarm(ctx, s.farms, userID, id); err != nil {
		return nil, err
	}

	seasons, err := s.seasons.GetByFarmID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seasons == nil {
		seasons = []models.HarvestSeason{}
	}
	return seasons, nil
}

func (s *SeasonServiceImpl) GetSeason(ctx context.Context, userID uuid.UUID, seasonID string) (*models.HarvestSeason, error) {
	return s.ownedSeason(ctx, userID, seasonID)
}

func (s *SeasonServiceImpl) UpdateSeason(ctx context.Context, userID uuid.UUID, seasonID string, input UpdateSeasonInput) (*models.HarvestSeason, error) {
	season, err := s.ownedSeason(ctx, userID, seasonID)
	if err != nil {
		return nil, err
	}

	if input.SeasonName != nil {
		season.SeasonName = strings.TrimSpace(*input.SeasonName)
	}
	if input.StartMonth != nil {
		season.StartMonth = *input.StartMonth
	}
	if input.StartYear != nil {
		season.StartYear = *input.StartYear
	}
	if input.EndMonth != nil {
		season.EndMonth = *input.EndMonth
	}
	if input.EndYear != nil {
		season.EndYear = *input.EndYear
	}
	if input.TotalHarvestedYield != nil {
		season.TotalHarvestedYield = *input.TotalHarvestedYield
	}
	if input.FarmID != nil && *input.FarmID != "" {
		farmID, err := parseID(*input.FarmID, "farm")
		if err != nil {
			return nil, err
		}
		if _, err := ownedFarm(ctx, s.farms, userID, farmID); err != nil {
			return nil, err
		}
		season.FarmID = farmID
	}
	if err := validateSeason(season); err != nil {
		return nil, err
	}

	if err := s.seasons.Update(ctx, season); err != nil {
		return nil, lookup(err, "Season")
	}
	return season, nil
}

// EndSeason marks the season finished. Ending an ended season is a no-op.
func (s *SeasonServiceImpl) EndSeason(ctx context.Context, userID uuid.UUID, seasonID string) (*models.HarvestSeason, error) {
	season, err := s.ownedSeason(ctx, userID, seasonID)
	if err != nil {
		return nil, err
	}
	if season.Status == models.SeasonStatusEnded {
		return season, nil
	}

	season.Status = models.SeasonStatusEnded
	if err := s.seasons.Update(ctx, season); err != nil {
		return nil, lookup(err, "Season")
	}
	return season, nil
}

func (s *SeasonServiceImpl) DeleteSeason(ctx context.Context, userID uuid.UUID, seasonID string) error {
	season, err := s.ownedSeason(ctx, userID, seasonID)
	if err != nil {
		return err
	}
	deleted, err := s.seasons.Delete(ctx, season.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("Season")
	}
	return nil
}
