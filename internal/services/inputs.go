package services

import (
	"time"

	"plantation-manager/backend/internal/models"
)

type StartPlantationInput struct {
	FarmName        string    `json:"farm_name" binding:"required"`
	DistrictID      int       `json:"district_id" binding:"required"`
	SoilTypeID      int       `json:"soil_type_id" binding:"required"`
	ChosenVarietyID string    `json:"chosen_variety_id" binding:"required"`
	FarmStartDate   time.Time `json:"farm_start_date" binding:"required"`
	AreaHectares    float64   `json:"area_hectares" binding:"required"`
	TotalVines      int       `json:"total_vines" binding:"required"`
}

// UpdateFarmInput is a partial update; nil fields are left alone.
type UpdateFarmInput struct {
	FarmName        *string    `json:"farm_name"`
	DistrictID      *int       `json:"district_id"`
	SoilTypeID      *int       `json:"soil_type_id"`
	ChosenVarietyID *string    `json:"chosen_variety_id"`
	FarmStartDate   *time.Time `json:"farm_start_date"`
	AreaHectares    *float64   `json:"area_hectares"`
	TotalVines      *int       `json:"total_vines"`
}

type ItemInput struct {
	ItemName    string   `json:"item_name"`
	Quantity    float64  `json:"quantity"`
	UnitCostLKR *float64 `json:"unit_cost_lkr"`
	Unit        string   `json:"unit"`
}

type CompleteTaskInput struct {
	Items      []ItemInput `json:"items"`
	LaborHours float64     `json:"labor_hours"`
	Notes      string      `json:"notes"`
}

// CompletionDetailsInput distinguishes an omitted items list (nil pointer,
// keep stored items) from an explicit one, including [].
type CompletionDetailsInput struct {
	Items      *[]ItemInput `json:"items"`
	LaborHours float64      `json:"labor_hours"`
	Notes      string       `json:"notes"`
}

type ManualTaskInput struct {
	FarmID        string    `json:"farm_id" binding:"required"`
	TaskName      string    `json:"task_name" binding:"required"`
	Phase         string    `json:"phase"`
	TaskType      string    `json:"task_type"`
	DueDate       time.Time `json:"due_date" binding:"required"`
	DetailedSteps []string  `json:"detailed_steps"`
	ReasonWhy     string    `json:"reason_why"`
	Priority      string    `json:"priority"`
}

type UpdateTaskInput struct {
	TaskName      string    `json:"task_name" binding:"required"`
	Phase         *string   `json:"phase"`
	TaskType      *string   `json:"task_type"`
	DueDate       time.Time `json:"due_date" binding:"required"`
	DetailedSteps []string  `json:"detailed_steps"`
	ReasonWhy     *string   `json:"reason_why"`
	Priority      string    `json:"priority"`
}

type SeasonInput struct {
	SeasonName          string  `json:"season_name" binding:"required"`
	StartMonth          int     `json:"start_month" binding:"required"`
	StartYear           int     `json:"start_year" binding:"required"`
	EndMonth            int     `json:"end_month" binding:"required"`
	EndYear             int     `json:"end_year" binding:"required"`
	FarmID              string  `json:"farm_id" binding:"required"`
	TotalHarvestedYield float64 `json:"total_harvested_yield"`
}

// UpdateSeasonInput is a partial update; nil fields are left alone.
type UpdateSeasonInput struct {
	SeasonName          *string  `json:"season_name"`
	StartMonth          *int     `json:"start_month"`
	StartYear           *int     `json:"start_year"`
	EndMonth            *int     `json:"end_month"`
	EndYear             *int     `json:"end_year"`
	FarmID              *string  `json:"farm_id"`
	TotalHarvestedYield *float64 `json:"total_harvested_yield"`
}

// toInputItems copies request items, defaulting the unit. The result is
// never nil.
func toInputItems(items []ItemInput) []models.InputItem {
	out := make([]models.InputItem, 0, len(items))
	for _, item := range items {
		unit := item.Unit
		if unit == "" {
			unit = models.DefaultItemUnit
		}
		out = append(out, models.InputItem{
			ItemName:    item.ItemName,
			Quantity:    item.Quantity,
			UnitCostLKR: item.UnitCostLKR,
			Unit:        unit,
		})
	}
	return out
}
