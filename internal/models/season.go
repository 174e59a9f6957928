package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	SeasonStatusStarted = "season-start"
	SeasonStatusEnded   = "season-end"
)

type HarvestSeason struct {
	ID                  uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	SeasonName          string    `json:"season_name" gorm:"size:100;not null"`
	StartMonth          int       `json:"start_month"`
	StartYear           int       `json:"start_year"`
	EndMonth            int       `json:"end_month"`
	EndYear             int       `json:"end_year"`
	FarmID              uuid.UUID `json:"farm_id" gorm:"type:uuid;not null;index"`
	TotalHarvestedYield float64   `json:"total_harvested_yield"`
	Status              string    `json:"status" gorm:"size:50;not null"`
	CreatedBy           uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (s *HarvestSeason) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		s.ID = id
	}
	if s.Status == "" {
		s.Status = SeasonStatusStarted
	}
	return nil
}
