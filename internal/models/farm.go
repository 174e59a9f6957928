package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Farm struct {
	ID              uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID          uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	FarmName        string     `json:"farm_name" gorm:"size:255;not null"`
	DistrictID      *int       `json:"district_id"`
	SoilTypeID      *int       `json:"soil_type_id"`
	ChosenVarietyID *string    `json:"chosen_variety_id" gorm:"size:50"`
	FarmStartDate   *time.Time `json:"farm_start_date"`
	AreaHectares    *float64   `json:"area_hectares"`
	TotalVines      *int       `json:"total_vines"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	District *District `json:"district,omitempty" gorm:"foreignKey:DistrictID"`
	SoilType *SoilType `json:"soil_type,omitempty" gorm:"foreignKey:SoilTypeID"`
	Variety  *Variety  `json:"chosen_variety,omitempty" gorm:"foreignKey:ChosenVarietyID"`
}

func (f *Farm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		f.ID = id
	}
	return nil
}

// DistrictName returns the resolved district name, or "" when the farm has
// no district or it was not preloaded.
func (f *Farm) DistrictName() string {
	if f.District == nil {
		return ""
	}
	return f.District.Name
}

func (f *Farm) VarietyKey() string {
	if f.ChosenVarietyID == nil {
		return ""
	}
	return *f.ChosenVarietyID
}

// NormalizeStartDate keeps only the calendar date as seen in t's own
// location and re-anchors it at midnight UTC. Converting to UTC first would
// shift the day for callers east or west of Greenwich.
func NormalizeStartDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
