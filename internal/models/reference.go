package models

type District struct {
	ID   int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name" gorm:"size:100;not null;uniqueIndex"`
}

type SoilType struct {
	ID   int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name" gorm:"size:100;not null"`
}

type Variety struct {
	ID   string `json:"id" gorm:"primaryKey;size:50"`
	Name string `json:"name" gorm:"size:100;not null"`
}

// AgronomyTemplate is a catalog row. TimingDaysAfterStart is signed:
// negative offsets are preparation work before planting.
type AgronomyTemplate struct {
	ID                   uint     `json:"id" gorm:"primaryKey"`
	TaskName             string   `json:"task_name" gorm:"size:255;not null"`
	Phase                string   `json:"phase" gorm:"size:50"`
	TaskType             string   `json:"task_type" gorm:"size:50"`
	VarietyKey           string   `json:"variety_key" gorm:"size:50;not null;index"`
	TimingDaysAfterStart int      `json:"timing_days_after_start"`
	DetailedSteps        []string `json:"detailed_steps" gorm:"serializer:json;type:text"`
}
