package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusScheduled TaskStatus = "Scheduled"
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusOverdue   TaskStatus = "Overdue"
)

type TaskPriority string

const (
	PriorityLow       TaskPriority = "Low"
	PriorityMedium    TaskPriority = "Medium"
	PriorityHigh      TaskPriority = "High"
	PriorityEmergency TaskPriority = "Emergency"
)

const (
	// WildcardVarietyKey marks templates and tasks that apply to every variety.
	WildcardVarietyKey = "ALL"
	DefaultTaskPhase   = "Maintenance"
	DefaultItemUnit    = "kg"
)

// ParsePriority accepts the four known priorities; an empty string means Medium.
func ParsePriority(s string) (TaskPriority, bool) {
	switch p := TaskPriority(s); p {
	case "":
		return PriorityMedium, true
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return p, true
	default:
		return "", false
	}
}

type InputItem struct {
	ItemName    string   `json:"item_name"`
	Quantity    float64  `json:"quantity"`
	UnitCostLKR *float64 `json:"unit_cost_lkr,omitempty"`
	Unit        string   `json:"unit"`
}

// CompletionRecord is stored as a JSON document on the task row.
type CompletionRecord struct {
	Items      []InputItem `json:"items"`
	LaborHours float64     `json:"labor_hours"`
	Notes      string      `json:"notes,omitempty"`
}

type Task struct {
	ID            uuid.UUID         `json:"id" gorm:"primaryKey;type:uuid"`
	FarmID        uuid.UUID         `json:"farm_id" gorm:"type:uuid;not null;index"`
	TaskName      string            `json:"task_name" gorm:"size:255;not null"`
	Phase         string            `json:"phase" gorm:"size:50"`
	TaskType      string            `json:"task_type" gorm:"size:50"`
	VarietyKey    string            `json:"variety_key" gorm:"size:50"`
	DueDate       time.Time         `json:"due_date" gorm:"not null;index"`
	Status        TaskStatus        `json:"status" gorm:"size:20;not null;index"`
	DateCompleted *time.Time        `json:"date_completed,omitempty"`
	InputDetails  *CompletionRecord `json:"input_details,omitempty" gorm:"serializer:json;type:text"`
	DetailedSteps []string          `json:"detailed_steps" gorm:"serializer:json;type:text"`
	ReasonWhy     string            `json:"reason_why" gorm:"type:text"`
	IsManual      bool              `json:"is_manual" gorm:"not null"`
	Priority      TaskPriority      `json:"priority" gorm:"size:20;not null"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		t.ID = id
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = TaskStatusScheduled
	}
	return nil
}

// AfterFind keeps collections non-nil so they serialize as [] rather than null.
func (t *Task) AfterFind(tx *gorm.DB) error {
	t.normalize()
	return nil
}

func (t *Task) normalize() {
	if t.DetailedSteps == nil {
		t.DetailedSteps = []string{}
	}
	if t.InputDetails != nil && t.InputDetails.Items == nil {
		t.InputDetails.Items = []InputItem{}
	}
}

// ProjectedStatus is the status a reader should observe at now: a Scheduled
// task whose due date has passed is Overdue.
func (t *Task) ProjectedStatus(now time.Time) TaskStatus {
	if t.Status == TaskStatusScheduled && t.DueDate.Before(now) {
		return TaskStatusOverdue
	}
	return t.Status
}

func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}
