package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"plantation-manager/backend/internal/models"
	"plantation-manager/backend/internal/monitoring"
)

const (
	irrigationTaskName = "Summer Irrigation Check"
	irrigationTaskType = "Irrigation"
	irrigationReason   = "Dry-zone districts face high evapotranspiration from March to May. " +
		"Regular irrigation checks prevent vine stress and yield loss."
	irrigationDay = 15
)

var irrigationSteps = []string{
	"Inspect soil moisture at 15–20cm depth.",
	"If soil is dry and no rain in last 5 days, schedule supplementary irrigation.",
	"Check mulch cover around vines and repair any gaps.",
}

var irrigationMonths = []time.Month{time.March, time.April, time.May}

var dryZoneDistricts = map[string]struct{}{
	"hambantota":   {},
	"anuradhapura": {},
	"polonnaruwa":  {},
	"kurunegala":   {},
	"monaragala":   {},
}

// IsDryZone reports whether a district gets the seasonal irrigation checks.
func IsDryZone(district string) bool {
	_, ok := dryZoneDistricts[strings.ToLower(strings.TrimSpace(district))]
	return ok
}

// FirstSeasonYear is the first calendar year whose March falls inside the
// farm's lifetime.
func FirstSeasonYear(start time.Time) int {
	if start.Month() <= time.March {
		return start.Year()
	}
	return start.Year() + 1
}

// DueDate places a template offset relative to the start date. An offset of
// zero is never back-dated before now.
func DueDate(start time.Time, offsetDays int, now time.Time) time.Time {
	if offsetDays == 0 {
		if now.After(start) {
			return now
		}
		return start
	}
	return start.AddDate(0, 0, offsetDays)
}

type GeneratorOption func(*ScheduleGenerator)

func WithClock(now func() time.Time) GeneratorOption {
	return func(g *ScheduleGenerator) { g.now = now }
}

func WithLogger(logger zerolog.Logger) GeneratorOption {
	return func(g *ScheduleGenerator) { g.logger = logger }
}

// ScheduleGenerator turns a farm's start date, variety and district into
// dated tasks and persists them one by one.
type ScheduleGenerator struct {
	catalog TemplateCatalog
	tasks   TaskCreator
	now     func() time.Time
	logger  zerolog.Logger
}

func NewScheduleGenerator(catalog TemplateCatalog, tasks TaskCreator, opts ...GeneratorOption) *ScheduleGenerator {
	g := &ScheduleGenerator{
		catalog: catalog,
		tasks:   tasks,
		now:     time.Now,
		logger:  log.With().Str("component", "schedule_generator").Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Plan builds the task batch for farm without persisting it. A farm with
// no start date yields an empty plan.
//
// FarmStartDate is expected to be midnight UTC already, as StartPlantation
// and UpdateFarm store it. Plan reads it back in UTC, since drivers may
// return the stored instant in the session's zone, and only drops any
// time of day.
func (g *ScheduleGenerator) Plan(ctx context.Context, farm *models.Farm) ([]models.Task, error) {
	logger := g.logger.With().Str("farm_id", farm.ID.String()).Logger()

	if farm.FarmStartDate == nil {
		logger.Warn().Msg("farm has no start date, nothing to schedule")
		return []models.Task{}, nil
	}
	start := models.NormalizeStartDate(farm.FarmStartDate.UTC())

	key := farm.VarietyKey()
	if key == "" {
		key = models.WildcardVarietyKey
	}

	templates, err := g.catalog.GetByVarietyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch templates for variety %q: %w", key, err)
	}
	logger.Info().Str("variety_key", key).Int("templates", len(templates)).Msg("templates resolved")
	if len(templates) == 0 {
		g.logCatalogContents(ctx, logger, key)
	}

	now := g.now().UTC()
	tasks := make([]models.Task, 0, len(templates)+len(irrigationMonths))
	for _, tpl := range templates {
		task := taskFromTemplate(farm.ID, tpl, start, now)
		logger.Debug().
			Str("template", tpl.TaskName).
			Int("offset_days", tpl.TimingDaysAfterStart).
			Time("due_date", task.DueDate).
			Msg("task planned")
		tasks = append(tasks, task)
	}

	if district := farm.DistrictName(); IsDryZone(district) {
		logger.Info().Str("district", district).Msg("dry-zone district, adding irrigation checks")
		tasks = append(tasks, irrigationTasks(farm.ID, start)...)
	}

	return tasks, nil
}

// Generate plans the farm's schedule and persists each task. A failed
// insert is logged and skipped; only a catalog failure is returned.
func (g *ScheduleGenerator) Generate(ctx context.Context, farm *models.Farm) ([]models.Task, error) {
	logger := g.logger.With().Str("farm_id", farm.ID.String()).Logger()

	planned, err := g.Plan(ctx, farm)
	if err != nil {
		monitoring.RecordScheduleFailure()
		return nil, err
	}
	if len(planned) == 0 {
		return planned, nil
	}

	created := make([]models.Task, 0, len(planned))
	for i := range planned {
		task := planned[i]
		if err := g.tasks.Create(ctx, &task); err != nil {
			event := logger.Error().Err(err).Str("task_name", task.TaskName).Time("due_date", task.DueDate)
			if inner := errors.Unwrap(err); inner != nil {
				event = event.AnErr("cause", inner)
			}
			event.Msg("failed to persist generated task")
			continue
		}
		created = append(created, task)
	}

	logger.Info().
		Int("created", len(created)).
		Int("total", len(planned)).
		Msgf("created %d/%d scheduled tasks", len(created), len(planned))
	monitoring.RecordScheduleRun(len(created), len(planned)-len(created))

	return created, nil
}

func (g *ScheduleGenerator) logCatalogContents(ctx context.Context, logger zerolog.Logger, key string) {
	logger.Warn().Str("variety_key", key).Msg("no templates matched, inspecting catalog")

	all, err := g.catalog.GetAll(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("could not list catalog templates")
		return
	}

	sample := make([]string, 0, 5)
	for _, tpl := range all {
		if len(sample) == cap(sample) {
			break
		}
		sample = append(sample, tpl.VarietyKey)
	}
	logger.Info().Int("total_templates", len(all)).Strs("sample_variety_keys", sample).Msg("catalog contents")
}

func taskFromTemplate(farmID uuid.UUID, tpl models.AgronomyTemplate, start, now time.Time) models.Task {
	steps := make([]string, len(tpl.DetailedSteps))
	copy(steps, tpl.DetailedSteps)

	return models.Task{
		FarmID:        farmID,
		TaskName:      tpl.TaskName,
		Phase:         tpl.Phase,
		TaskType:      tpl.TaskType,
		VarietyKey:    tpl.VarietyKey,
		DueDate:       DueDate(start, tpl.TimingDaysAfterStart, now),
		Status:        models.TaskStatusScheduled,
		DetailedSteps: steps,
		Priority:      models.PriorityMedium,
	}
}

func irrigationTasks(farmID uuid.UUID, start time.Time) []models.Task {
	year := FirstSeasonYear(start)

	tasks := make([]models.Task, 0, len(irrigationMonths))
	for _, month := range irrigationMonths {
		steps := make([]string, len(irrigationSteps))
		copy(steps, irrigationSteps)

		tasks = append(tasks, models.Task{
			FarmID:        farmID,
			TaskName:      irrigationTaskName,
			Phase:         models.DefaultTaskPhase,
			TaskType:      irrigationTaskType,
			VarietyKey:    models.WildcardVarietyKey,
			DueDate:       time.Date(year, month, irrigationDay, 0, 0, 0, 0, time.UTC),
			Status:        models.TaskStatusScheduled,
			DetailedSteps: steps,
			ReasonWhy:     irrigationReason,
			Priority:      models.PriorityMedium,
		})
	}
	return tasks
}
