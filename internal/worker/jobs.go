package worker

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"plantation-manager/backend/internal/models"
)

type OverdueSweeper interface {
	SweepOverdue(ctx context.Context) (int64, error)
}

type FarmRegenerator interface {
	RegenerateFarm(ctx context.Context, farmID uuid.UUID) ([]models.Task, error)
}

// RegisterJobs binds the plantation job types to their services.
func RegisterJobs(w *Worker, sweeper OverdueSweeper, regen FarmRegenerator) {
	w.RegisterHandler(JobTypeOverdueSweep, func(ctx context.Context, job *Job) error {
		n, err := sweeper.SweepOverdue(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int64("promoted", n).Msg("overdue sweep finished")
		}
		return nil
	})

	w.RegisterHandler(JobTypeScheduleGeneration, func(ctx context.Context, job *Job) error {
		raw, _ := job.Payload["farm_id"].(string)
		farmID, err := uuid.FromString(raw)
		if err != nil {
			return fmt.Errorf("schedule_generation: bad farm_id %q: %w", raw, err)
		}
		tasks, err := regen.RegenerateFarm(ctx, farmID)
		if err != nil {
			return err
		}
		log.Info().Str("farm_id", farmID.String()).Int("tasks", len(tasks)).Msg("schedule regenerated")
		return nil
	})
}

// EnqueueScheduleGeneration asks the worker to rebuild a farm's schedule.
func (q *JobQueue) EnqueueScheduleGeneration(ctx context.Context, farmID uuid.UUID) error {
	return q.Enqueue(ctx, QueueDefault, JobTypeScheduleGeneration, map[string]interface{}{
		"farm_id": farmID.String(),
	})
}
