package cli

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"

	"plantation-manager/backend/internal/app"
	"plantation-manager/backend/internal/config"
	"plantation-manager/backend/internal/middleware"
)

var sweepOverdueCmd = &cobra.Command{
	Use:   "sweep-overdue",
	Short: "Mark every past-due scheduled task as overdue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ *config.Config, a *app.App) error {
			n, err := a.Tasks.SweepOverdue(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweeping overdue tasks: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d tasks overdue.\n", n)
			return nil
		})
	},
}

var (
	generateFarm  string
	generateAsync bool
)

var generateScheduleCmd = &cobra.Command{
	Use:   "generate-schedule",
	Short: "Rebuild the generated schedule for one farm",
	Long: `Remove the farm's generated tasks that are not completed and run the
schedule generator again. Manual and completed tasks are kept. With --async
the work is queued for the background worker instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		farmID, err := uuid.FromString(generateFarm)
		if err != nil {
			return fmt.Errorf("invalid --farm %q: %w", generateFarm, err)
		}
		return withApp(cmd, func(_ *config.Config, a *app.App) error {
			if generateAsync {
				queue := a.JobQueue()
				if queue == nil {
					return fmt.Errorf("--async needs redis to be enabled")
				}
				if err := queue.EnqueueScheduleGeneration(cmd.Context(), farmID); err != nil {
					return fmt.Errorf("queueing schedule generation: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued schedule generation for farm %s\n", farmID)
				return nil
			}

			tasks, err := a.Plantation.RegenerateFarm(cmd.Context(), farmID)
			if err != nil {
				return fmt.Errorf("generating schedule: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d tasks for farm %s\n", len(tasks), farmID)
			return nil
		})
	},
}

var (
	tokenUser string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign an API token for a user id",
	Long: `Sign a bearer token with JWT_SECRET for local testing and operator
access. Production tokens come from the identity service.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		userID, err := uuid.FromString(tokenUser)
		if err != nil {
			return fmt.Errorf("invalid --user %q: %w", tokenUser, err)
		}
		token, err := middleware.IssueToken(cfg.Auth, userID, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	generateScheduleCmd.Flags().StringVar(&generateFarm, "farm", "", "farm id")
	generateScheduleCmd.Flags().BoolVar(&generateAsync, "async", false, "queue the job for the worker")
	_ = generateScheduleCmd.MarkFlagRequired("farm")

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id the token is issued for")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(sweepOverdueCmd)
	rootCmd.AddCommand(generateScheduleCmd)
	rootCmd.AddCommand(tokenCmd)
}
