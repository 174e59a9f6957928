// Package cli implements farmctl, the operator command line for the
// plantation backend.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"plantation-manager/backend/internal/app"
	"plantation-manager/backend/internal/config"
	"plantation-manager/backend/internal/logging"
)

var (
	appVersion = "dev"
	appCommit  = "none"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit string) {
	appVersion = version
	appCommit = commit
}

// loadConfig and openApp are swapped out in tests.
var (
	loadConfig = config.LoadConfig
	openApp    = app.New
)

var rootCmd = &cobra.Command{
	Use:   "farmctl",
	Short: "Operate the plantation backend",
	Long: `farmctl runs maintenance against the plantation database: schema
migrations, agronomy catalog import and export, overdue sweeps and
schedule regeneration. It reads the same environment as the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "farmctl %s\ncommit: %s\n", appVersion, appCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// withApp opens the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(cfg *config.Config, a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logging.Setup(cfg.Log, cmd.ErrOrStderr())

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(cfg, a)
}
