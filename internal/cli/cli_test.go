package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantation-manager/backend/internal/app"
	"plantation-manager/backend/internal/catalog"
	"plantation-manager/backend/internal/config"
	"plantation-manager/backend/internal/services"
	"plantation-manager/backend/internal/worker"
)

var bundledCatalog = filepath.Join("..", "..", "data", "catalog.yaml")

// useTestConfig points every command at a throwaway sqlite file.
func useTestConfig(t *testing.T, mr *miniredis.Miniredis) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			SQLitePath:   filepath.Join(t.TempDir(), "farm.db"),
			MaxOpenConns: 1,
		},
		Auth:    config.AuthConfig{JWTSecret: "cli-secret", Issuer: "plantation-auth"},
		Log:     config.LogConfig{Level: "error"},
		Catalog: config.CatalogConfig{SeedPath: bundledCatalog, CacheTTL: time.Minute},
	}
	if mr != nil {
		cfg.Redis = config.RedisConfig{Enabled: true, Host: mr.Host(), Port: mr.Port(), PoolSize: 2}
	}

	origLoad := loadConfig
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	t.Cleanup(func() { loadConfig = origLoad })
	return cfg
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	seedFile, exportOut = "", ""
	generateFarm, generateAsync = "", false
	tokenUser, tokenTTL = "", 24*time.Hour

	var out, logs bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&logs)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func seededFarm(t *testing.T, cfg *config.Config, start time.Time) uuid.UUID {
	t.Helper()
	a, err := app.New(cfg)
	require.NoError(t, err)
	defer a.Close()

	farm, err := a.Plantation.StartPlantation(context.Background(), uuid.Must(uuid.NewV4()), services.StartPlantationInput{
		FarmName:        "CLI Farm",
		DistrictID:      8,
		SoilTypeID:      2,
		ChosenVarietyID: "panniyur-1",
		FarmStartDate:   start,
		AreaHectares:    2,
		TotalVines:      400,
	})
	require.NoError(t, err)
	return farm.ID
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "farmctl dev")
}

func TestMigrateAndSeed(t *testing.T) {
	useTestConfig(t, nil)

	out, err := runCmd(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date.")

	out, err = runCmd(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 25 districts")
	assert.Contains(t, out, "12 templates")
}

func TestSeed_MissingFile(t *testing.T) {
	useTestConfig(t, nil)

	_, err := runCmd(t, "seed", "--file", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestExportCatalog(t *testing.T) {
	useTestConfig(t, nil)
	_, err := runCmd(t, "seed", "-f", bundledCatalog)
	require.NoError(t, err)

	out, err := runCmd(t, "export-catalog")
	require.NoError(t, err)
	doc, err := catalog.ParseYAML(strings.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, doc.Templates, 12)
	assert.NoError(t, doc.Validate())

	xlsxPath := filepath.Join(t.TempDir(), "catalog.xlsx")
	out, err = runCmd(t, "export-catalog", "--out", xlsxPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 12 templates")
	fromXLSX, err := catalog.Load(xlsxPath)
	require.NoError(t, err)
	assert.Len(t, fromXLSX.Districts, 25)

	_, err = runCmd(t, "export-catalog", "--out", filepath.Join(t.TempDir(), "catalog.csv"))
	assert.ErrorIs(t, err, catalog.ErrUnsupportedFormat)
}

func TestSweepOverdue(t *testing.T) {
	cfg := useTestConfig(t, nil)
	_, err := runCmd(t, "seed")
	require.NoError(t, err)
	seededFarm(t, cfg, time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC))

	out, err := runCmd(t, "sweep-overdue")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked ")
	assert.NotContains(t, out, "Marked 0 ")

	out, err = runCmd(t, "sweep-overdue")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked 0 tasks overdue.")
}

func TestGenerateSchedule(t *testing.T) {
	cfg := useTestConfig(t, nil)
	_, err := runCmd(t, "seed")
	require.NoError(t, err)
	farmID := seededFarm(t, cfg, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))

	out, err := runCmd(t, "generate-schedule", "--farm", farmID.String())
	require.NoError(t, err)
	// Hambantota is dry zone: 12 templates plus 3 irrigation checks
	assert.Contains(t, out, "Generated 15 tasks")

	_, err = runCmd(t, "generate-schedule", "--farm", "not-a-uuid")
	assert.Error(t, err)

	_, err = runCmd(t, "generate-schedule", "--farm", uuid.Must(uuid.NewV4()).String())
	assert.Error(t, err)
}

func TestGenerateSchedule_AsyncNeedsRedis(t *testing.T) {
	cfg := useTestConfig(t, nil)
	_, err := runCmd(t, "seed")
	require.NoError(t, err)
	farmID := seededFarm(t, cfg, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))

	_, err = runCmd(t, "generate-schedule", "--farm", farmID.String(), "--async")
	assert.ErrorContains(t, err, "redis")
}

func TestGenerateSchedule_AsyncQueuesJob(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := useTestConfig(t, mr)
	_, err := runCmd(t, "seed")
	require.NoError(t, err)
	farmID := seededFarm(t, cfg, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))

	out, err := runCmd(t, "generate-schedule", "--farm", farmID.String(), "--async")
	require.NoError(t, err)
	assert.Contains(t, out, "Queued schedule generation")

	items, err := mr.List(worker.QueueDefault)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], string(worker.JobTypeScheduleGeneration))
	assert.Contains(t, items[0], farmID.String())
}

func TestTokenCmd(t *testing.T) {
	useTestConfig(t, nil)
	userID := uuid.Must(uuid.NewV4())

	out, err := runCmd(t, "token", "--user", userID.String(), "--ttl", "1h")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(out), ".")))

	_, err = runCmd(t, "token", "--user", "bob")
	assert.Error(t, err)
}
