package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"plantation-manager/backend/internal/app"
	"plantation-manager/backend/internal/catalog"
	"plantation-manager/backend/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ *config.Config, a *app.App) error {
			if err := a.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		})
	},
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import the agronomy catalog from a YAML or XLSX file",
	Long: `Load districts, soil types, varieties and task templates from a catalog
file. Reference rows are upserted; the template set is replaced as a whole
and cached template lists are dropped. Defaults to CATALOG_SEED_PATH.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(cfg *config.Config, a *app.App) error {
			path := seedFile
			if path == "" {
				path = cfg.Catalog.SeedPath
			}
			doc, err := catalog.Load(path)
			if err != nil {
				return err
			}
			if err := a.Migrate(); err != nil {
				return err
			}
			summary, err := a.Catalog.Import(cmd.Context(), doc)
			if err != nil {
				return fmt.Errorf("importing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d districts, %d soil types, %d varieties, %d templates from %s\n",
				summary.Districts, summary.SoilTypes, summary.Varieties, summary.Templates, path)
			return nil
		})
	},
}

var exportOut string

var exportCatalogCmd = &cobra.Command{
	Use:   "export-catalog",
	Short: "Write the stored catalog as YAML or XLSX",
	Long: `Dump the catalog currently in the database. The format follows the
--out extension (.yaml, .yml or .xlsx); without --out YAML goes to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ *config.Config, a *app.App) error {
			ctx := cmd.Context()
			districts, err := a.References.Districts(ctx)
			if err != nil {
				return err
			}
			soils, err := a.References.SoilTypes(ctx)
			if err != nil {
				return err
			}
			varieties, err := a.References.Varieties(ctx)
			if err != nil {
				return err
			}
			templates, err := a.Templates.GetAll(ctx)
			if err != nil {
				return err
			}
			doc := catalog.FromModels(districts, soils, varieties, templates)

			if exportOut == "" {
				return catalog.WriteYAML(doc, cmd.OutOrStdout())
			}

			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", exportOut, err)
			}
			defer f.Close()

			switch strings.ToLower(filepath.Ext(exportOut)) {
			case ".xlsx":
				err = catalog.WriteXLSX(doc, f)
			case ".yaml", ".yml":
				err = catalog.WriteYAML(doc, f)
			default:
				err = fmt.Errorf("%s: %w", exportOut, catalog.ErrUnsupportedFormat)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d templates to %s\n", len(doc.Templates), exportOut)
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "catalog file (.yaml, .yml or .xlsx)")
	exportCatalogCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCatalogCmd)
}
