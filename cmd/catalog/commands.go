package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ikkim/pumpcatalog-backend/config"
	"github.com/ikkim/pumpcatalog-backend/internal/app/repository"
	"github.com/ikkim/pumpcatalog-backend/internal/app/service"
	"github.com/ikkim/pumpcatalog-backend/internal/db"
	"github.com/ikkim/pumpcatalog-backend/internal/storage"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	"github.com/ikkim/pumpcatalog-backend/pkg/redis"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catalog",
		Short: "Maintenance commands for the pump catalog database",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Initialize(logger.Config{
				Level:       "info",
				Format:      "console",
				EnableColor: true,
			})
		},
	}

	root.AddCommand(newMigrateCmd(), newSeedCmd(), newArchiveCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog and order tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(_ *config.Config, database *gorm.DB) error {
				if err := db.Migrate(database); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "seed <xlsx_file_path>",
		Short: "Import products, parts, alternative sets and schemes from a workbook",
		Long: `Import a catalog workbook. The "products" sheet is required; "parts",
"alternative_sets" and "schemes" are optional. Products and schemes are
upserted and every listed product has its parts replaced, all in one
transaction. Re-running the same workbook is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open workbook: %w", err)
			}
			defer file.Close()

			wb, err := service.ParseCatalogWorkbook(file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			parts := 0
			for _, list := range wb.Parts {
				parts += len(list)
			}
			fmt.Fprintf(out, "Products: %d, parts: %d, schemes: %d\n", len(wb.Products), parts, len(wb.Schemes))

			if !assumeYes && !confirm(cmd.InOrStdin(), out, "Do you want to proceed with the import? (yes/no): ") {
				fmt.Fprintln(out, "Import cancelled.")
				return nil
			}

			return withDatabase(func(cfg *config.Config, database *gorm.DB) error {
				if err := db.Migrate(database); err != nil {
					return err
				}

				var catalog service.CatalogService
				if cfg.Redis.Enabled() {
					cache, err := redis.New(&cfg.Redis)
					if err != nil {
						logger.Warn("Redis unavailable, cached parts will expire on their own", map[string]interface{}{
							"error": err.Error(),
						})
					} else {
						defer cache.Close()
						catalog = service.NewCatalogService(
							repository.NewProductRepository(database),
							repository.NewPartRepository(database),
							repository.NewSchemeRepository(database),
							cache,
							cfg.Redis.PartsTTL,
						)
					}
				}

				summary, err := service.NewCatalogImporter(database, catalog).Import(cmd.Context(), wb)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Imported %d products, %d parts, %d alternative sets, %d schemes.\n",
					summary.Products, summary.Parts, summary.AlternativeSets, summary.Schemes)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newArchiveCmd() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Upload a workbook of recent orders to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, database *gorm.DB) error {
				if !cfg.S3.Enabled() {
					return fmt.Errorf("AWS_S3_BUCKET is not set")
				}

				ctx := cmd.Context()
				exportService := service.NewExportService(
					repository.NewOrderRepository(database),
					storage.NewS3Storage(ctx, &cfg.S3),
					storage.ObjectKey,
				)

				result, err := exportService.ArchiveOrders(ctx, time.Now().UTC().Add(-since), nil)
				if err != nil {
					return err
				}
				if result.Orders == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No orders to archive.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived %d orders to %s\n", result.Orders, result.URL)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Archive orders created within this window")
	return cmd
}

func withDatabase(fn func(cfg *config.Config, database *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close(database)

	return fn(cfg, database)
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
