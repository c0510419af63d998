package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"contractimport/database"
	"contractimport/internal/config"
	"contractimport/masterdata"
	"contractimport/pipeline"
)

type importOptions struct {
	DryRun     bool
	File       string
	Docs       string
	Storage    string
	DB         string
	ReportXLSX string
	EnvFile    string
}

func newRootCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import_contracts [--dry-run]",
		Short: "Import the legacy contract/shipment export into the contracts database",
		Long: `Reads the semicolon separated contract export, groups rows into contracts,
writes contracts, shipments and their documents in a single transaction.

Without flags the import is live and replaces previously imported contracts.
Use --dry-run to preview what would be written without touching anything.
Destination branches must exist; install them once with "seed-branches".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Parse and preview only, write nothing")
	cmd.Flags().StringVar(&opts.File, "file", "", "Path to the export file (overrides IMPORT_INPUT_PATH)")
	cmd.Flags().StringVar(&opts.Docs, "docs", "", "Root of the per-contract document folders (overrides IMPORT_DOCUMENTS_ROOT)")
	cmd.Flags().StringVar(&opts.Storage, "storage", "", "Document storage root (overrides IMPORT_STORAGE_ROOT)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "Database DSN (overrides IMPORT_DB_DSN)")
	cmd.Flags().StringVar(&opts.ReportXLSX, "report-xlsx", "", "Write the dry-run preview to an xlsx workbook")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env", "", "Env file to load instead of .env/.env.local")

	cmd.AddCommand(&cobra.Command{
		Use:   "seed-branches",
		Short: "Install the destination branches of the section table",
		Long: `Inserts the branch and warehouse of every configured section into the
branches table. Existing branches are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeedBranches(cmd, opts)
		},
	})
	return cmd
}

func loadConfig(opts importOptions) (*config.Config, error) {
	var envFiles []string
	if opts.EnvFile != "" {
		envFiles = []string{opts.EnvFile}
	}
	cfg, err := config.LoadConfig(envFiles...)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	return cfg, nil
}

// openForWrite opens the database, creating the SQLite directory and the schema.
func openForWrite(ctx context.Context, cfg *config.Config) (*database.ImportDB, error) {
	if cfg.DBDriver == database.DriverSQLite {
		// Проверяем существование БД или создаем директорию
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return database.Open(ctx, cfg.DBDriver, cfg.DBDSN, cfg.DBConfig())
}

func runImport(cmd *cobra.Command, opts importOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// Проверяем существование файла
	if _, err := os.Stat(cfg.InputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file not found: %s", cfg.InputPath)
		}
		return fmt.Errorf("error checking file %s: %w", cfg.InputPath, err)
	}

	ctx := cmd.Context()
	var db *database.ImportDB
	if opts.DryRun {
		// dry run never creates the database or its schema
		db, err = database.OpenExisting(ctx, cfg.DBDriver, cfg.DBDSN, cfg.DBConfig())
		if errors.Is(err, database.ErrNoDatabase) {
			db, err = nil, nil
		}
	} else {
		db, err = openForWrite(ctx, cfg)
	}
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	out := cmd.OutOrStdout()
	if !opts.DryRun && cfg.ClearBeforeImport {
		fmt.Fprintf(out, "Live import: previously imported contracts and shipments will be replaced\n")
	}

	stats, err := pipeline.New(cfg.PipelineOptions(), db, out).Run(ctx, opts.DryRun)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	pipeline.PrintStats(out, stats)

	if len(stats.Documents.Errors) > 0 {
		fmt.Fprintf(out, "\n=== Document Errors ===\n")
		for _, e := range stats.Documents.Errors {
			fmt.Fprintf(out, " - %s\n", e)
		}
	}
	return nil
}

func runSeedBranches(cmd *cobra.Command, opts importOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := openForWrite(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	uow, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	entries := masterdata.NewBranchTable(cfg.Sections).Entries()
	seeded, err := uow.SeedBranches(ctx, entries)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Branches seeded: %d of %d\n", seeded, len(entries))
	return nil
}

func applyFlags(cfg *config.Config, opts importOptions) {
	if opts.File != "" {
		cfg.InputPath = opts.File
	}
	if opts.Docs != "" {
		cfg.DocumentsRoot = opts.Docs
	}
	if opts.Storage != "" {
		cfg.StorageRoot = opts.Storage
	}
	if opts.DB != "" {
		cfg.DBDSN = opts.DB
	}
	if opts.ReportXLSX != "" {
		cfg.ReportXLSX = opts.ReportXLSX
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}
