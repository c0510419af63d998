package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"contractimport/database"
	"contractimport/documents"
	"contractimport/importer"
	"contractimport/masterdata"
	"contractimport/report"
)

// Options configures one import run.
type Options struct {
	InputPath     string
	DocumentsRoot string
	StorageRoot   string
	TargetYear    int
	// DocumentYear is the year segment of the canonical document path.
	DocumentYear int
	Sections     []importer.SectionDef
	MinColumns   int

	ClearBeforeImport bool
	SeedBranches      bool

	// ReportXLSX, when set, receives the dry-run preview workbook.
	ReportXLSX string
	SampleSize int
}

var errNoDatabase = errors.New("live import requires a database")

// Pipeline wires parsing, aggregation, persistence and document linking.
type Pipeline struct {
	opts   Options
	db     *database.ImportDB
	out    io.Writer
	logger *slog.Logger

	// wrapStore lets tests intercept writes to the unit of work.
	wrapStore func(ContractStore) ContractStore
	preview   *report.Preview
}

// New creates a pipeline writing into db. Dry-run output goes to out.
// A dry run accepts a nil db and previews against empty master data.
func New(opts Options, db *database.ImportDB, out io.Writer) *Pipeline {
	if opts.Sections == nil {
		opts.Sections = importer.DefaultSections()
	}
	if opts.TargetYear <= 0 {
		opts.TargetYear = importer.DefaultTargetYear
	}
	if opts.DocumentYear <= 0 {
		opts.DocumentYear = opts.TargetYear
	}
	if out == nil {
		out = io.Discard
	}
	return &Pipeline{
		opts:   opts,
		db:     db,
		out:    out,
		logger: slog.Default().With("component", "import_pipeline"),
	}
}

// Preview returns the preview of the last dry run, nil before one.
func (p *Pipeline) Preview() *report.Preview {
	return p.preview
}

type parsed struct {
	records   []*importer.ParsedRecord
	contracts []*importer.AggregatedContract
	branches  *masterdata.BranchTable
}

// Run executes the import. With dryRun nothing is written to storage or
// the document store; the preview is rendered to the pipeline's output.
func (p *Pipeline) Run(ctx context.Context, dryRun bool) (*ImportStats, error) {
	stats := &ImportStats{
		BatchID: uuid.NewString(),
		DryRun:  dryRun,
		Started: time.Now(),
	}
	logger := p.logger.With("batch", stats.BatchID, "dry_run", dryRun)
	logger.Info("Starting import", "file", p.opts.InputPath)

	in, err := p.parse(stats)
	if err != nil {
		return nil, err
	}

	if dryRun {
		err = p.runDry(ctx, stats, in)
	} else {
		err = p.runLive(ctx, stats, in)
	}
	stats.Duration = time.Since(stats.Started)
	if err != nil {
		logger.Error("Import failed", "error", err, "duration", stats.Duration)
		return nil, err
	}

	logger.Info("Import finished",
		"contracts", stats.Contracts,
		"created", stats.Write.ContractsCreated,
		"shipments", stats.Write.ShipmentsCreated,
		"duration", stats.Duration)
	return stats, nil
}

func (p *Pipeline) parse(stats *ImportStats) (*parsed, error) {
	lines, err := importer.ReadExportFile(p.opts.InputPath)
	if err != nil {
		return nil, err
	}

	folders, err := documents.ScanFolders(p.opts.DocumentsRoot)
	if err != nil {
		return nil, err
	}

	branches := masterdata.NewBranchTable(p.opts.Sections)
	parser := importer.NewRowParser(importer.ParserConfig{
		Sections:   p.opts.Sections,
		Branches:   branches,
		Folders:    folders,
		TargetYear: p.opts.TargetYear,
		MinColumns: p.opts.MinColumns,
	})
	records, parseStats := parser.ParseLines(lines)
	contracts := importer.Aggregate(records)

	stats.Parse = parseStats
	stats.Contracts = len(contracts)
	for _, c := range contracts {
		if c.Status == importer.ContractActive {
			stats.ActiveContracts++
		} else {
			stats.PendingContracts++
		}
	}
	return &parsed{records: records, contracts: contracts, branches: branches}, nil
}

func (p *Pipeline) runDry(ctx context.Context, stats *ImportStats, in *parsed) error {
	lookups := masterdata.NewLookups()
	if p.db != nil {
		var err error
		if lookups, err = database.LoadLookups(ctx, p.db.DB()); err != nil {
			return err
		}
	} else {
		p.logger.Info("No existing database, previewing against empty master data")
	}
	if p.opts.ClearBeforeImport {
		lookups.Contracts = make(map[string]int64)
	}
	if p.opts.SeedBranches {
		for _, b := range in.branches.Entries() {
			if !lookups.HasBranch(b.BranchID) {
				lookups.Branches[b.BranchID] = b.Label
				stats.BranchesSeeded++
			}
		}
	}

	store := newPlanningStore()
	resolver := masterdata.NewResolver(store)
	writer := NewWriter(resolver, lookups, stats.BatchID)
	linker := documents.NewLinker(documents.LinkerConfig{
		StorageRoot: p.opts.StorageRoot,
		Year:        p.opts.DocumentYear,
		ImportBatch: stats.BatchID,
	})

	plan := report.Plan{}
	for _, c := range in.contracts {
		written, err := writer.WriteContract(ctx, store, c)
		if err != nil {
			return err
		}
		if written.Skipped {
			continue
		}
		for _, r := range c.Records {
			if r.DocFolder == "" {
				continue
			}
			files, _, err := linker.Plan(r.DocFolder)
			if err != nil {
				p.logger.Warn("Document folder unreadable", "sn", r.SN, "folder", r.DocFolder, "error", err)
				continue
			}
			dp := report.DocumentPlan{SN: r.SN, ContractNo: c.ContractNo, Folder: r.DocFolder, Files: len(files), ByType: make(map[string]int)}
			for _, f := range files {
				dp.ByType[string(f.Type)]++
			}
			plan.Documents = append(plan.Documents, dp)
			stats.PlannedDocuments += len(files)
		}
	}

	plan.PortsToCreate = store.Ports
	plan.CompaniesToCreate = store.Companies
	plan.Rows = store.Rows()
	plan.ContractsSkipped = writer.Stats().ContractsSkipped

	stats.Write = writer.Stats()
	stats.Resolve = resolver.Stats()

	p.preview = report.BuildPreview(in.records, in.contracts, plan)
	if err := report.RenderText(p.out, p.preview, p.opts.SampleSize); err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	if p.opts.ReportXLSX != "" {
		if err := report.WriteWorkbook(p.opts.ReportXLSX, p.preview); err != nil {
			return err
		}
		p.logger.Info("Preview workbook saved", "path", p.opts.ReportXLSX)
	}
	return nil
}

func (p *Pipeline) runLive(ctx context.Context, stats *ImportStats, in *parsed) error {
	if p.db == nil {
		return errNoDatabase
	}
	uow, err := p.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if uow.Done() {
			return
		}
		if rbErr := uow.Rollback(); rbErr != nil {
			p.logger.Error("Rollback failed", "error", rbErr)
			return
		}
		p.logger.Warn("Import rolled back, no rows were stored", "batch", stats.BatchID)
	}()

	if p.opts.ClearBeforeImport {
		stats.ClearedRows, err = uow.ClearTransactional(ctx)
		if err != nil {
			return err
		}
	}

	if p.opts.SeedBranches {
		stats.BranchesSeeded, err = uow.SeedBranches(ctx, in.branches.Entries())
		if err != nil {
			return err
		}
	}

	lookups, err := database.LoadLookups(ctx, uow.Queryer())
	if err != nil {
		return err
	}

	var store ContractStore = uow
	if p.wrapStore != nil {
		store = p.wrapStore(store)
	}
	resolver := masterdata.NewResolver(store)
	writer := NewWriter(resolver, lookups, stats.BatchID)
	linker := documents.NewLinker(documents.LinkerConfig{
		StorageRoot: p.opts.StorageRoot,
		Year:        p.opts.DocumentYear,
		ImportBatch: stats.BatchID,
	})

	for _, c := range in.contracts {
		written, err := writer.WriteContract(ctx, store, c)
		if err != nil {
			return fmt.Errorf("failed to write contract %s: %w", c.ContractNo, err)
		}
		if written.Skipped {
			continue
		}
		for _, r := range c.Records {
			if r.DocFolder == "" {
				continue
			}
			shipmentID, hasShipment := written.ShipmentIDs[r.SN]
			if err := linker.LinkRecord(ctx, store, documents.LinkTarget{
				SN:          r.SN,
				ContractNo:  c.ContractNo,
				ContractID:  written.ContractID,
				ShipmentID:  shipmentID,
				HasShipment: hasShipment,
				Folder:      r.DocFolder,
			}); err != nil {
				return err
			}
		}
	}

	stats.Write = writer.Stats()
	stats.Resolve = resolver.Stats()
	stats.Documents = linker.Stats()

	if err := uow.Commit(); err != nil {
		return err
	}
	return nil
}
