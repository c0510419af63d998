package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"contractimport/database"
)

// ArchiveStore registers copied documents. *database.UnitOfWork implements it.
type ArchiveStore interface {
	InsertArchivedDocument(ctx context.Context, row database.ArchivedDocumentRow) (int64, error)
}

// LinkTarget is one parsed record with a matched folder, after persistence.
type LinkTarget struct {
	SN          string
	ContractNo  string
	ContractID  int64
	ShipmentID  int64
	HasShipment bool
	Folder      string
}

// LinkError is a non-fatal per-file failure kept for the final report.
type LinkError struct {
	Path string
	Err  error
}

func (e LinkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e LinkError) Unwrap() error {
	return e.Err
}

// LinkStats counts what the linker did during a run.
type LinkStats struct {
	RecordsLinked   int             `json:"records_linked"`
	FilesSeen       int             `json:"files_seen"`
	FilesIneligible int             `json:"files_ineligible"`
	FilesCopied     int             `json:"files_copied"`
	FilesExisting   int             `json:"files_existing"`
	FileErrors      int             `json:"file_errors"`
	Registered      int             `json:"registered"`
	ByType          map[DocType]int `json:"by_type"`
	Errors          []LinkError     `json:"-"`
}

// PlannedFile is an eligible document found in a folder.
type PlannedFile struct {
	SourcePath string
	// RelPath is the path inside the matched folder; it keeps files of
	// different subfolders apart in storage.
	RelPath string
	Name    string
	Type    DocType
}

// LinkerConfig configures the canonical storage layout.
type LinkerConfig struct {
	StorageRoot string
	Year        int
	ImportBatch string
}

// Linker copies matched documents into <storage>/contracts/<year>/<contract_no>/docs/
// and registers one archive row per file and record.
type Linker struct {
	cfg    LinkerConfig
	stats  LinkStats
	logger *slog.Logger
}

// NewLinker creates a linker.
func NewLinker(cfg LinkerConfig) *Linker {
	return &Linker{
		cfg:    cfg,
		stats:  LinkStats{ByType: make(map[DocType]int)},
		logger: slog.Default().With("component", "document_linker"),
	}
}

// Stats returns the counters accumulated so far.
func (l *Linker) Stats() LinkStats {
	return l.stats
}

// CanonicalDir returns the destination directory of a contract's documents.
func (l *Linker) CanonicalDir(contractNo string) string {
	return filepath.Join(l.cfg.StorageRoot, "contracts", strconv.Itoa(l.cfg.Year), safeSegment(contractNo), "docs")
}

// Plan lists and classifies the eligible files of a folder without copying.
func (l *Linker) Plan(folder string) ([]PlannedFile, int, error) {
	var files []PlannedFile
	ineligible := 0

	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != folder && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !d.Type().IsRegular() {
			return nil
		}
		if !IsEligible(path) {
			ineligible++
			return nil
		}
		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		files = append(files, PlannedFile{SourcePath: path, RelPath: rel, Name: d.Name(), Type: Classify(d.Name())})
		return nil
	})
	if err != nil {
		return nil, ineligible, fmt.Errorf("failed to list %s: %w", folder, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].SourcePath < files[j].SourcePath })
	return files, ineligible, nil
}

// LinkRecord copies the record's documents and registers them in store.
// Copy failures are recorded and skipped; a failed metadata insert is
// returned because it leaves the unit of work unusable.
func (l *Linker) LinkRecord(ctx context.Context, store ArchiveStore, target LinkTarget) error {
	if target.Folder == "" {
		return nil
	}

	files, ineligible, err := l.Plan(target.Folder)
	l.stats.FilesIneligible += ineligible
	if err != nil {
		l.fail(target.Folder, err)
		return nil
	}
	l.stats.RecordsLinked++

	destDir := l.CanonicalDir(target.ContractNo)
	for _, f := range files {
		l.stats.FilesSeen++
		dest := filepath.Join(destDir, f.RelPath)

		copied, err := copyFile(f.SourcePath, dest)
		if err != nil {
			l.fail(f.SourcePath, err)
			continue
		}
		if copied {
			l.stats.FilesCopied++
		} else {
			l.stats.FilesExisting++
		}

		_, err = store.InsertArchivedDocument(ctx, database.ArchivedDocumentRow{
			ContractID:   target.ContractID,
			ShipmentID:   database.NullID(target.ShipmentID, target.HasShipment),
			DocType:      string(f.Type),
			OriginalName: f.Name,
			SourcePath:   f.SourcePath,
			StoredPath:   dest,
			ImportBatch:  l.cfg.ImportBatch,
		})
		if err != nil {
			return fmt.Errorf("failed to register document for %s: %w", target.SN, err)
		}
		l.stats.Registered++
		l.stats.ByType[f.Type]++
	}

	l.logger.Debug("Linked documents", "sn", target.SN, "contract", target.ContractNo, "files", len(files))
	return nil
}

func (l *Linker) fail(path string, err error) {
	l.stats.FileErrors++
	l.stats.Errors = append(l.stats.Errors, LinkError{Path: path, Err: err})
	l.logger.Warn("Document skipped", "path", path, "error", err)
}

// copyFile copies src to dest unless dest already exists. It reports
// whether a copy was made.
func copyFile(src, dest string) (bool, error) {
	if _, err := os.Stat(dest); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to check destination: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("failed to create destination directory: %w", err)
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		os.Remove(dest) // Удаляем частично скопированный файл
		return false, fmt.Errorf("failed to copy file: %w", err)
	}
	if err := destFile.Close(); err != nil {
		os.Remove(dest)
		return false, fmt.Errorf("failed to close destination file: %w", err)
	}
	return true, nil
}

// safeSegment keeps a contract number usable as a single path element.
func safeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(s)
	if s == "" {
		return "_"
	}
	return s
}
