package pipeline

import (
	"fmt"
	"io"
	"time"

	"contractimport/documents"
	"contractimport/importer"
	"contractimport/masterdata"
)

// ImportStats is the outcome of one run, live or dry.
type ImportStats struct {
	BatchID  string        `json:"batch_id"`
	DryRun   bool          `json:"dry_run"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`

	Parse            importer.ParseStats     `json:"parse"`
	Contracts        int                     `json:"contracts"`
	ActiveContracts  int                     `json:"active_contracts"`
	PendingContracts int                     `json:"pending_contracts"`
	Write            WriteStats              `json:"write"`
	Resolve          masterdata.ResolveStats `json:"resolve"`
	Documents        documents.LinkStats     `json:"documents"`
	PlannedDocuments int                     `json:"planned_documents"`
	ClearedRows      int64                   `json:"cleared_rows"`
	BranchesSeeded   int                     `json:"branches_seeded"`
}

// PrintStats writes the run summary.
func PrintStats(w io.Writer, s *ImportStats) {
	title := "Import Results"
	if s.DryRun {
		title = "Dry Run Results"
	}
	fmt.Fprintf(w, "\n=== %s ===\n", title)
	fmt.Fprintf(w, "Batch: %s\n", s.BatchID)
	fmt.Fprintf(w, "Lines read: %d (skipped %d)\n", s.Parse.LinesRead, s.Parse.Skipped())
	fmt.Fprintf(w, "Records: %d (shipments %d, pending %d, duplicate SNs %d)\n",
		s.Parse.Records, s.Parse.Shipments, s.Parse.Pending, s.Parse.DuplicateSNs)
	fmt.Fprintf(w, "Contracts: %d (ACTIVE %d, PENDING %d)\n", s.Contracts, s.ActiveContracts, s.PendingContracts)
	if s.ClearedRows > 0 {
		fmt.Fprintf(w, "Cleared rows: %d\n", s.ClearedRows)
	}
	fmt.Fprintf(w, "Contracts created: %d, skipped: %d\n", s.Write.ContractsCreated, s.Write.ContractsSkipped)
	fmt.Fprintf(w, "Shipments created: %d\n", s.Write.ShipmentsCreated)
	fmt.Fprintf(w, "Lines: contract %d, shipment %d\n", s.Write.ContractLines, s.Write.ShipmentLines)
	if s.BranchesSeeded > 0 {
		fmt.Fprintf(w, "Branches seeded: %d\n", s.BranchesSeeded)
	}
	fmt.Fprintf(w, "Branches linked: %d, missing: %d\n", s.Write.BranchesLinked, s.Write.BranchesMissing)
	fmt.Fprintf(w, "Master data linked: %d, created: %d\n", s.Resolve.Linked(), s.Resolve.Created())
	if s.DryRun {
		fmt.Fprintf(w, "Documents to copy: %d\n", s.PlannedDocuments)
	} else {
		fmt.Fprintf(w, "Documents: copied %d, existing %d, registered %d, errors %d\n",
			s.Documents.FilesCopied, s.Documents.FilesExisting, s.Documents.Registered, s.Documents.FileErrors)
	}
	fmt.Fprintf(w, "Duration: %v\n", s.Duration)
}
