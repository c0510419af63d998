package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"contractimport/importer"
)

// DefaultSampleSize is the number of contracts shown in the text preview.
const DefaultSampleSize = 10

const maxCellRunes = 48

var statusOrder = []importer.Status{
	importer.StatusPlanning,
	importer.StatusBooked,
	importer.StatusLoading,
	importer.StatusSailed,
	importer.StatusArrived,
	importer.StatusDelivered,
	importer.StatusCancelled,
}

// RenderText writes the dry-run preview: sections, statuses, planned writes
// and a truncated sample of contracts.
func RenderText(w io.Writer, p *Preview, sampleSize int) error {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Dry Run Preview ===\n")
	fmt.Fprintf(tw, "Records: %d (shipments %d, pending %d)\n", len(p.Records), p.Shipments, p.Pending)
	fmt.Fprintf(tw, "Contracts: %d (ACTIVE %d, PENDING %d)\n",
		len(p.Contracts), p.ContractStatuses[importer.ContractActive], p.ContractStatuses[importer.ContractPending])

	fmt.Fprintf(tw, "\n=== By Section ===\n")
	fmt.Fprintf(tw, "Section\tDestination\tBranch\tRecords\tShipments\tPending\tContracts\tActive\n")
	for _, s := range p.Sections {
		branch := s.BranchID
		if branch == "" {
			branch = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			s.Name, s.Destination, branch, s.Records, s.Shipments, s.Pending, s.Contracts, s.ActiveContracts)
	}

	fmt.Fprintf(tw, "\n=== By Status ===\n")
	for _, st := range statusOrder {
		if n := p.RecordStatuses[st]; n > 0 {
			fmt.Fprintf(tw, "%s\t%d\n", st, n)
		}
	}

	fmt.Fprintf(tw, "\n=== Planned Writes ===\n")
	tables := make([]string, 0, len(p.Plan.Rows))
	for t := range p.Plan.Rows {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		fmt.Fprintf(tw, "%s\t%d\n", t, p.Plan.Rows[t])
	}
	if p.Plan.ContractsSkipped > 0 {
		fmt.Fprintf(tw, "contracts already stored (skipped)\t%d\n", p.Plan.ContractsSkipped)
	}
	fmt.Fprintf(tw, "new ports\t%s\n", joinOrDash(p.Plan.PortsToCreate))
	fmt.Fprintf(tw, "new shipping companies\t%s\n", joinOrDash(p.Plan.CompaniesToCreate))
	fmt.Fprintf(tw, "documents to copy\t%d (from %d records)\n", p.Plan.DocumentFiles(), len(p.Plan.Documents))

	fmt.Fprintf(tw, "\n=== Sample Contracts (first %d of %d) ===\n", min(sampleSize, len(p.Contracts)), len(p.Contracts))
	fmt.Fprintf(tw, "Contract\tStatus\tSection\tRecords\tContainers\tWeight\tProducts\n")
	for i, c := range p.Contracts {
		if i >= sampleSize {
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			c.ContractNo, c.Status, c.Section.Name, len(c.Records), c.TotalContainers,
			c.TotalWeight.String(), Truncate(c.ProductSummary(), maxCellRunes))
	}

	return tw.Flush()
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
