package importer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"contractimport/normalization"
)

// DefaultMinColumns is the minimum number of ';' separated cells of a data row.
const DefaultMinColumns = 7

// ColumnLayout holds 0-based positions of the export columns.
// Positions beyond the end of a row read as empty cells.
type ColumnLayout struct {
	SN         int
	Product    int
	Weight     int
	Containers int
	UnitPrice  int
	POL        int
	POD        int
	ETA        int
	StatusText int
	Balance    int
	CarrierA   int
	CarrierB   int
	FreeTime   int
}

// DefaultColumnLayout is the layout of the historical exports.
func DefaultColumnLayout() ColumnLayout {
	return ColumnLayout{
		SN:         0,
		Product:    1,
		Weight:     2,
		Containers: 3,
		UnitPrice:  4,
		POL:        5,
		POD:        6,
		ETA:        7,
		StatusText: 8,
		Balance:    9,
		CarrierA:   10,
		CarrierB:   11,
		FreeTime:   12,
	}
}

// FolderMatcher finds the document folder of a base contract number.
type FolderMatcher interface {
	Match(baseNumber string) (string, bool)
}

// ParserConfig holds configuration options for the row parser
type ParserConfig struct {
	Sections   []SectionDef
	Branches   BranchLookup
	Folders    FolderMatcher
	Layout     ColumnLayout
	TargetYear int
	MinColumns int
}

// ParseStats counts what happened to every input line.
type ParseStats struct {
	LinesRead      int `json:"lines_read"`
	BlankLines     int `json:"blank_lines"`
	SectionLines   int `json:"section_lines"`
	// SectionRows are data rows that also switched the section.
	SectionRows    int `json:"section_rows"`
	HeaderLines    int `json:"header_lines"`
	ShortLines     int `json:"short_lines"`
	MissingProduct int `json:"missing_product"`
	Records        int `json:"records"`
	Shipments      int `json:"shipments"`
	Pending        int `json:"pending"`
	DuplicateSNs   int `json:"duplicate_sns"`
	FoldersMatched int `json:"folders_matched"`
}

// Skipped returns the number of lines that produced no record.
func (s ParseStats) Skipped() int {
	return s.BlankLines + s.SectionLines + s.HeaderLines + s.ShortLines + s.MissingProduct
}

var headerMarkers = map[string]bool{
	"sn":          true,
	"s/n":         true,
	"s.n":         true,
	"s n":         true,
	"no":          true,
	"no.":         true,
	"#":           true,
	"contract":    true,
	"contract no": true,
	"م":           true,
	"ت":           true,
	"رقم":         true,
	"الرقم":       true,
	"رقم العقد":   true,
	"تسلسل":       true,
	"التسلسل":     true,
}

// RowParser turns raw export lines into ParsedRecords.
type RowParser struct {
	cfg     ParserConfig
	tracker *SectionTracker
	seen    map[string]bool
	stats   ParseStats
	logger  *slog.Logger
}

// NewRowParser creates a parser; zero-valued config fields fall back to defaults.
func NewRowParser(cfg ParserConfig) *RowParser {
	if cfg.MinColumns <= 0 {
		cfg.MinColumns = DefaultMinColumns
	}
	if cfg.TargetYear <= 0 {
		cfg.TargetYear = DefaultTargetYear
	}
	if cfg.Layout == (ColumnLayout{}) {
		cfg.Layout = DefaultColumnLayout()
	}
	if cfg.Sections == nil {
		cfg.Sections = DefaultSections()
	}
	return &RowParser{
		cfg:     cfg,
		tracker: NewSectionTracker(cfg.Sections),
		seen:    make(map[string]bool),
		logger:  slog.Default().With("component", "row_parser"),
	}
}

// Stats returns the counters accumulated so far.
func (p *RowParser) Stats() ParseStats {
	return p.stats
}

// ParseLines parses every line in order.
func (p *RowParser) ParseLines(lines []string) ([]*ParsedRecord, ParseStats) {
	var records []*ParsedRecord
	for i, line := range lines {
		if rec := p.ParseLine(i+1, line); rec != nil {
			records = append(records, rec)
		}
	}
	p.logger.Info("Parsed export",
		"lines", p.stats.LinesRead,
		"records", p.stats.Records,
		"shipments", p.stats.Shipments,
		"pending", p.stats.Pending,
		"skipped", p.stats.Skipped())
	return records, p.stats
}

// ParseLine parses one line. It returns nil for blank, section-header,
// header, short and product-less lines. A data row carrying a section
// marker is parsed under the section it names.
func (p *RowParser) ParseLine(lineNo int, line string) *ParsedRecord {
	p.stats.LinesRead++

	if strings.TrimSpace(strings.ReplaceAll(line, ";", "")) == "" {
		p.stats.BlankLines++
		return nil
	}

	cols := strings.Split(line, ";")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	l := p.cfg.Layout
	product := cell(cols, l.Product)

	if p.tracker.Observe(line) {
		p.logger.Debug("Section switched", "line", lineNo, "section", p.tracker.Current().Name)
		if len(cols) < p.cfg.MinColumns || product == "" || isHeaderCell(cell(cols, l.SN)) {
			p.stats.SectionLines++
			return nil
		}
		p.stats.SectionRows++
	}

	if len(cols) < p.cfg.MinColumns {
		p.stats.ShortLines++
		return nil
	}
	if isHeaderCell(cell(cols, p.cfg.Layout.SN)) {
		p.stats.HeaderLines++
		return nil
	}

	if product == "" {
		p.stats.MissingProduct++
		return nil
	}

	sn := strings.TrimSpace(NormalizeDigits(cell(cols, l.SN)))
	if sn == "" {
		sn = fmt.Sprintf("ROW-%d", lineNo)
	}
	sn = p.uniqueSN(sn)

	rec := &ParsedRecord{
		LineNo:     lineNo,
		SN:         sn,
		BaseNumber: BaseContractNumber(sn),
		POL:        cell(cols, l.POL),
		POD:        cell(cols, l.POD),
		ETA:        ParseDate(cell(cols, l.ETA), p.cfg.TargetYear),
		StatusText: cell(cols, l.StatusText),
	}
	rec.Status = MapStatus(rec.StatusText)
	rec.Balance, rec.BalanceCurrency = ParsePrice(cell(cols, l.Balance))
	rec.FreeTimeDays = ParseFreeTime(cell(cols, l.FreeTime))

	carrier, tracking := ClassifyCarrierTracking(cell(cols, l.CarrierA), cell(cols, l.CarrierB))
	if IsPlaceholderTracking(carrier) {
		carrier = ""
	}
	if IsPlaceholderTracking(tracking) {
		tracking = ""
	}
	rec.Carrier, rec.TrackingRef = carrier, tracking

	p.fillLines(rec, product, cell(cols, l.Weight), cell(cols, l.Containers), cell(cols, l.UnitPrice))

	rec.IsShipment = IsShipment(rec.ETA != nil, rec.TrackingRef)

	rec.Section = p.tracker.Current()
	if p.cfg.Branches != nil {
		if branchID, warehouseID, ok := p.cfg.Branches.LookupBranch(rec.Section.Name); ok {
			rec.Section.BranchID, rec.Section.WarehouseID = branchID, warehouseID
		}
	}

	if p.cfg.Folders != nil {
		if folder, ok := p.cfg.Folders.Match(rec.BaseNumber); ok {
			rec.DocFolder = folder
			p.stats.FoldersMatched++
		}
	}

	p.stats.Records++
	if rec.IsShipment {
		p.stats.Shipments++
	} else {
		p.stats.Pending++
	}
	return rec
}

// IsShipment is the ACTIVE/PENDING business rule: a row is a shipment when
// it has an arrival date or a real tracking reference. Tracking alone, with
// no date, still counts.
func IsShipment(hasArrivalDate bool, tracking string) bool {
	return hasArrivalDate || !IsPlaceholderTracking(tracking)
}

// fillLines splits multi-part weight/container cells into one line per part.
func (p *RowParser) fillLines(rec *ParsedRecord, product, weightCell, containerCell, priceCell string) {
	weight := ParseComplexQuantity(weightCell)
	containers := ParseComplexQuantity(containerCell)
	price, currency := ParsePrice(priceCell)
	if strings.TrimSpace(priceCell) == "" {
		currency = weight.Currency
	}

	n := max(len(weight.Parts), len(containers.Parts), 1)
	labels := splitProductLabels(product, n)

	rec.Lines = make([]ProductLine, 0, n)
	for i := 0; i < n; i++ {
		rec.Lines = append(rec.Lines, ProductLine{
			ProductText: labels[i],
			Weight:      partAt(weight, i),
			UnitPrice:   price,
			Containers:  int(partAt(containers, i).IntPart()),
			Currency:    currency,
		})
	}
	rec.TotalWeight = weight.Total
	rec.TotalContainers = int(containers.Total.IntPart())
}

// splitProductLabels pairs "A + B" product cells with multi-part quantities.
// When the label count does not match, every line shares the whole label.
func splitProductLabels(product string, n int) []string {
	labels := make([]string, n)
	if n > 1 && strings.Contains(product, "+") {
		parts := strings.Split(product, "+")
		if len(parts) == n {
			for i, part := range parts {
				labels[i] = strings.TrimSpace(part)
			}
			if !containsEmpty(labels) {
				return labels
			}
		}
	}
	for i := range labels {
		labels[i] = product
	}
	return labels
}

func (p *RowParser) uniqueSN(sn string) string {
	if !p.seen[sn] {
		p.seen[sn] = true
		return sn
	}
	p.stats.DuplicateSNs++
	candidate := sn
	for n := 2; p.seen[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d", sn, n)
	}
	p.seen[candidate] = true
	p.logger.Warn("Duplicate SN renamed", "sn", sn, "renamed_to", candidate)
	return candidate
}

func isHeaderCell(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return headerMarkers[lower] || headerMarkers[normalization.NormalizeName(s)]
}

func cell(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return cols[idx]
}

func partAt(q Quantity, i int) decimal.Decimal {
	if i < len(q.Parts) {
		return q.Parts[i]
	}
	return decimal.Zero
}

func containsEmpty(ss []string) bool {
	for _, s := range ss {
		if s == "" {
			return true
		}
	}
	return false
}
