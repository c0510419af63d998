package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"contractimport/database"
	"contractimport/documents"
	"contractimport/importer"
	"contractimport/masterdata"
)

// ContractStore is everything the writer inserts. *database.UnitOfWork
// implements it for live runs; dry-run uses a planning store.
type ContractStore interface {
	masterdata.Creator
	documents.ArchiveStore

	InsertContract(ctx context.Context, row database.ContractRow) (int64, error)
	InsertContractParties(ctx context.Context, row database.ContractPartiesRow) (int64, error)
	InsertContractShipping(ctx context.Context, row database.ContractShippingRow) (int64, error)
	InsertContractTerms(ctx context.Context, row database.ContractTermsRow) (int64, error)
	InsertContractProducts(ctx context.Context, row database.ProductSummaryRow) (int64, error)
	InsertContractLine(ctx context.Context, row database.LineRow) (int64, error)

	InsertShipment(ctx context.Context, row database.ShipmentRow) (int64, error)
	InsertShipmentParties(ctx context.Context, row database.ShipmentPartiesRow) (int64, error)
	InsertShipmentCargo(ctx context.Context, row database.ProductSummaryRow) (int64, error)
	InsertShipmentLogistics(ctx context.Context, row database.ShipmentLogisticsRow) (int64, error)
	InsertShipmentFinancials(ctx context.Context, row database.ShipmentFinancialsRow) (int64, error)
	InsertShipmentDocuments(ctx context.Context, row database.ShipmentDocumentsRow) (int64, error)
	InsertShipmentLine(ctx context.Context, row database.LineRow) (int64, error)
}

// WriteStats counts the rows the writer produced.
type WriteStats struct {
	ContractsCreated int `json:"contracts_created"`
	ContractsSkipped int `json:"contracts_skipped"`
	ContractLines    int `json:"contract_lines"`
	ShipmentsCreated int `json:"shipments_created"`
	ShipmentLines    int `json:"shipment_lines"`
	BranchesLinked   int `json:"branches_linked"`
	BranchesMissing  int `json:"branches_missing"`
}

// WrittenContract holds the ids assigned to one contract and its shipments.
type WrittenContract struct {
	ContractID  int64
	ShipmentIDs map[string]int64
	Skipped     bool
}

// FinalDestination is the structured delivery target stored with each shipment.
type FinalDestination struct {
	Type        string `json:"type"`
	BranchID    string `json:"branch_id,omitempty"`
	WarehouseID string `json:"warehouse_id,omitempty"`
	Destination string `json:"destination,omitempty"`
	Beneficiary string `json:"beneficiary,omitempty"`
}

// Writer inserts aggregated contracts in a fixed order: contract header,
// parties, shipping, terms, products, lines; then for each shipment record
// its header, parties, cargo, logistics, financials, documents and lines.
type Writer struct {
	resolver *masterdata.Resolver
	lookups  *masterdata.Lookups
	batch    string
	stats    WriteStats
	logger   *slog.Logger
}

// NewWriter creates a writer resolving references against lookups.
func NewWriter(resolver *masterdata.Resolver, lookups *masterdata.Lookups, batch string) *Writer {
	return &Writer{
		resolver: resolver,
		lookups:  lookups,
		batch:    batch,
		logger:   slog.Default().With("component", "contract_writer"),
	}
}

// Stats returns the counters accumulated so far.
func (w *Writer) Stats() WriteStats {
	return w.stats
}

// WriteContract persists one contract. A contract number that already
// exists in storage is skipped: rows are never updated by the import.
func (w *Writer) WriteContract(ctx context.Context, store ContractStore, c *importer.AggregatedContract) (*WrittenContract, error) {
	if id, exists := w.lookups.Contracts[c.ContractNo]; exists {
		w.stats.ContractsSkipped++
		w.logger.Warn("Contract already stored, skipping", "contract", c.ContractNo, "id", id)
		return &WrittenContract{ContractID: id, Skipped: true}, nil
	}

	contractID, err := store.InsertContract(ctx, database.ContractRow{
		ContractNo:      c.ContractNo,
		Status:          string(c.Status),
		TotalContainers: c.TotalContainers,
		TotalWeight:     c.TotalWeight,
		ImportBatch:     w.batch,
	})
	if err != nil {
		return nil, err
	}
	w.lookups.Contracts[c.ContractNo] = contractID
	w.stats.ContractsCreated++

	if _, err := store.InsertContractParties(ctx, database.ContractPartiesRow{
		ContractID:  contractID,
		Beneficiary: c.Section.Beneficiary,
		Destination: c.Section.Destination,
		BranchID:    database.NullText(w.branchID(c.ContractNo, c.Section)),
	}); err != nil {
		return nil, err
	}

	polID, polOK, err := w.resolver.ResolvePort(ctx, w.lookups, c.POL)
	if err != nil {
		return nil, err
	}
	podID, podOK, err := w.resolver.ResolvePort(ctx, w.lookups, c.POD)
	if err != nil {
		return nil, err
	}
	if _, err := store.InsertContractShipping(ctx, database.ContractShippingRow{
		ContractID: contractID,
		POLPortID:  database.NullID(polID, polOK),
		PODPortID:  database.NullID(podID, podOK),
	}); err != nil {
		return nil, err
	}

	if _, err := store.InsertContractTerms(ctx, database.ContractTermsRow{
		ContractID: contractID,
		Currency:   c.Currency(),
		Balance:    c.Balance(),
	}); err != nil {
		return nil, err
	}

	if _, err := store.InsertContractProducts(ctx, database.ProductSummaryRow{
		OwnerID:         contractID,
		Summary:         c.ProductSummary(),
		TotalWeight:     c.TotalWeight,
		TotalContainers: c.TotalContainers,
	}); err != nil {
		return nil, err
	}

	for i, line := range c.Lines {
		if _, err := store.InsertContractLine(ctx, lineRow(contractID, i, line)); err != nil {
			return nil, err
		}
		w.stats.ContractLines++
	}

	written := &WrittenContract{ContractID: contractID, ShipmentIDs: make(map[string]int64)}
	for _, r := range c.Shipments() {
		shipmentID, err := w.writeShipment(ctx, store, contractID, c, r)
		if err != nil {
			return nil, fmt.Errorf("shipment %s: %w", r.SN, err)
		}
		written.ShipmentIDs[r.SN] = shipmentID
	}
	return written, nil
}

func (w *Writer) writeShipment(ctx context.Context, store ContractStore, contractID int64, c *importer.AggregatedContract, r *importer.ParsedRecord) (int64, error) {
	shipmentID, err := store.InsertShipment(ctx, database.ShipmentRow{
		ContractID:  contractID,
		SN:          r.SN,
		Status:      string(r.Status),
		StatusText:  r.StatusText,
		SourceLine:  r.LineNo,
		ImportBatch: w.batch,
	})
	if err != nil {
		return 0, err
	}
	w.stats.ShipmentsCreated++

	companyID, companyOK, err := w.resolver.ResolveShippingCompany(ctx, w.lookups, r.Carrier)
	if err != nil {
		return 0, err
	}
	if _, err := store.InsertShipmentParties(ctx, database.ShipmentPartiesRow{
		ShipmentID:        shipmentID,
		ShippingCompanyID: database.NullID(companyID, companyOK),
		Beneficiary:       r.Section.Beneficiary,
	}); err != nil {
		return 0, err
	}

	if _, err := store.InsertShipmentCargo(ctx, database.ProductSummaryRow{
		OwnerID:         shipmentID,
		Summary:         r.ProductSummary(),
		TotalWeight:     r.TotalWeight,
		TotalContainers: r.TotalContainers,
	}); err != nil {
		return 0, err
	}

	pol, pod := firstNonEmpty(r.POL, c.POL), firstNonEmpty(r.POD, c.POD)
	polID, polOK, err := w.resolver.ResolvePort(ctx, w.lookups, pol)
	if err != nil {
		return 0, err
	}
	podID, podOK, err := w.resolver.ResolvePort(ctx, w.lookups, pod)
	if err != nil {
		return 0, err
	}
	destination, err := w.finalDestination(r)
	if err != nil {
		return 0, err
	}
	if _, err := store.InsertShipmentLogistics(ctx, database.ShipmentLogisticsRow{
		ShipmentID:       shipmentID,
		POLPortID:        database.NullID(polID, polOK),
		PODPortID:        database.NullID(podID, podOK),
		ETA:              r.ETA,
		FreeTimeDays:     r.FreeTimeDays,
		FinalDestination: destination,
	}); err != nil {
		return 0, err
	}

	currency := r.BalanceCurrency
	if currency == "" {
		currency = importer.CurrencyUSD
	}
	if _, err := store.InsertShipmentFinancials(ctx, database.ShipmentFinancialsRow{
		ShipmentID: shipmentID,
		Balance:    r.Balance,
		Currency:   currency,
	}); err != nil {
		return 0, err
	}

	if _, err := store.InsertShipmentDocuments(ctx, database.ShipmentDocumentsRow{
		ShipmentID:  shipmentID,
		TrackingRef: r.TrackingRef,
		DocFolder:   r.DocFolder,
	}); err != nil {
		return 0, err
	}

	for i, line := range r.Lines {
		if _, err := store.InsertShipmentLine(ctx, lineRow(shipmentID, i, line)); err != nil {
			return 0, err
		}
		w.stats.ShipmentLines++
	}
	return shipmentID, nil
}

// branchID returns the section's branch when it exists in storage.
func (w *Writer) branchID(contractNo string, s importer.SectionContext) string {
	if s.BranchID == "" {
		return ""
	}
	if !w.lookups.HasBranch(s.BranchID) {
		w.stats.BranchesMissing++
		w.logger.Warn("Branch not found, contract left without branch",
			"contract", contractNo, "section", s.Name, "branch_id", s.BranchID)
		return ""
	}
	w.stats.BranchesLinked++
	return s.BranchID
}

func (w *Writer) finalDestination(r *importer.ParsedRecord) (string, error) {
	fd := FinalDestination{
		Type:        "branch",
		BranchID:    r.Section.BranchID,
		WarehouseID: r.Section.WarehouseID,
		Destination: r.Section.Destination,
		Beneficiary: r.Section.Beneficiary,
	}
	if fd.BranchID == "" || !w.lookups.HasBranch(fd.BranchID) {
		fd.Type = "unassigned"
		fd.BranchID, fd.WarehouseID = "", ""
	}
	data, err := json.Marshal(fd)
	if err != nil {
		return "", fmt.Errorf("failed to encode final destination: %w", err)
	}
	return string(data), nil
}

func lineRow(ownerID int64, idx int, l importer.ProductLine) database.LineRow {
	currency := l.Currency
	if currency == "" {
		currency = importer.CurrencyUSD
	}
	return database.LineRow{
		OwnerID:     ownerID,
		LineNo:      idx + 1,
		ProductText: l.ProductText,
		Weight:      l.Weight,
		UnitPrice:   l.UnitPrice,
		Containers:  l.Containers,
		Currency:    currency,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
