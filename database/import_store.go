package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ContractRow is the contract header.
type ContractRow struct {
	ContractNo      string          `db:"contract_no"`
	Status          string          `db:"status"`
	TotalContainers int             `db:"total_containers"`
	TotalWeight     decimal.Decimal `db:"total_weight"`
	ImportBatch     string          `db:"import_batch"`
}

type ContractPartiesRow struct {
	ContractID  int64          `db:"contract_id"`
	Beneficiary string         `db:"beneficiary"`
	Destination string         `db:"destination"`
	BranchID    sql.NullString `db:"branch_id"`
}

type ContractShippingRow struct {
	ContractID int64         `db:"contract_id"`
	POLPortID  sql.NullInt64 `db:"pol_port_id"`
	PODPortID  sql.NullInt64 `db:"pod_port_id"`
}

type ContractTermsRow struct {
	ContractID int64           `db:"contract_id"`
	Currency   string          `db:"currency"`
	Balance    decimal.Decimal `db:"balance"`
}

// ProductSummaryRow is shared by contract_products and shipment_cargo.
type ProductSummaryRow struct {
	OwnerID         int64           `db:"owner_id"`
	Summary         string          `db:"product_summary"`
	TotalWeight     decimal.Decimal `db:"total_weight"`
	TotalContainers int             `db:"total_containers"`
}

// LineRow is shared by contract_lines and shipment_lines.
type LineRow struct {
	OwnerID     int64           `db:"owner_id"`
	LineNo      int             `db:"line_no"`
	ProductText string          `db:"product_text"`
	Weight      decimal.Decimal `db:"weight"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Containers  int             `db:"containers"`
	Currency    string          `db:"currency"`
}

type ShipmentRow struct {
	ContractID  int64  `db:"contract_id"`
	SN          string `db:"sn"`
	Status      string `db:"status"`
	StatusText  string `db:"status_text"`
	SourceLine  int    `db:"source_line"`
	ImportBatch string `db:"import_batch"`
}

type ShipmentPartiesRow struct {
	ShipmentID        int64         `db:"shipment_id"`
	ShippingCompanyID sql.NullInt64 `db:"shipping_company_id"`
	Beneficiary       string        `db:"beneficiary"`
}

type ShipmentLogisticsRow struct {
	ShipmentID       int64         `db:"shipment_id"`
	POLPortID        sql.NullInt64 `db:"pol_port_id"`
	PODPortID        sql.NullInt64 `db:"pod_port_id"`
	ETA              *time.Time    `db:"eta"`
	FreeTimeDays     int           `db:"free_time_days"`
	FinalDestination string        `db:"final_destination"`
}

type ShipmentFinancialsRow struct {
	ShipmentID int64           `db:"shipment_id"`
	Balance    decimal.Decimal `db:"balance"`
	Currency   string          `db:"currency"`
}

type ShipmentDocumentsRow struct {
	ShipmentID  int64  `db:"shipment_id"`
	TrackingRef string `db:"tracking_ref"`
	DocFolder   string `db:"doc_folder"`
}

// ArchivedDocumentRow is a copied document registered against a contract
// and, when known, a shipment.
type ArchivedDocumentRow struct {
	ContractID   int64         `db:"contract_id"`
	ShipmentID   sql.NullInt64 `db:"shipment_id"`
	DocType      string        `db:"doc_type"`
	OriginalName string        `db:"original_name"`
	SourcePath   string        `db:"source_path"`
	StoredPath   string        `db:"stored_path"`
	ImportBatch  string        `db:"import_batch"`
}

// NullID converts an optional id to a nullable column value.
func NullID(id int64, ok bool) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: ok}
}

// NullText converts an empty string to NULL.
func NullText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type masterDataRow struct {
	Name           string `db:"name"`
	NormalizedName string `db:"normalized_name"`
}

// CreatePort inserts a port. UnitOfWork satisfies masterdata.Creator.
func (u *UnitOfWork) CreatePort(ctx context.Context, name, normalized string) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO ports (name, normalized_name) VALUES (:name, :normalized_name)`,
		masterDataRow{Name: name, NormalizedName: normalized})
	if err != nil {
		return 0, fmt.Errorf("failed to insert port: %w", err)
	}
	return id, nil
}

// CreateShippingCompany inserts a shipping company.
func (u *UnitOfWork) CreateShippingCompany(ctx context.Context, name, normalized string) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO shipping_companies (name, normalized_name) VALUES (:name, :normalized_name)`,
		masterDataRow{Name: name, NormalizedName: normalized})
	if err != nil {
		return 0, fmt.Errorf("failed to insert shipping company: %w", err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertContract(ctx context.Context, row ContractRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO contracts (contract_no, status, total_containers, total_weight, import_batch)
		VALUES (:contract_no, :status, :total_containers, :total_weight, :import_batch)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contract %s: %w", row.ContractNo, err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertContractParties(ctx context.Context, row ContractPartiesRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO contract_parties (contract_id, beneficiary, destination, branch_id)
		VALUES (:contract_id, :beneficiary, :destination, :branch_id)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contract parties: %w", err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertContractShipping(ctx context.Context, row ContractShippingRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO contract_shipping (contract_id, pol_port_id, pod_port_id)
		VALUES (:contract_id, :pol_port_id, :pod_port_id)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contract shipping: %w", err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertContractTerms(ctx context.Context, row ContractTermsRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO contract_terms (contract_id, currency, balance)
		VALUES (:contract_id, :currency, :balance)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contract terms: %w", err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertContractProducts(ctx context.Context, row ProductSummaryRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO contract_products (contract_id, product_summary, total_weight, total_containers)
		VALUES (:owner_id, :product_summary, :total_weight, :total_containers)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contract products: %w", err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertContractLine(ctx context.Context, row LineRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO contract_lines (contract_id, line_no, product_text, weight, unit_price, containers, currency)
		VALUES (:owner_id, :line_no, :product_text, :weight, :unit_price, :containers, :currency)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contract line %d: %w", row.LineNo, err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertShipment(ctx context.Context, row ShipmentRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO shipments (contract_id, sn, status, status_text, source_line, import_batch)
		VALUES (:contract_id, :sn, :status, :status_text, :source_line, :import_batch)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shipment %s: %w", row.SN, err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertShipmentParties(ctx context.Context, row ShipmentPartiesRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO shipment_parties (shipment_id, shipping_company_id, beneficiary)
		VALUES (:shipment_id, :shipping_company_id, :beneficiary)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shipment parties: %w", err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertShipmentCargo(ctx context.Context, row ProductSummaryRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO shipment_cargo (shipment_id, product_summary, total_weight, total_containers)
		VALUES (:owner_id, :product_summary, :total_weight, :total_containers)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shipment cargo: %w", err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertShipmentLogistics(ctx context.Context, row ShipmentLogisticsRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO shipment_logistics (shipment_id, pol_port_id, pod_port_id, eta, free_time_days, final_destination)
		VALUES (:shipment_id, :pol_port_id, :pod_port_id, :eta, :free_time_days, :final_destination)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shipment logistics: %w", err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertShipmentFinancials(ctx context.Context, row ShipmentFinancialsRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO shipment_financials (shipment_id, balance, currency)
		VALUES (:shipment_id, :balance, :currency)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shipment financials: %w", err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertShipmentDocuments(ctx context.Context, row ShipmentDocumentsRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO shipment_documents (shipment_id, tracking_ref, doc_folder)
		VALUES (:shipment_id, :tracking_ref, :doc_folder)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shipment documents: %w", err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertShipmentLine(ctx context.Context, row LineRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO shipment_lines (shipment_id, line_no, product_text, weight, unit_price, containers, currency)
		VALUES (:owner_id, :line_no, :product_text, :weight, :unit_price, :containers, :currency)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shipment line %d: %w", row.LineNo, err)
	}
	return id, nil
}

func (u *UnitOfWork) InsertArchivedDocument(ctx context.Context, row ArchivedDocumentRow) (int64, error) {
	id, err := u.insertNamed(ctx, `INSERT INTO document_archive (contract_id, shipment_id, doc_type, original_name, source_path, stored_path, import_batch)
		VALUES (:contract_id, :shipment_id, :doc_type, :original_name, :source_path, :stored_path, :import_batch)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert archived document %s: %w", row.OriginalName, err)
	}
	return id, nil
}
