package importer

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency codes recognised in the export.
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// ContractStatus is the derived status of an aggregated contract.
type ContractStatus string

const (
	ContractActive  ContractStatus = "ACTIVE"
	ContractPending ContractStatus = "PENDING"
)

// ProductLine is one distinguishable product mention of a row.
type ProductLine struct {
	ProductText string          `json:"product_text"`
	Weight      decimal.Decimal `json:"weight_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Containers  int             `json:"container_count"`
	Currency    string          `json:"currency"`
}

// SectionContext is the destination/beneficiary section active when a row was read.
type SectionContext struct {
	Name        string `json:"name"`
	Beneficiary string `json:"beneficiary"`
	Destination string `json:"destination"`
	BranchID    string `json:"branch_id"`
	WarehouseID string `json:"warehouse_id"`
}

// ParsedRecord is one data row of the export.
type ParsedRecord struct {
	LineNo     int    `json:"line_no"`
	SN         string `json:"sn"`
	BaseNumber string `json:"base_number"`
	IsShipment bool   `json:"is_shipment"`
	Status     Status `json:"status"`
	StatusText string `json:"status_text"`

	Lines           []ProductLine   `json:"lines"`
	TotalContainers int             `json:"total_containers"`
	TotalWeight     decimal.Decimal `json:"total_weight"`

	POL string     `json:"pol"`
	POD string     `json:"pod"`
	ETA *time.Time `json:"eta"`

	Balance         decimal.Decimal `json:"balance"`
	BalanceCurrency string          `json:"balance_currency"`
	TrackingRef     string          `json:"tracking_ref"`
	Carrier         string          `json:"carrier"`
	FreeTimeDays    int             `json:"free_time_days"`
	DocFolder       string          `json:"doc_folder"`

	Section SectionContext `json:"section"`
}

// ProductSummary joins the distinct product labels of the record.
func (r *ParsedRecord) ProductSummary() string {
	return joinProductLabels(r.Lines)
}

// AggregatedContract groups every record sharing a base contract number.
type AggregatedContract struct {
	ContractNo      string          `json:"contract_no"`
	Status          ContractStatus  `json:"status"`
	Lines           []ProductLine   `json:"lines"`
	TotalContainers int             `json:"total_containers"`
	TotalWeight     decimal.Decimal `json:"total_weight"`
	POL             string          `json:"pol"`
	POD             string          `json:"pod"`
	Section         SectionContext  `json:"section"`
	Records         []*ParsedRecord `json:"-"`
}

// Shipments returns the constituent records flagged as shipments, in input order.
func (c *AggregatedContract) Shipments() []*ParsedRecord {
	var out []*ParsedRecord
	for _, r := range c.Records {
		if r.IsShipment {
			out = append(out, r)
		}
	}
	return out
}

// Currency returns the currency of the first priced line, USD otherwise.
func (c *AggregatedContract) Currency() string {
	for _, l := range c.Lines {
		if l.Currency != "" {
			return l.Currency
		}
	}
	return CurrencyUSD
}

// Balance sums the balance of all constituent records.
func (c *AggregatedContract) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, r := range c.Records {
		total = total.Add(r.Balance)
	}
	return total
}

// ProductSummary joins the merged product labels.
func (c *AggregatedContract) ProductSummary() string {
	return joinProductLabels(c.Lines)
}

func joinProductLabels(lines []ProductLine) string {
	seen := make(map[string]bool, len(lines))
	out := ""
	for _, l := range lines {
		if seen[l.ProductText] {
			continue
		}
		seen[l.ProductText] = true
		if out != "" {
			out += " + "
		}
		out += l.ProductText
	}
	return out
}
