package pipeline

import (
	"context"

	"contractimport/database"
	"contractimport/masterdata"
)

// planningStore stands in for the unit of work during dry-run. It runs the
// same writer code, hands out placeholder ids and only counts rows per table.
type planningStore struct {
	*masterdata.PlanningCreator
	nextID int64
	rows   map[string]int
}

func newPlanningStore() *planningStore {
	return &planningStore{
		PlanningCreator: masterdata.NewPlanningCreator(),
		rows:            make(map[string]int),
	}
}

func (s *planningStore) add(table string) (int64, error) {
	s.rows[table]++
	s.nextID++
	return s.nextID, nil
}

// Rows returns the planned row count per table.
func (s *planningStore) Rows() map[string]int {
	out := make(map[string]int, len(s.rows))
	for k, v := range s.rows {
		out[k] = v
	}
	out[database.TablePorts] += len(s.Ports)
	out[database.TableShippingCompanies] += len(s.Companies)
	return out
}

func (s *planningStore) InsertContract(context.Context, database.ContractRow) (int64, error) {
	return s.add(database.TableContracts)
}

func (s *planningStore) InsertContractParties(context.Context, database.ContractPartiesRow) (int64, error) {
	return s.add(database.TableContractParties)
}

func (s *planningStore) InsertContractShipping(context.Context, database.ContractShippingRow) (int64, error) {
	return s.add(database.TableContractShipping)
}

func (s *planningStore) InsertContractTerms(context.Context, database.ContractTermsRow) (int64, error) {
	return s.add(database.TableContractTerms)
}

func (s *planningStore) InsertContractProducts(context.Context, database.ProductSummaryRow) (int64, error) {
	return s.add(database.TableContractProducts)
}

func (s *planningStore) InsertContractLine(context.Context, database.LineRow) (int64, error) {
	return s.add(database.TableContractLines)
}

func (s *planningStore) InsertShipment(context.Context, database.ShipmentRow) (int64, error) {
	return s.add(database.TableShipments)
}

func (s *planningStore) InsertShipmentParties(context.Context, database.ShipmentPartiesRow) (int64, error) {
	return s.add(database.TableShipmentParties)
}

func (s *planningStore) InsertShipmentCargo(context.Context, database.ProductSummaryRow) (int64, error) {
	return s.add(database.TableShipmentCargo)
}

func (s *planningStore) InsertShipmentLogistics(context.Context, database.ShipmentLogisticsRow) (int64, error) {
	return s.add(database.TableShipmentLogistics)
}

func (s *planningStore) InsertShipmentFinancials(context.Context, database.ShipmentFinancialsRow) (int64, error) {
	return s.add(database.TableShipmentFinancials)
}

func (s *planningStore) InsertShipmentDocuments(context.Context, database.ShipmentDocumentsRow) (int64, error) {
	return s.add(database.TableShipmentDocuments)
}

func (s *planningStore) InsertShipmentLine(context.Context, database.LineRow) (int64, error) {
	return s.add(database.TableShipmentLines)
}

func (s *planningStore) InsertArchivedDocument(context.Context, database.ArchivedDocumentRow) (int64, error) {
	return s.add(database.TableDocumentArchive)
}
