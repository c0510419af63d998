package database

import (
	"context"
	"fmt"
)

// Master-data tables survive a reimport; transactional tables are cleared.
const (
	TablePorts             = "ports"
	TableShippingCompanies = "shipping_companies"
	TableBranches          = "branches"

	TableContracts          = "contracts"
	TableContractParties    = "contract_parties"
	TableContractShipping   = "contract_shipping"
	TableContractTerms      = "contract_terms"
	TableContractProducts   = "contract_products"
	TableContractLines      = "contract_lines"
	TableShipments          = "shipments"
	TableShipmentParties    = "shipment_parties"
	TableShipmentCargo      = "shipment_cargo"
	TableShipmentLogistics  = "shipment_logistics"
	TableShipmentFinancials = "shipment_financials"
	TableShipmentDocuments  = "shipment_documents"
	TableShipmentLines      = "shipment_lines"
	TableDocumentArchive    = "document_archive"
)

// TransactionalTables lists every table the import writes, children first.
// Deleting in this order never violates a foreign key.
var TransactionalTables = []string{
	TableDocumentArchive,
	TableShipmentLines,
	TableShipmentDocuments,
	TableShipmentFinancials,
	TableShipmentLogistics,
	TableShipmentCargo,
	TableShipmentParties,
	TableShipments,
	TableContractLines,
	TableContractProducts,
	TableContractTerms,
	TableContractShipping,
	TableContractParties,
	TableContracts,
}

var knownTables = func() map[string]bool {
	m := map[string]bool{
		TablePorts:             true,
		TableShippingCompanies: true,
		TableBranches:          true,
		migrationsTableName:    true,
	}
	for _, t := range TransactionalTables {
		m[t] = true
	}
	return m
}()

const importSchemaV1 = `
CREATE TABLE IF NOT EXISTS ports (
	id {{PK}},
	name TEXT NOT NULL,
	normalized_name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS shipping_companies (
	id {{PK}},
	name TEXT NOT NULL,
	normalized_name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS branches (
	id TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	warehouse_id TEXT NOT NULL,
	destination TEXT
);

CREATE TABLE IF NOT EXISTS contracts (
	id {{PK}},
	contract_no TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL,
	total_containers INTEGER NOT NULL DEFAULT 0,
	total_weight NUMERIC NOT NULL DEFAULT 0,
	import_batch TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS contract_parties (
	id {{PK}},
	contract_id BIGINT NOT NULL REFERENCES contracts(id),
	beneficiary TEXT,
	destination TEXT,
	branch_id TEXT REFERENCES branches(id)
);

CREATE TABLE IF NOT EXISTS contract_shipping (
	id {{PK}},
	contract_id BIGINT NOT NULL REFERENCES contracts(id),
	pol_port_id BIGINT REFERENCES ports(id),
	pod_port_id BIGINT REFERENCES ports(id)
);

CREATE TABLE IF NOT EXISTS contract_terms (
	id {{PK}},
	contract_id BIGINT NOT NULL REFERENCES contracts(id),
	currency TEXT NOT NULL,
	balance NUMERIC NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS contract_products (
	id {{PK}},
	contract_id BIGINT NOT NULL REFERENCES contracts(id),
	product_summary TEXT NOT NULL,
	total_weight NUMERIC NOT NULL DEFAULT 0,
	total_containers INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS contract_lines (
	id {{PK}},
	contract_id BIGINT NOT NULL REFERENCES contracts(id),
	line_no INTEGER NOT NULL,
	product_text TEXT NOT NULL,
	weight NUMERIC NOT NULL DEFAULT 0,
	unit_price NUMERIC NOT NULL DEFAULT 0,
	containers INTEGER NOT NULL DEFAULT 0,
	currency TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS shipments (
	id {{PK}},
	contract_id BIGINT NOT NULL REFERENCES contracts(id),
	sn TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL,
	status_text TEXT,
	source_line INTEGER,
	import_batch TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS shipment_parties (
	id {{PK}},
	shipment_id BIGINT NOT NULL REFERENCES shipments(id),
	shipping_company_id BIGINT REFERENCES shipping_companies(id),
	beneficiary TEXT
);

CREATE TABLE IF NOT EXISTS shipment_cargo (
	id {{PK}},
	shipment_id BIGINT NOT NULL REFERENCES shipments(id),
	product_summary TEXT NOT NULL,
	total_weight NUMERIC NOT NULL DEFAULT 0,
	total_containers INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS shipment_logistics (
	id {{PK}},
	shipment_id BIGINT NOT NULL REFERENCES shipments(id),
	pol_port_id BIGINT REFERENCES ports(id),
	pod_port_id BIGINT REFERENCES ports(id),
	eta DATE,
	free_time_days INTEGER NOT NULL DEFAULT 0,
	final_destination TEXT
);

CREATE TABLE IF NOT EXISTS shipment_financials (
	id {{PK}},
	shipment_id BIGINT NOT NULL REFERENCES shipments(id),
	balance NUMERIC NOT NULL DEFAULT 0,
	currency TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS shipment_documents (
	id {{PK}},
	shipment_id BIGINT NOT NULL REFERENCES shipments(id),
	tracking_ref TEXT,
	doc_folder TEXT
);

CREATE TABLE IF NOT EXISTS shipment_lines (
	id {{PK}},
	shipment_id BIGINT NOT NULL REFERENCES shipments(id),
	line_no INTEGER NOT NULL,
	product_text TEXT NOT NULL,
	weight NUMERIC NOT NULL DEFAULT 0,
	unit_price NUMERIC NOT NULL DEFAULT 0,
	containers INTEGER NOT NULL DEFAULT 0,
	currency TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS document_archive (
	id {{PK}},
	contract_id BIGINT NOT NULL REFERENCES contracts(id),
	shipment_id BIGINT REFERENCES shipments(id),
	doc_type TEXT NOT NULL,
	original_name TEXT NOT NULL,
	source_path TEXT NOT NULL,
	stored_path TEXT NOT NULL,
	import_batch TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_contract_lines_contract ON contract_lines(contract_id);
CREATE INDEX IF NOT EXISTS idx_shipments_contract ON shipments(contract_id);
CREATE INDEX IF NOT EXISTS idx_shipment_lines_shipment ON shipment_lines(shipment_id);
CREATE INDEX IF NOT EXISTS idx_document_archive_contract ON document_archive(contract_id);
`

// importMigrations applied in order, each exactly once.
var importMigrations = []struct {
	name string
	ddl  string
}{
	{"001_import_schema", importSchemaV1},
}

// InitImportSchema creates the import tables for the database dialect.
func InitImportSchema(ctx context.Context, db *ImportDB) error {
	for _, m := range importMigrations {
		ddl := db.dialect.render(m.ddl)
		err := ensureMigrationApplied(ctx, db, m.name, func(ctx context.Context, db *ImportDB) error {
			return execStatements(ctx, db, ddl)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// execStatements runs a multi-statement script one statement at a time;
// pgx does not accept several statements with the extended protocol.
func execStatements(ctx context.Context, db *ImportDB, script string) error {
	for _, stmt := range splitStatements(script) {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}
