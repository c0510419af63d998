package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"contractimport/importer"
)

var (
	baghdad = importer.SectionContext{Name: "baghdad", Destination: "بغداد", BranchID: "BR-BGW"}
	basra   = importer.SectionContext{Name: "basra", Destination: "البصرة", BranchID: "BR-BSR"}
)

func sampleRecords() []*importer.ParsedRecord {
	return []*importer.ParsedRecord{
		{
			LineNo: 3, SN: "390", BaseNumber: "390", IsShipment: true, Status: importer.StatusSailed,
			Lines:           []importer.ProductLine{{ProductText: "سكر", Weight: decimal.NewFromInt(250), Containers: 10, Currency: "USD"}},
			TotalContainers: 10, TotalWeight: decimal.NewFromInt(250), POL: "MERSIN", POD: "UMM QASR",
			Section: baghdad,
		},
		{
			LineNo: 4, SN: "390-B", BaseNumber: "390", Status: importer.StatusPlanning,
			Lines:           []importer.ProductLine{{ProductText: "سكر", Weight: decimal.NewFromInt(50), Containers: 2}},
			TotalContainers: 2, TotalWeight: decimal.NewFromInt(50),
			Section: baghdad,
		},
		{
			LineNo: 7, SN: "512", BaseNumber: "512", Status: importer.StatusPlanning,
			Lines:           []importer.ProductLine{{ProductText: "رز", Weight: decimal.NewFromInt(25), Containers: 1}},
			TotalContainers: 1, TotalWeight: decimal.NewFromInt(25),
			Section: basra,
		},
	}
}

func TestBuildPreviewGroupsBySection(t *testing.T) {
	records := sampleRecords()
	contracts := importer.Aggregate(records)

	p := BuildPreview(records, contracts, Plan{
		PortsToCreate: []string{"UMM QASR", "MERSIN"},
		Documents:     []DocumentPlan{{SN: "390", Files: 2}, {SN: "512", Files: 1}},
	})

	require.Len(t, p.Sections, 2)
	assert.Equal(t, "baghdad", p.Sections[0].Name)
	assert.Equal(t, 2, p.Sections[0].Records)
	assert.Equal(t, 1, p.Sections[0].Shipments)
	assert.Equal(t, 1, p.Sections[0].Pending)
	assert.Equal(t, 1, p.Sections[0].Contracts)
	assert.Equal(t, 1, p.Sections[0].ActiveContracts)

	assert.Equal(t, "basra", p.Sections[1].Name)
	assert.Equal(t, 1, p.Sections[1].PendingContracts)

	assert.Equal(t, 1, p.Shipments)
	assert.Equal(t, 2, p.Pending)
	assert.Equal(t, 2, p.RecordStatuses[importer.StatusPlanning])
	assert.Equal(t, 1, p.ContractStatuses[importer.ContractActive])
	assert.Equal(t, []string{"MERSIN", "UMM QASR"}, p.Plan.PortsToCreate)
	assert.Equal(t, 3, p.Plan.DocumentFiles())
}

func TestRenderText(t *testing.T) {
	records := sampleRecords()
	p := BuildPreview(records, importer.Aggregate(records), Plan{
		Rows:          map[string]int{"contracts": 2, "shipments": 1},
		PortsToCreate: []string{"MERSIN"},
	})

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, p, 1))
	out := buf.String()

	assert.Contains(t, out, "=== Dry Run Preview ===")
	assert.Contains(t, out, "Contracts: 2 (ACTIVE 1, PENDING 1)")
	assert.Contains(t, out, "BR-BGW")
	assert.Contains(t, out, "MERSIN")
	assert.Contains(t, out, "first 1 of 2")
	// sample size limits the contract listing
	assert.Contains(t, out, "390")
	assert.NotContains(t, out[strings.Index(out, "=== Sample Contracts"):], "512")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
	assert.Equal(t, "سكر ...", Truncate("سكر أبيض ناعم", 7))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

func TestWriteWorkbook(t *testing.T) {
	records := sampleRecords()
	p := BuildPreview(records, importer.Aggregate(records), Plan{})

	path := filepath.Join(t.TempDir(), "preview.xlsx")
	require.NoError(t, WriteWorkbook(path, p))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetContracts, sheetRecords, sheetSections}, f.GetSheetList())

	rows, err := f.GetRows(sheetContracts)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Contract", rows[0][0])
	assert.Equal(t, "390", rows[1][0])
	assert.Equal(t, "ACTIVE", rows[1][1])

	rows, err = f.GetRows(sheetRecords)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, "390-B", rows[2][1])
	assert.Equal(t, "pending", rows[2][3])
}
