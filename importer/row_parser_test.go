package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBranches map[string][2]string

func (s stubBranches) LookupBranch(label string) (string, string, bool) {
	ids, ok := s[label]
	return ids[0], ids[1], ok
}

type stubFolders map[string]string

func (s stubFolders) Match(base string) (string, bool) {
	f, ok := s[base]
	return f, ok
}

// row builds a 13 column export line.
// Order: SN, product, weight, containers, price, POL, POD, ETA, status, balance, carrier A, carrier B, free time.
func row(cols ...string) string {
	for len(cols) < 13 {
		cols = append(cols, "")
	}
	return strings.Join(cols, ";")
}

func newTestParser() *RowParser {
	return NewRowParser(ParserConfig{
		Branches: stubBranches{
			"baghdad": {"BR-BGW", "WH-BGW-01"},
			"basra":   {"BR-BSR", "WH-BSR-01"},
		},
		TargetYear: 2026,
	})
}

func TestShipmentClassification(t *testing.T) {
	tests := []struct {
		name     string
		eta      string
		carrierA string
		carrierB string
		want     bool
	}{
		{"date only", "2025-12-23", "MSC", "", true},
		{"tracking only", "", "MSC", "MEDU1234567", true},
		{"date and tracking", "2025/9/29", "MSC", "MEDU1234567", true},
		{"month placeholder only", "شهر 11", "", "", true},
		{"neither", "قريبا", "MSC", "-", false},
		{"placeholder tracking", "", "MSC", "لا يوجد", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser()
			rec := p.ParseLine(1, row("390", "سكر", "100", "4", "500", "Santos", "Umm Qasr", tt.eta, "", "", tt.carrierA, tt.carrierB))
			require.NotNil(t, rec)
			assert.Equal(t, tt.want, rec.IsShipment)
		})
	}
}

func TestIsShipmentRule(t *testing.T) {
	assert.True(t, IsShipment(true, ""))
	assert.True(t, IsShipment(false, "MEDU1234567"))
	assert.True(t, IsShipment(true, "MEDU1234567"))
	assert.False(t, IsShipment(false, ""))
	assert.False(t, IsShipment(false, "n/a"))
}

func TestParseLineFields(t *testing.T) {
	p := newTestParser()
	rec := p.ParseLine(7, row("390-A", "سكر أبيض", "150+100", "6+4", "€ 610", "Santos", "Umm Qasr",
		"2025/9/29", "in transit", "1,250", "MEDU1234567", "MSC", "14 يوم"))
	require.NotNil(t, rec)

	assert.Equal(t, 7, rec.LineNo)
	assert.Equal(t, "390-A", rec.SN)
	assert.Equal(t, "390", rec.BaseNumber)
	assert.Equal(t, "MSC", rec.Carrier)
	assert.Equal(t, "MEDU1234567", rec.TrackingRef)
	assert.Equal(t, "2025-09-29", FormatDate(rec.ETA))
	assert.Equal(t, StatusSailed, rec.Status)
	assert.Equal(t, 14, rec.FreeTimeDays)
	assert.True(t, decimal.NewFromInt(1250).Equal(rec.Balance))
	assert.Equal(t, 10, rec.TotalContainers)
	assert.True(t, decimal.NewFromInt(250).Equal(rec.TotalWeight))

	require.Len(t, rec.Lines, 2)
	assert.Equal(t, "سكر أبيض", rec.Lines[0].ProductText)
	assert.Equal(t, 6, rec.Lines[0].Containers)
	assert.Equal(t, 4, rec.Lines[1].Containers)
	assert.True(t, decimal.NewFromInt(150).Equal(rec.Lines[0].Weight))
	assert.True(t, decimal.NewFromInt(100).Equal(rec.Lines[1].Weight))
	assert.Equal(t, CurrencyEUR, rec.Lines[0].Currency)
	assert.True(t, decimal.NewFromInt(610).Equal(rec.Lines[1].UnitPrice))
}

func TestParseLinePairsProductLabels(t *testing.T) {
	p := newTestParser()
	rec := p.ParseLine(1, row("12", "سكر + رز", "150+100", "6+4"))
	require.NotNil(t, rec)
	require.Len(t, rec.Lines, 2)
	assert.Equal(t, "سكر", rec.Lines[0].ProductText)
	assert.Equal(t, "رز", rec.Lines[1].ProductText)
	assert.Equal(t, "سكر + رز", rec.ProductSummary())
}

func TestParseLineSkips(t *testing.T) {
	p := newTestParser()
	lines := []string{
		"",
		";;;;;;",
		row("SN", "Product", "Weight"),
		row("رقم العقد", "المادة"),
		"1;سكر;100",
		row("5", "", "10", "1"),
		row("6", "رز", "10", "1"),
	}

	records, stats := p.ParseLines(lines)
	require.Len(t, records, 1)
	assert.Equal(t, "6", records[0].SN)
	assert.Equal(t, 7, stats.LinesRead)
	assert.Equal(t, 2, stats.BlankLines)
	assert.Equal(t, 2, stats.HeaderLines)
	assert.Equal(t, 1, stats.ShortLines)
	assert.Equal(t, 1, stats.MissingProduct)
	assert.Equal(t, 6, stats.Skipped())
}

func TestParseLineSections(t *testing.T) {
	p := newTestParser()
	records, stats := p.ParseLines([]string{
		row("1", "سكر", "10", "1"),
		"مستودع البصرة;;;;;;",
		row("2", "رز", "10", "1"),
		"BAGHDAD WAREHOUSE",
		row("3", "زيت", "10", "1"),
	})

	require.Len(t, records, 3)
	assert.Equal(t, 2, stats.SectionLines)

	assert.Equal(t, "baghdad", records[0].Section.Name)
	assert.Equal(t, "BR-BGW", records[0].Section.BranchID)
	assert.Equal(t, "WH-BGW-01", records[0].Section.WarehouseID)

	assert.Equal(t, "basra", records[1].Section.Name)
	assert.Equal(t, "البصرة", records[1].Section.Destination)
	assert.Equal(t, "BR-BSR", records[1].Section.BranchID)

	assert.Equal(t, "baghdad", records[2].Section.Name)
}

func TestParseLineDataRowWithSectionMarker(t *testing.T) {
	p := newTestParser()
	records, stats := p.ParseLines([]string{
		row("690", "سكر", "10", "1"),
		row("700", "سكر", "50", "2", "600", "Mersin", "Umm Qasr", "2025-12-01", "sailed", "0", "MSC", "MEDU7654321", "14", "تسليم مستودع البصرة"),
		row("701", "رز", "10", "1"),
	})

	require.Len(t, records, 3)
	assert.Equal(t, 0, stats.SectionLines)
	assert.Equal(t, 1, stats.SectionRows)
	assert.Zero(t, stats.Skipped())

	assert.Equal(t, "baghdad", records[0].Section.Name)
	assert.Equal(t, "700", records[1].SN)
	assert.True(t, records[1].IsShipment)
	assert.Equal(t, "basra", records[1].Section.Name)
	assert.Equal(t, "BR-BSR", records[1].Section.BranchID)
	assert.Equal(t, "basra", records[2].Section.Name)
}

func TestParseLineUnknownBranchLeavesIDsEmpty(t *testing.T) {
	p := newTestParser()
	records, _ := p.ParseLines([]string{
		"مستودع أربيل",
		row("1", "سكر", "10", "1"),
	})
	require.Len(t, records, 1)
	assert.Equal(t, "erbil", records[0].Section.Name)
	assert.Empty(t, records[0].Section.BranchID)
	assert.Empty(t, records[0].Section.WarehouseID)
}

func TestParseLineDuplicateSN(t *testing.T) {
	p := newTestParser()
	records, stats := p.ParseLines([]string{
		row("390", "سكر", "10", "1"),
		row("390", "سكر", "10", "1"),
		row("390", "سكر", "10", "1"),
		row("", "رز", "10", "1"),
	})

	require.Len(t, records, 4)
	assert.Equal(t, "390", records[0].SN)
	assert.Equal(t, "390_2", records[1].SN)
	assert.Equal(t, "390_3", records[2].SN)
	assert.Equal(t, "390", records[2].BaseNumber)
	assert.Equal(t, "ROW-4", records[3].SN)
	assert.Equal(t, 2, stats.DuplicateSNs)
}

func TestParseLineMatchesFolders(t *testing.T) {
	p := NewRowParser(ParserConfig{Folders: stubFolders{"390": "/docs/390 سكر"}})
	rec := p.ParseLine(1, row("390-B", "سكر", "10", "1"))
	require.NotNil(t, rec)
	assert.Equal(t, "/docs/390 سكر", rec.DocFolder)
	assert.Equal(t, 1, p.Stats().FoldersMatched)
}

func TestParseLineCountsShipments(t *testing.T) {
	p := newTestParser()
	_, stats := p.ParseLines([]string{
		row("1", "سكر", "10", "1", "", "", "", "2025-12-23"),
		row("2", "سكر", "10", "1"),
		row("3", "سكر", "10", "1", "", "", "", "", "", "", "MSC", "MEDU1234567"),
	})
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 2, stats.Shipments)
	assert.Equal(t, 1, stats.Pending)
}
