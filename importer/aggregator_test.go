package importer

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(sn string, shipment bool, lines ...ProductLine) *ParsedRecord {
	r := &ParsedRecord{
		SN:          sn,
		BaseNumber:  BaseContractNumber(sn),
		IsShipment:  shipment,
		Lines:       lines,
		TotalWeight: decimal.Zero,
	}
	for _, l := range lines {
		r.TotalContainers += l.Containers
		r.TotalWeight = r.TotalWeight.Add(l.Weight)
	}
	return r
}

func line(product string, weight int64, containers int) ProductLine {
	return ProductLine{
		ProductText: product,
		Weight:      decimal.NewFromInt(weight),
		Containers:  containers,
		Currency:    CurrencyUSD,
	}
}

func TestAggregateMergesLines(t *testing.T) {
	contracts := Aggregate([]*ParsedRecord{
		record("390-A", false, line("سكر", 100, 4)),
		record("390-B", true, line("سكر", 50, 2), line("رز", 20, 1)),
	})

	require.Len(t, contracts, 1)
	c := contracts[0]
	assert.Equal(t, "390", c.ContractNo)
	assert.Equal(t, ContractActive, c.Status)
	require.Len(t, c.Lines, 2)
	assert.Equal(t, "سكر", c.Lines[0].ProductText)
	assert.True(t, decimal.NewFromInt(150).Equal(c.Lines[0].Weight))
	assert.Equal(t, 6, c.Lines[0].Containers)
	assert.Equal(t, "رز", c.Lines[1].ProductText)
	assert.Equal(t, 7, c.TotalContainers)
	assert.True(t, decimal.NewFromInt(170).Equal(c.TotalWeight))
	assert.Len(t, c.Records, 2)
	assert.Len(t, c.Shipments(), 1)
	assert.Equal(t, "سكر + رز", c.ProductSummary())
}

func TestAggregateKeepsFirstNonEmptyPorts(t *testing.T) {
	a := record("12-1", false, line("زيت", 10, 1))
	b := record("12-2", false, line("زيت", 10, 1))
	b.POL, b.POD = "Santos", "Umm Qasr"
	c := record("12-3", false, line("زيت", 10, 1))
	c.POL, c.POD = "Paranagua", "Basra"

	contracts := Aggregate([]*ParsedRecord{a, b, c})
	require.Len(t, contracts, 1)
	assert.Equal(t, "Santos", contracts[0].POL)
	assert.Equal(t, "Umm Qasr", contracts[0].POD)
	assert.Equal(t, ContractPending, contracts[0].Status)
}

func TestAggregateFirstAppearanceOrder(t *testing.T) {
	contracts := Aggregate([]*ParsedRecord{
		record("7", false, line("a", 1, 1)),
		record("3", false, line("b", 1, 1)),
		record("7-2", false, line("a", 1, 1)),
		record("11", false, line("c", 1, 1)),
	})

	var numbers []string
	for _, c := range contracts {
		numbers = append(numbers, c.ContractNo)
	}
	assert.Equal(t, []string{"7", "3", "11"}, numbers)
}

func TestAggregateBalanceAndCurrency(t *testing.T) {
	a := record("5", false, ProductLine{ProductText: "x", Weight: decimal.Zero, Currency: CurrencyEUR})
	a.Balance = decimal.NewFromInt(100)
	b := record("5-1", false, line("x", 0, 0))
	b.Balance = decimal.RequireFromString("50.5")

	contracts := Aggregate([]*ParsedRecord{a, b})
	require.Len(t, contracts, 1)
	assert.True(t, decimal.RequireFromString("150.5").Equal(contracts[0].Balance()))
	assert.Equal(t, CurrencyEUR, contracts[0].Currency())
}

// Contract status and totals must not depend on the order rows arrive in.
func TestAggregateOrderIndependence(t *testing.T) {
	faker := gofakeit.New(42)

	for round := 0; round < 20; round++ {
		var records []*ParsedRecord
		expectActive := make(map[string]bool)
		expectContainers := make(map[string]int)

		contracts := faker.Number(1, 8)
		for c := 0; c < contracts; c++ {
			base := fmt.Sprintf("%d", 100+c)
			rows := faker.Number(1, 5)
			for r := 0; r < rows; r++ {
				shipment := faker.Bool()
				containers := faker.Number(0, 10)
				rec := record(fmt.Sprintf("%s-%d", base, r), shipment,
					line(faker.Fruit(), int64(faker.Number(1, 500)), containers))
				records = append(records, rec)
				expectActive[base] = expectActive[base] || shipment
				expectContainers[base] += containers
			}
		}

		shuffled := make([]*ParsedRecord, len(records))
		copy(shuffled, records)
		faker.ShuffleAnySlice(shuffled)

		for _, input := range [][]*ParsedRecord{records, shuffled} {
			for _, c := range Aggregate(input) {
				want := ContractPending
				if expectActive[c.ContractNo] {
					want = ContractActive
				}
				assert.Equalf(t, want, c.Status, "round %d contract %s", round, c.ContractNo)
				assert.Equalf(t, expectContainers[c.ContractNo], c.TotalContainers, "round %d contract %s", round, c.ContractNo)
			}
		}
	}
}
