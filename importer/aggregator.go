package importer

import "github.com/shopspring/decimal"

// Aggregate groups records by base contract number. Contracts come out in
// order of first appearance.
//
// Product lines merge on exact product text, ports keep the first non-empty
// value, and status is promoted to ACTIVE as soon as one record is a
// shipment; it never goes back.
func Aggregate(records []*ParsedRecord) []*AggregatedContract {
	byNumber := make(map[string]*AggregatedContract)
	var ordered []*AggregatedContract

	for _, r := range records {
		c, ok := byNumber[r.BaseNumber]
		if !ok {
			c = &AggregatedContract{
				ContractNo:  r.BaseNumber,
				Status:      ContractPending,
				TotalWeight: decimal.Zero,
				Section:     r.Section,
			}
			byNumber[r.BaseNumber] = c
			ordered = append(ordered, c)
		}
		c.merge(r)
	}
	return ordered
}

func (c *AggregatedContract) merge(r *ParsedRecord) {
	c.Records = append(c.Records, r)

	for _, line := range r.Lines {
		idx := c.lineIndex(line.ProductText)
		if idx < 0 {
			c.Lines = append(c.Lines, line)
			continue
		}
		c.Lines[idx].Weight = c.Lines[idx].Weight.Add(line.Weight)
		c.Lines[idx].Containers += line.Containers
	}

	c.TotalContainers += r.TotalContainers
	c.TotalWeight = c.TotalWeight.Add(r.TotalWeight)

	if c.POL == "" {
		c.POL = r.POL
	}
	if c.POD == "" {
		c.POD = r.POD
	}
	if r.IsShipment {
		c.Status = ContractActive
	}
}

func (c *AggregatedContract) lineIndex(product string) int {
	for i, l := range c.Lines {
		if l.ProductText == product {
			return i
		}
	}
	return -1
}
