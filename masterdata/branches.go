package masterdata

import (
	"contractimport/importer"
	"contractimport/normalization"
)

// BranchEntry is one curated destination warehouse.
type BranchEntry struct {
	Label       string
	BranchID    string
	WarehouseID string
	Destination string
}

// BranchTable maps section labels to pre-existing branch and warehouse ids.
// The mapping is static on purpose: destination warehouses are never created
// by the import.
type BranchTable struct {
	entries []BranchEntry
	byKey   map[string]int
}

// NewBranchTable builds the table from section definitions. A section is
// reachable by its name, its destination and each of its markers.
func NewBranchTable(defs []importer.SectionDef) *BranchTable {
	t := &BranchTable{byKey: make(map[string]int)}
	for _, d := range defs {
		if d.BranchID == "" {
			continue
		}
		t.entries = append(t.entries, BranchEntry{
			Label:       d.Name,
			BranchID:    d.BranchID,
			WarehouseID: d.WarehouseID,
			Destination: d.Destination,
		})
		idx := len(t.entries) - 1
		keys := append([]string{d.Name, d.Destination}, d.Markers...)
		for _, k := range keys {
			if nk := normalization.NormalizeName(k); nk != "" {
				if _, taken := t.byKey[nk]; !taken {
					t.byKey[nk] = idx
				}
			}
		}
	}
	return t
}

// LookupBranch implements importer.BranchLookup.
func (t *BranchTable) LookupBranch(label string) (branchID, warehouseID string, ok bool) {
	idx, found := t.byKey[normalization.NormalizeName(label)]
	if !found {
		return "", "", false
	}
	e := t.entries[idx]
	return e.BranchID, e.WarehouseID, true
}

// Entries returns the curated branches in configuration order.
func (t *BranchTable) Entries() []BranchEntry {
	out := make([]BranchEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
