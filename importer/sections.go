package importer

import (
	"strings"

	"contractimport/normalization"
)

// SectionDef describes one destination/beneficiary section of the export.
// A line containing any of the markers switches the active section.
type SectionDef struct {
	Name        string   `yaml:"name"`
	Markers     []string `yaml:"markers"`
	Beneficiary string   `yaml:"beneficiary"`
	Destination string   `yaml:"destination"`
	BranchID    string   `yaml:"branch_id"`
	WarehouseID string   `yaml:"warehouse_id"`
}

// DefaultSections is the curated section table used when no YAML file is configured.
func DefaultSections() []SectionDef {
	return []SectionDef{
		{
			Name:        "baghdad",
			Markers:     []string{"مستودع بغداد", "فرع بغداد", "BAGHDAD WAREHOUSE"},
			Beneficiary: "شركة الرافدين للتجارة العامة",
			Destination: "بغداد",
			BranchID:    "BR-BGW",
			WarehouseID: "WH-BGW-01",
		},
		{
			Name:        "basra",
			Markers:     []string{"مستودع البصرة", "فرع البصرة", "BASRA WAREHOUSE"},
			Beneficiary: "شركة الرافدين للتجارة العامة",
			Destination: "البصرة",
			BranchID:    "BR-BSR",
			WarehouseID: "WH-BSR-01",
		},
		{
			Name:        "erbil",
			Markers:     []string{"مستودع أربيل", "فرع أربيل", "ERBIL WAREHOUSE"},
			Beneficiary: "شركة دجلة للاستيراد",
			Destination: "أربيل",
			BranchID:    "BR-EBL",
			WarehouseID: "WH-EBL-01",
		},
	}
}

// BranchLookup resolves a section label to its branch and warehouse ids.
type BranchLookup interface {
	LookupBranch(label string) (branchID, warehouseID string, ok bool)
}

// SectionTracker remembers which section the scanner is currently in.
type SectionTracker struct {
	defs    []SectionDef
	markers [][]string
	current int
}

// NewSectionTracker starts in the first configured section.
func NewSectionTracker(defs []SectionDef) *SectionTracker {
	t := &SectionTracker{defs: defs, markers: make([][]string, len(defs))}
	for i, d := range defs {
		for _, m := range d.Markers {
			if nm := normalization.NormalizeName(m); nm != "" {
				t.markers[i] = append(t.markers[i], nm)
			}
		}
	}
	return t
}

// Observe switches the active section when the line carries a section
// marker and reports whether it did.
func (t *SectionTracker) Observe(line string) bool {
	if len(t.defs) == 0 {
		return false
	}
	text := normalization.NormalizeName(strings.ReplaceAll(line, ";", " "))
	if text == "" {
		return false
	}
	for i, ms := range t.markers {
		for _, m := range ms {
			if strings.Contains(text, m) {
				t.current = i
				return true
			}
		}
	}
	return false
}

// Current returns the active section. Branch and warehouse ids are left to
// the branch table.
func (t *SectionTracker) Current() SectionContext {
	if len(t.defs) == 0 {
		return SectionContext{}
	}
	d := t.defs[t.current]
	return SectionContext{
		Name:        d.Name,
		Beneficiary: d.Beneficiary,
		Destination: d.Destination,
	}
}
