package report

import (
	"sort"

	"contractimport/importer"
)

// SectionSummary groups records and contracts by the section they were read in.
type SectionSummary struct {
	Name             string
	Destination      string
	Beneficiary      string
	BranchID         string
	Records          int
	Shipments        int
	Pending          int
	Contracts        int
	ActiveContracts  int
	PendingContracts int
}

// DocumentPlan is what the linker would copy for one record.
type DocumentPlan struct {
	SN         string
	ContractNo string
	Folder     string
	Files      int
	ByType     map[string]int
}

// Plan is what a live run would write, computed without touching storage.
type Plan struct {
	PortsToCreate     []string
	CompaniesToCreate []string
	Rows              map[string]int
	ContractsSkipped  int
	Documents         []DocumentPlan
}

// DocumentFiles returns the number of files the plan would copy.
func (p Plan) DocumentFiles() int {
	n := 0
	for _, d := range p.Documents {
		n += d.Files
	}
	return n
}

// Preview is the dry-run view of an import.
type Preview struct {
	Records          []*importer.ParsedRecord
	Contracts        []*importer.AggregatedContract
	Sections         []SectionSummary
	RecordStatuses   map[importer.Status]int
	ContractStatuses map[importer.ContractStatus]int
	Shipments        int
	Pending          int
	Plan             Plan
}

// BuildPreview groups parsed records and contracts by section and status.
// Sections appear in the order they are first met in the export.
func BuildPreview(records []*importer.ParsedRecord, contracts []*importer.AggregatedContract, plan Plan) *Preview {
	p := &Preview{
		Records:          records,
		Contracts:        contracts,
		RecordStatuses:   make(map[importer.Status]int),
		ContractStatuses: make(map[importer.ContractStatus]int),
		Plan:             plan,
	}

	index := make(map[string]int)
	section := func(ctx importer.SectionContext) *SectionSummary {
		i, ok := index[ctx.Name]
		if !ok {
			p.Sections = append(p.Sections, SectionSummary{
				Name:        ctx.Name,
				Destination: ctx.Destination,
				Beneficiary: ctx.Beneficiary,
				BranchID:    ctx.BranchID,
			})
			i = len(p.Sections) - 1
			index[ctx.Name] = i
		}
		return &p.Sections[i]
	}

	for _, r := range records {
		s := section(r.Section)
		s.Records++
		p.RecordStatuses[r.Status]++
		if r.IsShipment {
			s.Shipments++
			p.Shipments++
		} else {
			s.Pending++
			p.Pending++
		}
	}

	for _, c := range contracts {
		s := section(c.Section)
		s.Contracts++
		p.ContractStatuses[c.Status]++
		if c.Status == importer.ContractActive {
			s.ActiveContracts++
		} else {
			s.PendingContracts++
		}
	}

	sort.Strings(p.Plan.PortsToCreate)
	sort.Strings(p.Plan.CompaniesToCreate)
	return p
}
