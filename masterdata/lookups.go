package masterdata

import "context"

// Lookups holds the master data known to one import run, keyed by
// normalized name. It is loaded once after the clear and extended in place
// as the resolver creates new rows.
type Lookups struct {
	Ports             map[string]int64
	ShippingCompanies map[string]int64
	// Branches maps branch id to its label; branches are never created here.
	Branches  map[string]string
	Contracts map[string]int64
}

// NewLookups returns empty lookup maps.
func NewLookups() *Lookups {
	return &Lookups{
		Ports:             make(map[string]int64),
		ShippingCompanies: make(map[string]int64),
		Branches:          make(map[string]string),
		Contracts:         make(map[string]int64),
	}
}

// HasBranch reports whether the branch id exists in storage.
func (l *Lookups) HasBranch(id string) bool {
	_, ok := l.Branches[id]
	return ok
}

// Creator creates master-data rows on a miss. The live path binds it to the
// open unit of work, dry-run uses PlanningCreator.
type Creator interface {
	CreatePort(ctx context.Context, name, normalized string) (int64, error)
	CreateShippingCompany(ctx context.Context, name, normalized string) (int64, error)
}

// PlanningCreator hands out negative placeholder ids and records what a
// live run would create.
type PlanningCreator struct {
	next      int64
	Ports     []string
	Companies []string
}

// NewPlanningCreator creates an empty planning creator.
func NewPlanningCreator() *PlanningCreator {
	return &PlanningCreator{}
}

func (p *PlanningCreator) CreatePort(_ context.Context, name, _ string) (int64, error) {
	p.Ports = append(p.Ports, name)
	return p.allocate(), nil
}

func (p *PlanningCreator) CreateShippingCompany(_ context.Context, name, _ string) (int64, error) {
	p.Companies = append(p.Companies, name)
	return p.allocate(), nil
}

func (p *PlanningCreator) allocate() int64 {
	p.next--
	return p.next
}
