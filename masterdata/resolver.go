package masterdata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"contractimport/normalization"
)

// minContainmentLen is the shortest normalized name allowed to match by containment.
const minContainmentLen = 3

// ResolveStats counts how references were resolved during a run.
type ResolveStats struct {
	PortsExact       int `json:"ports_exact"`
	PortsContained   int `json:"ports_contained"`
	PortsCreated     int `json:"ports_created"`
	CompaniesExact   int `json:"companies_exact"`
	CompaniesContain int `json:"companies_contained"`
	CompaniesCreated int `json:"companies_created"`
}

// Linked returns how many references matched an existing row.
func (s ResolveStats) Linked() int {
	return s.PortsExact + s.PortsContained + s.CompaniesExact + s.CompaniesContain
}

// Created returns how many master-data rows were created.
func (s ResolveStats) Created() int {
	return s.PortsCreated + s.CompaniesCreated
}

// Resolver resolves port and shipping-company names to ids: exact match,
// then bidirectional containment, then creation. Created rows go into the
// lookups so the same name resolves to the same id for the rest of the run.
type Resolver struct {
	creator Creator
	fuzzy   *normalization.FuzzyAlgorithms
	stats   ResolveStats
	logger  *slog.Logger
}

// NewResolver creates a resolver backed by creator.
func NewResolver(creator Creator) *Resolver {
	return &Resolver{
		creator: creator,
		fuzzy:   normalization.NewFuzzyAlgorithms(),
		logger:  slog.Default().With("component", "masterdata_resolver"),
	}
}

// Stats returns the resolution counters.
func (r *Resolver) Stats() ResolveStats {
	return r.stats
}

// ResolvePort returns the port id for name. ok is false for an empty name.
func (r *Resolver) ResolvePort(ctx context.Context, l *Lookups, name string) (id int64, ok bool, err error) {
	return r.resolve(ctx, l.Ports, "port", name, r.creator.CreatePort,
		&r.stats.PortsExact, &r.stats.PortsContained, &r.stats.PortsCreated)
}

// ResolveShippingCompany returns the shipping company id for name. ok is
// false for an empty name.
func (r *Resolver) ResolveShippingCompany(ctx context.Context, l *Lookups, name string) (id int64, ok bool, err error) {
	return r.resolve(ctx, l.ShippingCompanies, "shipping_company", name, r.creator.CreateShippingCompany,
		&r.stats.CompaniesExact, &r.stats.CompaniesContain, &r.stats.CompaniesCreated)
}

type createFunc func(ctx context.Context, name, normalized string) (int64, error)

func (r *Resolver) resolve(ctx context.Context, table map[string]int64, kind, name string, create createFunc, exact, contained, created *int) (int64, bool, error) {
	key := normalization.NormalizeName(name)
	if key == "" {
		return 0, false, nil
	}

	if id, found := table[key]; found {
		*exact++
		return id, true, nil
	}

	if match, found := r.bestContainment(table, key); found {
		*contained++
		r.logger.Debug("Resolved by containment", "kind", kind, "name", name, "matched", match)
		return table[match], true, nil
	}

	id, err := create(ctx, name, key)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create %s %q: %w", kind, name, err)
	}
	table[key] = id
	*created++
	r.logger.Info("Created master data", "kind", kind, "name", name, "id", id)
	return id, true, nil
}

// bestContainment returns the existing key that contains key or is contained
// in it. Several hits are ranked by bigram similarity, then by edit distance,
// then by the shorter name, then lexicographically, so the result does not
// depend on map order.
func (r *Resolver) bestContainment(table map[string]int64, key string) (string, bool) {
	candidates := make([]string, 0, len(table))
	for existing := range table {
		if r.fuzzy.ContainsEither(existing, key, minContainmentLen) {
			candidates = append(candidates, existing)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		scores[c] = r.fuzzy.BigramSimilarity(c, key)
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		if da, db := r.fuzzy.DamerauLevenshteinDistance(a, key), r.fuzzy.DamerauLevenshteinDistance(b, key); da != db {
			return da < db
		}
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return candidates[0], true
}
