package masterdata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"contractimport/importer"
)

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) CreatePort(ctx context.Context, name, normalized string) (int64, error) {
	args := m.Called(ctx, name, normalized)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCreator) CreateShippingCompany(ctx context.Context, name, normalized string) (int64, error) {
	args := m.Called(ctx, name, normalized)
	return args.Get(0).(int64), args.Error(1)
}

func TestResolvePortIsIdempotent(t *testing.T) {
	ctx := context.Background()
	creator := new(mockCreator)
	creator.On("CreatePort", ctx, "Umm Qasr", "umm qasr").Return(int64(41), nil).Once()

	r := NewResolver(creator)
	l := NewLookups()

	first, ok, err := r.ResolvePort(ctx, l, "Umm Qasr")
	require.NoError(t, err)
	require.True(t, ok)

	second, ok, err := r.ResolvePort(ctx, l, "  UMM   qasr ")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, int64(41), first)
	assert.Equal(t, first, second)
	assert.Len(t, l.Ports, 1)
	assert.Equal(t, 1, r.Stats().PortsCreated)
	assert.Equal(t, 1, r.Stats().PortsExact)
	creator.AssertExpectations(t)
}

func TestResolvePortByContainment(t *testing.T) {
	creator := new(mockCreator)
	r := NewResolver(creator)
	l := NewLookups()
	l.Ports["ميناء ام قصر"] = 7
	l.Ports["santos"] = 8

	id, ok, err := r.ResolvePort(context.Background(), l, "أم قصر")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	id, _, err = r.ResolvePort(context.Background(), l, "Port of Santos Brazil")
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)

	assert.Equal(t, 2, r.Stats().PortsContained)
	assert.Equal(t, 0, r.Stats().Created())
	creator.AssertNotCalled(t, "CreatePort", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveContainmentPrefersClosestName(t *testing.T) {
	r := NewResolver(NewPlanningCreator())
	l := NewLookups()
	l.ShippingCompanies["msc"] = 1
	l.ShippingCompanies["msc mediterranean shipping"] = 2
	l.ShippingCompanies["msc mediterranean"] = 3

	for i := 0; i < 10; i++ {
		id, _, err := r.ResolveShippingCompany(context.Background(), l, "MSC Mediterranean Co")
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
	}
}

func TestResolveShortNamesDoNotMatchByContainment(t *testing.T) {
	planner := NewPlanningCreator()
	r := NewResolver(planner)
	l := NewLookups()
	l.ShippingCompanies["cma cgm"] = 5

	id, ok, err := r.ResolveShippingCompany(context.Background(), l, "CM")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Less(t, id, int64(0))
	assert.Equal(t, []string{"CM"}, planner.Companies)
}

func TestResolveEmptyName(t *testing.T) {
	creator := new(mockCreator)
	r := NewResolver(creator)

	id, ok, err := r.ResolvePort(context.Background(), NewLookups(), "   ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, id)
	creator.AssertNotCalled(t, "CreatePort", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveCreateErrorPropagates(t *testing.T) {
	ctx := context.Background()
	creator := new(mockCreator)
	creator.On("CreateShippingCompany", ctx, "Hapag-Lloyd", "hapag lloyd").Return(int64(0), errors.New("insert failed"))

	r := NewResolver(creator)
	l := NewLookups()
	_, _, err := r.ResolveShippingCompany(ctx, l, "Hapag-Lloyd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert failed")
	assert.Empty(t, l.ShippingCompanies)
}

func TestPlanningCreatorIDsAreDistinct(t *testing.T) {
	p := NewPlanningCreator()
	a, _ := p.CreatePort(context.Background(), "a", "a")
	b, _ := p.CreateShippingCompany(context.Background(), "b", "b")
	assert.NotEqual(t, a, b)
	assert.Less(t, a, int64(0))
	assert.Less(t, b, int64(0))
}

func TestBranchTable(t *testing.T) {
	table := NewBranchTable(importer.DefaultSections())

	branch, warehouse, ok := table.LookupBranch("basra")
	require.True(t, ok)
	assert.Equal(t, "BR-BSR", branch)
	assert.Equal(t, "WH-BSR-01", warehouse)

	branch, _, ok = table.LookupBranch("مستودع أربيل")
	require.True(t, ok)
	assert.Equal(t, "BR-EBL", branch)

	branch, _, ok = table.LookupBranch("بغداد")
	require.True(t, ok)
	assert.Equal(t, "BR-BGW", branch)

	_, _, ok = table.LookupBranch("موصل")
	assert.False(t, ok)

	assert.Len(t, table.Entries(), 3)
}

func TestBranchTableSkipsSectionsWithoutBranch(t *testing.T) {
	table := NewBranchTable([]importer.SectionDef{{Name: "transit", Markers: []string{"ترانزيت"}}})
	_, _, ok := table.LookupBranch("transit")
	assert.False(t, ok)
	assert.Empty(t, table.Entries())
}
