package query_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/internal/infra/storage/contribution"
	"github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
	"github.com/m04kA/SMC-CapacityService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeIntervalRepo struct {
	intervals []*domain.CapacityInterval
}

func (r *fakeIntervalRepo) GetByDate(_ context.Context, _ time.Time) ([]*domain.CapacityInterval, error) {
	return r.intervals, nil
}

type fakeContributionRepo struct {
	sums []contribution.RemainingSum
}

func (r *fakeContributionRepo) SumRemainingByLaneIntervals(_ context.Context, _, _ []int64) ([]contribution.RemainingSum, error) {
	return r.sums, nil
}

type fakeCapacityRepo struct {
	totals []*domain.LaneIntervalCapacity
}

func (r *fakeCapacityRepo) GetTotals(_ context.Context, _, _ []int64) ([]*domain.LaneIntervalCapacity, error) {
	return r.totals, nil
}

type fakeLaneClient struct {
	lanes map[int64]*laneservice.Lane
	order []int64
}

func (c *fakeLaneClient) GetLane(_ context.Context, laneID int64) (*laneservice.Lane, error) {
	lane, ok := c.lanes[laneID]
	if !ok {
		return nil, laneservice.ErrLaneNotFound
	}
	return lane, nil
}

func (c *fakeLaneClient) ListLanes(_ context.Context) ([]*laneservice.Lane, error) {
	result := make([]*laneservice.Lane, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.lanes[id])
	}
	return result, nil
}

func mkLane(id int64, name string, capabilities ...string) *laneservice.Lane {
	return &laneservice.Lane{
		ID:           id,
		Name:         name,
		Capabilities: capabilities,
		OpenTime:     ptr.Ptr("08:00"),
		CloseTime:    ptr.Ptr("20:00"),
	}
}

func mkInterval(id int64, start string, minutes int) *domain.CapacityInterval {
	startsAt, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return &domain.CapacityInterval{
		ID:       id,
		Date:     startsAt.Truncate(24 * time.Hour),
		StartsAt: startsAt,
		EndsAt:   startsAt.Add(time.Duration(minutes) * time.Minute),
	}
}

func day() time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
}

func TestQueryAvailabilityFormula(t *testing.T) {
	lanes := &fakeLaneClient{
		lanes: map[int64]*laneservice.Lane{1: mkLane(1, "Lane A")},
		order: []int64{1},
	}
	intervals := &fakeIntervalRepo{intervals: []*domain.CapacityInterval{
		mkInterval(10, "2026-09-01T10:00:00Z", 30),
		mkInterval(11, "2026-09-01T10:30:00Z", 30),
	}}
	contribs := &fakeContributionRepo{sums: []contribution.RemainingSum{
		{LaneID: 1, IntervalID: 10, RemainingSeconds: 1800},
		{LaneID: 1, IntervalID: 11, RemainingSeconds: 1800},
	}}
	capacity := &fakeCapacityRepo{totals: []*domain.LaneIntervalCapacity{
		{LaneID: 1, IntervalID: 10, TotalBookedSeconds: 600},
		{LaneID: 1, IntervalID: 11, TotalBookedSeconds: 1200},
	}}

	uc := NewUseCase(intervals, contribs, capacity, lanes, nopLogger{})

	// available = remaining - booked: интервал 10 даёт 1200, интервал 11 даёт 600
	resp, err := uc.Execute(context.Background(), &Request{Date: day(), RequiredSeconds: 900})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(10), resp.Slots[0].IntervalID)
	assert.Equal(t, int64(1200), resp.Slots[0].AvailableSeconds)
	assert.Equal(t, "Lane A", resp.Slots[0].LaneName)
}

func TestQueryAvailabilityCapabilityGapExcludesLane(t *testing.T) {
	lanes := &fakeLaneClient{
		lanes: map[int64]*laneservice.Lane{
			1: mkLane(1, "Lane A", "lift"),
			2: mkLane(2, "Lane B", "lift", "diagnostics"),
		},
		order: []int64{1, 2},
	}
	intervals := &fakeIntervalRepo{intervals: []*domain.CapacityInterval{
		mkInterval(10, "2026-09-01T10:00:00Z", 30),
	}}
	contribs := &fakeContributionRepo{sums: []contribution.RemainingSum{
		{LaneID: 1, IntervalID: 10, RemainingSeconds: 1800},
		{LaneID: 2, IntervalID: 10, RemainingSeconds: 1800},
	}}

	uc := NewUseCase(intervals, contribs, &fakeCapacityRepo{}, lanes, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{
		Date:                 day(),
		RequiredSeconds:      900,
		RequiredCapabilities: []string{"lift", "diagnostics"},
	})
	require.NoError(t, err)

	// Пост без полного набора тегов исключается целиком
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(2), resp.Slots[0].LaneID)
}

func TestQueryAvailabilityClosedLaneExcluded(t *testing.T) {
	closed := mkLane(1, "Lane A")
	closed.ClosedForBookings = true

	lanes := &fakeLaneClient{
		lanes: map[int64]*laneservice.Lane{1: closed},
		order: []int64{1},
	}

	uc := NewUseCase(&fakeIntervalRepo{}, &fakeContributionRepo{}, &fakeCapacityRepo{}, lanes, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{Date: day(), RequiredSeconds: 900})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestQueryAvailabilityOpenHoursFilter(t *testing.T) {
	lane := mkLane(1, "Lane A")
	lane.OpenTime = ptr.Ptr("11:00")
	lane.CloseTime = ptr.Ptr("18:00")

	lanes := &fakeLaneClient{
		lanes: map[int64]*laneservice.Lane{1: lane},
		order: []int64{1},
	}
	intervals := &fakeIntervalRepo{intervals: []*domain.CapacityInterval{
		mkInterval(10, "2026-09-01T10:30:00Z", 30), // до открытия
		mkInterval(11, "2026-09-01T11:00:00Z", 30),
	}}
	contribs := &fakeContributionRepo{sums: []contribution.RemainingSum{
		{LaneID: 1, IntervalID: 10, RemainingSeconds: 1800},
		{LaneID: 1, IntervalID: 11, RemainingSeconds: 1800},
	}}

	uc := NewUseCase(intervals, contribs, &fakeCapacityRepo{}, lanes, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{Date: day(), RequiredSeconds: 900})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(11), resp.Slots[0].IntervalID)
}

func TestQueryAvailabilityNoIntervalsIsEmptyNotError(t *testing.T) {
	lanes := &fakeLaneClient{
		lanes: map[int64]*laneservice.Lane{1: mkLane(1, "Lane A")},
		order: []int64{1},
	}

	uc := NewUseCase(&fakeIntervalRepo{}, &fakeContributionRepo{}, &fakeCapacityRepo{}, lanes, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{Date: day(), RequiredSeconds: 900})
	require.NoError(t, err)
	assert.NotNil(t, resp.Slots)
	assert.Empty(t, resp.Slots)
}

func TestQueryAvailabilityCandidateOrderPreserved(t *testing.T) {
	lanes := &fakeLaneClient{
		lanes: map[int64]*laneservice.Lane{
			1: mkLane(1, "Lane A"),
			2: mkLane(2, "Lane B"),
			3: mkLane(3, "Lane C"),
		},
		order: []int64{1, 2, 3},
	}
	intervals := &fakeIntervalRepo{intervals: []*domain.CapacityInterval{
		mkInterval(10, "2026-09-01T10:00:00Z", 30),
	}}
	contribs := &fakeContributionRepo{sums: []contribution.RemainingSum{
		{LaneID: 1, IntervalID: 10, RemainingSeconds: 1800},
		{LaneID: 2, IntervalID: 10, RemainingSeconds: 1800},
		{LaneID: 3, IntervalID: 10, RemainingSeconds: 1800},
	}}

	uc := NewUseCase(intervals, contribs, &fakeCapacityRepo{}, lanes, nopLogger{})

	// Явный список кандидатов задаёт порядок слотов; неизвестный id пропускается
	resp, err := uc.Execute(context.Background(), &Request{
		Date:             day(),
		RequiredSeconds:  900,
		CandidateLaneIDs: []int64{3, 99, 1},
	})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 2)
	assert.Equal(t, int64(3), resp.Slots[0].LaneID)
	assert.Equal(t, int64(1), resp.Slots[1].LaneID)
}

func TestQueryAvailabilityValidation(t *testing.T) {
	uc := NewUseCase(&fakeIntervalRepo{}, &fakeContributionRepo{}, &fakeCapacityRepo{},
		&fakeLaneClient{}, nopLogger{})

	tests := []struct {
		name string
		req  *Request
	}{
		{"zero date", &Request{RequiredSeconds: 900}},
		{"zero required seconds", &Request{Date: day()}},
		{"negative candidate id", &Request{Date: day(), RequiredSeconds: 900, CandidateLaneIDs: []int64{-1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
