package allocate_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	capacityRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/capacity"
	"github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
	"github.com/m04kA/SMC-CapacityService/pkg/txmanager"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeTxManager struct {
	err error
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

type fakeIntervalRepo struct {
	intervals []*domain.CapacityInterval
}

func (r *fakeIntervalRepo) GetOverlapping(_ context.Context, start, end time.Time) ([]*domain.CapacityInterval, error) {
	result := make([]*domain.CapacityInterval, 0)
	for _, iv := range r.intervals {
		if iv.Overlaps(start, end) {
			result = append(result, iv)
		}
	}
	return result, nil
}

type decrementCall struct {
	id      int64
	seconds int64
}

type fakeContributionRepo struct {
	byInterval map[int64][]*domain.ContributionInterval
	decrements []decrementCall
}

func (r *fakeContributionRepo) GetByLaneAndInterval(_ context.Context, _, intervalID int64) ([]*domain.ContributionInterval, error) {
	return r.byInterval[intervalID], nil
}

func (r *fakeContributionRepo) DecrementRemaining(_ context.Context, id, seconds int64) error {
	r.decrements = append(r.decrements, decrementCall{id: id, seconds: seconds})
	return nil
}

type addBookedCall struct {
	laneID     int64
	intervalID int64
	seconds    int64
}

type fakeCapacityRepo struct {
	totals map[int64]int64 // intervalID -> total_booked_seconds
	added  []addBookedCall
}

func (r *fakeCapacityRepo) GetForUpdate(_ context.Context, laneID, intervalID int64) (*domain.LaneIntervalCapacity, error) {
	total, ok := r.totals[intervalID]
	if !ok {
		return nil, capacityRepo.ErrCapacityRowNotFound
	}
	return &domain.LaneIntervalCapacity{LaneID: laneID, IntervalID: intervalID, TotalBookedSeconds: total}, nil
}

func (r *fakeCapacityRepo) AddBooked(_ context.Context, laneID, intervalID, seconds int64) error {
	r.added = append(r.added, addBookedCall{laneID: laneID, intervalID: intervalID, seconds: seconds})
	return nil
}

type fakeBookingRepo struct {
	nextID      int64
	created     *domain.Booking
	intervals   []*domain.BookingInterval
	allocations []*domain.BookingAllocation
}

func (r *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.nextID++
	created := *b
	created.ID = r.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.created = &created
	return &created, nil
}

func (r *fakeBookingRepo) CreateIntervals(_ context.Context, intervals []*domain.BookingInterval) ([]*domain.BookingInterval, error) {
	for i, bi := range intervals {
		bi.ID = int64(100 + i)
	}
	r.intervals = intervals
	return intervals, nil
}

func (r *fakeBookingRepo) CreateAllocations(_ context.Context, allocations []*domain.BookingAllocation) error {
	r.allocations = allocations
	return nil
}

type fakeLaneClient struct {
	lane *laneservice.Lane
	err  error
}

func (c *fakeLaneClient) GetLane(_ context.Context, _ int64) (*laneservice.Lane, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.lane, nil
}

func openLane(id int64) *laneservice.Lane {
	return &laneservice.Lane{ID: id, Name: "Lane A"}
}

func newTestUseCase(
	intervals *fakeIntervalRepo,
	contribs *fakeContributionRepo,
	capacity *fakeCapacityRepo,
	bookings *fakeBookingRepo,
	lanes *fakeLaneClient,
	tx *fakeTxManager,
) *UseCase {
	return NewUseCase(intervals, contribs, capacity, bookings, lanes, tx, nopLogger{})
}

func validRequest() *Request {
	return &Request{
		UserID:          7,
		LaneID:          1,
		WindowStart:     ts("2026-09-01T10:00:00Z"),
		WindowEnd:       ts("2026-09-01T11:00:00Z"),
		RequiredSeconds: 900,
	}
}

func TestAllocateBookingSuccess(t *testing.T) {
	intervals := &fakeIntervalRepo{intervals: []*domain.CapacityInterval{
		mkInterval(1, "2026-09-01T10:00:00Z", 30),
	}}
	contribs := &fakeContributionRepo{byInterval: map[int64][]*domain.ContributionInterval{
		1: {
			{ID: 11, ContributionID: 1, LaneID: 1, IntervalID: 1, OriginalSeconds: 1800, RemainingSeconds: 1800},
			{ID: 12, ContributionID: 2, LaneID: 1, IntervalID: 1, OriginalSeconds: 900, RemainingSeconds: 900},
		},
	}}
	capacity := &fakeCapacityRepo{totals: map[int64]int64{}}
	bookings := &fakeBookingRepo{}

	uc := newTestUseCase(intervals, contribs, capacity, bookings, &fakeLaneClient{lane: openLane(1)}, &fakeTxManager{})

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	require.Len(t, resp.Intervals, 1)
	assert.Equal(t, int64(900), resp.Intervals[0].BookedSeconds)

	// Списание пропорционально текущим остаткам: 1800:900 -> 600:300
	require.Len(t, contribs.decrements, 2)
	assert.Equal(t, decrementCall{id: 11, seconds: 600}, contribs.decrements[0])
	assert.Equal(t, decrementCall{id: 12, seconds: 300}, contribs.decrements[1])

	// Кэш занятых секунд растёт на всю аллокацию интервала
	require.Len(t, capacity.added, 1)
	assert.Equal(t, addBookedCall{laneID: 1, intervalID: 1, seconds: 900}, capacity.added[0])

	// Раскладка списаний привязана к созданной строке undo-лога
	require.Len(t, bookings.allocations, 2)
	for _, a := range bookings.allocations {
		assert.Equal(t, bookings.intervals[0].ID, a.BookingIntervalID)
	}
	assert.Equal(t, int64(600), bookings.allocations[0].DeductedSeconds)
	assert.Equal(t, int64(300), bookings.allocations[1].DeductedSeconds)
}

func TestAllocateBookingSpansIntervals(t *testing.T) {
	intervals := &fakeIntervalRepo{intervals: []*domain.CapacityInterval{
		mkInterval(1, "2026-09-01T10:00:00Z", 30),
		mkInterval(2, "2026-09-01T10:30:00Z", 30),
	}}
	contribs := &fakeContributionRepo{byInterval: map[int64][]*domain.ContributionInterval{
		1: {{ID: 11, LaneID: 1, IntervalID: 1, OriginalSeconds: 1800, RemainingSeconds: 1800}},
		2: {{ID: 21, LaneID: 1, IntervalID: 2, OriginalSeconds: 1800, RemainingSeconds: 1800}},
	}}
	capacity := &fakeCapacityRepo{totals: map[int64]int64{}}
	bookings := &fakeBookingRepo{}

	uc := newTestUseCase(intervals, contribs, capacity, bookings, &fakeLaneClient{lane: openLane(1)}, &fakeTxManager{})

	req := validRequest()
	req.RequiredSeconds = 2700

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Intervals, 2)
	assert.Equal(t, int64(1800), resp.Intervals[0].BookedSeconds)
	assert.Equal(t, int64(900), resp.Intervals[1].BookedSeconds)
}

func TestAllocateBookingLaneNotFound(t *testing.T) {
	uc := newTestUseCase(
		&fakeIntervalRepo{}, &fakeContributionRepo{}, &fakeCapacityRepo{}, &fakeBookingRepo{},
		&fakeLaneClient{err: laneservice.ErrLaneNotFound}, &fakeTxManager{},
	)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrLaneNotFound)
}

func TestAllocateBookingLaneClosed(t *testing.T) {
	lane := openLane(1)
	lane.ClosedForBookings = true

	uc := newTestUseCase(
		&fakeIntervalRepo{}, &fakeContributionRepo{}, &fakeCapacityRepo{}, &fakeBookingRepo{},
		&fakeLaneClient{lane: lane}, &fakeTxManager{},
	)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrLaneClosed)
}

func TestAllocateBookingIntervalsMissing(t *testing.T) {
	uc := newTestUseCase(
		&fakeIntervalRepo{}, &fakeContributionRepo{}, &fakeCapacityRepo{}, &fakeBookingRepo{},
		&fakeLaneClient{lane: openLane(1)}, &fakeTxManager{},
	)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrIntervalsMissing)
}

func TestAllocateBookingCapacityExceeded(t *testing.T) {
	intervals := &fakeIntervalRepo{intervals: []*domain.CapacityInterval{
		mkInterval(1, "2026-09-01T10:00:00Z", 30),
	}}
	// Остаток 1800, но 1500 уже занято: доступно 300 < требуемых 900
	contribs := &fakeContributionRepo{byInterval: map[int64][]*domain.ContributionInterval{
		1: {{ID: 11, LaneID: 1, IntervalID: 1, OriginalSeconds: 1800, RemainingSeconds: 1800}},
	}}
	capacity := &fakeCapacityRepo{totals: map[int64]int64{1: 1500}}

	uc := newTestUseCase(intervals, contribs, capacity, &fakeBookingRepo{},
		&fakeLaneClient{lane: openLane(1)}, &fakeTxManager{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Empty(t, contribs.decrements)
	assert.Empty(t, capacity.added)
}

func TestAllocateBookingConcurrencyConflict(t *testing.T) {
	uc := newTestUseCase(
		&fakeIntervalRepo{}, &fakeContributionRepo{}, &fakeCapacityRepo{}, &fakeBookingRepo{},
		&fakeLaneClient{lane: openLane(1)}, &fakeTxManager{err: txmanager.ErrSerializationFailure},
	)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}

func TestAllocateBookingValidation(t *testing.T) {
	uc := newTestUseCase(
		&fakeIntervalRepo{}, &fakeContributionRepo{}, &fakeCapacityRepo{}, &fakeBookingRepo{},
		&fakeLaneClient{lane: openLane(1)}, &fakeTxManager{},
	)

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero user", func(r *Request) { r.UserID = 0 }},
		{"zero lane", func(r *Request) { r.LaneID = 0 }},
		{"inverted window", func(r *Request) { r.WindowStart, r.WindowEnd = r.WindowEnd, r.WindowStart }},
		{"zero required seconds", func(r *Request) { r.RequiredSeconds = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
