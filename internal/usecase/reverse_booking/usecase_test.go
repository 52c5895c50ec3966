package reverse_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/booking"
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

type fakeBookingRepo struct {
	booking     *domain.Booking
	intervals   []*domain.BookingInterval
	allocations []*domain.BookingAllocation

	cancelledID     int64
	cancelledReason string
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *r.booking
	return &copied, nil
}

func (r *fakeBookingRepo) GetIntervalsByBookingID(_ context.Context, _ int64) ([]*domain.BookingInterval, error) {
	return r.intervals, nil
}

func (r *fakeBookingRepo) GetAllocationsByBookingID(_ context.Context, _ int64) ([]*domain.BookingAllocation, error) {
	return r.allocations, nil
}

func (r *fakeBookingRepo) Cancel(_ context.Context, id int64, reason string) error {
	r.cancelledID = id
	r.cancelledReason = reason
	return nil
}

type restoreCall struct {
	id      int64
	seconds int64
}

type fakeContributionRepo struct {
	restores []restoreCall
}

func (r *fakeContributionRepo) RestoreRemaining(_ context.Context, id, seconds int64) error {
	r.restores = append(r.restores, restoreCall{id: id, seconds: seconds})
	return nil
}

type subtractCall struct {
	laneID     int64
	intervalID int64
	seconds    int64
}

type fakeCapacityRepo struct {
	subtractions []subtractCall
}

func (r *fakeCapacityRepo) SubtractBooked(_ context.Context, laneID, intervalID, seconds int64) error {
	r.subtractions = append(r.subtractions, subtractCall{laneID: laneID, intervalID: intervalID, seconds: seconds})
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

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:                 42,
		UserID:             7,
		LaneID:             1,
		WindowStartsAt:     mustTime("2026-09-01T10:00:00Z"),
		WindowEndsAt:       mustTime("2026-09-01T11:00:00Z"),
		ServiceTimeSeconds: 900,
		Status:             domain.StatusConfirmed,
	}
}

func newTestUseCase(
	bookings *fakeBookingRepo,
	contribs *fakeContributionRepo,
	capacity *fakeCapacityRepo,
	lanes *fakeLaneClient,
	tx *fakeTxManager,
	now time.Time,
) *UseCase {
	uc := NewUseCase(bookings, contribs, capacity, lanes, tx, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: now}
	return uc
}

func TestReverseBookingReplaysAllocationsExactly(t *testing.T) {
	bookings := &fakeBookingRepo{
		booking: confirmedBooking(),
		intervals: []*domain.BookingInterval{
			{ID: 100, BookingID: 42, LaneID: 1, IntervalID: 1, BookedSeconds: 600},
			{ID: 101, BookingID: 42, LaneID: 1, IntervalID: 2, BookedSeconds: 300},
		},
		allocations: []*domain.BookingAllocation{
			{ID: 1, BookingIntervalID: 100, ContributionIntervalID: 11, DeductedSeconds: 400},
			{ID: 2, BookingIntervalID: 100, ContributionIntervalID: 12, DeductedSeconds: 200},
			{ID: 3, BookingIntervalID: 101, ContributionIntervalID: 21, DeductedSeconds: 300},
		},
	}
	contribs := &fakeContributionRepo{}
	capacity := &fakeCapacityRepo{}

	uc := newTestUseCase(bookings, contribs, capacity,
		&fakeLaneClient{lane: &laneservice.Lane{ID: 1}}, &fakeTxManager{},
		mustTime("2026-09-01T08:00:00Z"))

	err := uc.Execute(context.Background(), &Request{BookingID: 42, UserID: 7, Reason: "передумал"})
	require.NoError(t, err)

	// Возврат воспроизводит сохранённую раскладку списаний ровно теми же значениями
	require.Len(t, contribs.restores, 3)
	assert.Equal(t, restoreCall{id: 11, seconds: 400}, contribs.restores[0])
	assert.Equal(t, restoreCall{id: 12, seconds: 200}, contribs.restores[1])
	assert.Equal(t, restoreCall{id: 21, seconds: 300}, contribs.restores[2])

	// Кэш занятых секунд уменьшается на значения undo-лога
	require.Len(t, capacity.subtractions, 2)
	assert.Equal(t, subtractCall{laneID: 1, intervalID: 1, seconds: 600}, capacity.subtractions[0])
	assert.Equal(t, subtractCall{laneID: 1, intervalID: 2, seconds: 300}, capacity.subtractions[1])

	assert.Equal(t, int64(42), bookings.cancelledID)
	assert.Equal(t, "передумал", bookings.cancelledReason)
}

func TestReverseBookingNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeContributionRepo{}, &fakeCapacityRepo{},
		&fakeLaneClient{err: laneservice.ErrLaneNotFound}, &fakeTxManager{},
		mustTime("2026-09-01T08:00:00Z"))

	err := uc.Execute(context.Background(), &Request{BookingID: 42, UserID: 7})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestReverseBookingAccessDenied(t *testing.T) {
	bookings := &fakeBookingRepo{booking: confirmedBooking()}

	uc := newTestUseCase(bookings, &fakeContributionRepo{}, &fakeCapacityRepo{},
		&fakeLaneClient{lane: &laneservice.Lane{ID: 1}}, &fakeTxManager{},
		mustTime("2026-09-01T08:00:00Z"))

	err := uc.Execute(context.Background(), &Request{BookingID: 42, UserID: 99})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestReverseBookingAlreadyCancelled(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusCancelled
	bookings := &fakeBookingRepo{booking: booking}

	uc := newTestUseCase(bookings, &fakeContributionRepo{}, &fakeCapacityRepo{},
		&fakeLaneClient{lane: &laneservice.Lane{ID: 1}}, &fakeTxManager{},
		mustTime("2026-09-01T08:00:00Z"))

	err := uc.Execute(context.Background(), &Request{BookingID: 42, UserID: 7})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestReverseBookingCompletedCannotCancel(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusCompleted
	bookings := &fakeBookingRepo{booking: booking}

	uc := newTestUseCase(bookings, &fakeContributionRepo{}, &fakeCapacityRepo{},
		&fakeLaneClient{lane: &laneservice.Lane{ID: 1}}, &fakeTxManager{},
		mustTime("2026-09-01T08:00:00Z"))

	err := uc.Execute(context.Background(), &Request{BookingID: 42, UserID: 7})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestReverseBookingCancellationWindowClosed(t *testing.T) {
	bookings := &fakeBookingRepo{booking: confirmedBooking()}
	lane := &laneservice.Lane{ID: 1, CancellationCutoffMinutes: 60}

	// Окно начинается в 10:00, дедлайн отмены 09:00, сейчас 09:30
	uc := newTestUseCase(bookings, &fakeContributionRepo{}, &fakeCapacityRepo{},
		&fakeLaneClient{lane: lane}, &fakeTxManager{},
		mustTime("2026-09-01T09:30:00Z"))

	err := uc.Execute(context.Background(), &Request{BookingID: 42, UserID: 7})
	assert.ErrorIs(t, err, ErrCancellationWindowClosed)
	assert.Zero(t, bookings.cancelledID)
}

func TestReverseBookingConcurrencyConflict(t *testing.T) {
	bookings := &fakeBookingRepo{booking: confirmedBooking()}

	uc := newTestUseCase(bookings, &fakeContributionRepo{}, &fakeCapacityRepo{},
		&fakeLaneClient{lane: &laneservice.Lane{ID: 1}}, &fakeTxManager{err: txmanager.ErrSerializationFailure},
		mustTime("2026-09-01T08:00:00Z"))

	err := uc.Execute(context.Background(), &Request{BookingID: 42, UserID: 7})
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}
