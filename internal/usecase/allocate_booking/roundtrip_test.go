package allocate_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/booking"
	capacityRepo "github.com/m04kA/SMC-CapacityService/internal/infra/storage/capacity"
	"github.com/m04kA/SMC-CapacityService/internal/integrations/laneservice"
	"github.com/m04kA/SMC-CapacityService/internal/usecase/reverse_booking"
)

// bookingLedger stateful in-memory леджер, разделяемый между
// аллокацией и отменой: одна и та же мутация состояния видна обоим use case
type bookingLedger struct {
	intervals []*domain.CapacityInterval
	contribs  []*domain.ContributionInterval
	totals    map[int64]int64 // intervalID -> total_booked_seconds

	nextBookingID  int64
	nextIntervalID int64
	bookings       map[int64]*domain.Booking
	bookingRows    []*domain.BookingInterval
	allocations    []*domain.BookingAllocation
}

func newBookingLedger(intervals []*domain.CapacityInterval, contribs []*domain.ContributionInterval) *bookingLedger {
	return &bookingLedger{
		intervals: intervals,
		contribs:  contribs,
		totals:    make(map[int64]int64),
		bookings:  make(map[int64]*domain.Booking),
	}
}

func (l *bookingLedger) GetOverlapping(_ context.Context, start, end time.Time) ([]*domain.CapacityInterval, error) {
	result := make([]*domain.CapacityInterval, 0)
	for _, iv := range l.intervals {
		if iv.Overlaps(start, end) {
			result = append(result, iv)
		}
	}
	return result, nil
}

func (l *bookingLedger) GetByLaneAndInterval(_ context.Context, laneID, intervalID int64) ([]*domain.ContributionInterval, error) {
	result := make([]*domain.ContributionInterval, 0)
	for _, c := range l.contribs {
		if c.LaneID == laneID && c.IntervalID == intervalID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (l *bookingLedger) DecrementRemaining(_ context.Context, id, seconds int64) error {
	for _, c := range l.contribs {
		if c.ID == id {
			c.RemainingSeconds -= seconds
			if c.RemainingSeconds < 0 {
				c.RemainingSeconds = 0
			}
			return nil
		}
	}
	return nil
}

func (l *bookingLedger) RestoreRemaining(_ context.Context, id, seconds int64) error {
	for _, c := range l.contribs {
		if c.ID == id {
			c.RemainingSeconds += seconds
			if c.RemainingSeconds > c.OriginalSeconds {
				c.RemainingSeconds = c.OriginalSeconds
			}
			return nil
		}
	}
	return nil
}

func (l *bookingLedger) GetForUpdate(_ context.Context, laneID, intervalID int64) (*domain.LaneIntervalCapacity, error) {
	total, ok := l.totals[intervalID]
	if !ok {
		return nil, capacityRepo.ErrCapacityRowNotFound
	}
	return &domain.LaneIntervalCapacity{LaneID: laneID, IntervalID: intervalID, TotalBookedSeconds: total}, nil
}

func (l *bookingLedger) AddBooked(_ context.Context, _ int64, intervalID, seconds int64) error {
	l.totals[intervalID] += seconds
	return nil
}

func (l *bookingLedger) SubtractBooked(_ context.Context, _ int64, intervalID, seconds int64) error {
	l.totals[intervalID] -= seconds
	if l.totals[intervalID] < 0 {
		l.totals[intervalID] = 0
	}
	return nil
}

func (l *bookingLedger) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	l.nextBookingID++
	created := *b
	created.ID = l.nextBookingID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	l.bookings[created.ID] = &created
	return &created, nil
}

func (l *bookingLedger) CreateIntervals(_ context.Context, intervals []*domain.BookingInterval) ([]*domain.BookingInterval, error) {
	for _, bi := range intervals {
		l.nextIntervalID++
		bi.ID = l.nextIntervalID
		l.bookingRows = append(l.bookingRows, bi)
	}
	return intervals, nil
}

func (l *bookingLedger) CreateAllocations(_ context.Context, allocations []*domain.BookingAllocation) error {
	l.allocations = append(l.allocations, allocations...)
	return nil
}

func (l *bookingLedger) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := l.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (l *bookingLedger) GetIntervalsByBookingID(_ context.Context, bookingID int64) ([]*domain.BookingInterval, error) {
	result := make([]*domain.BookingInterval, 0)
	for _, bi := range l.bookingRows {
		if bi.BookingID == bookingID {
			result = append(result, bi)
		}
	}
	return result, nil
}

func (l *bookingLedger) GetAllocationsByBookingID(_ context.Context, bookingID int64) ([]*domain.BookingAllocation, error) {
	rowIDs := make(map[int64]bool)
	for _, bi := range l.bookingRows {
		if bi.BookingID == bookingID {
			rowIDs[bi.ID] = true
		}
	}
	result := make([]*domain.BookingAllocation, 0)
	for _, a := range l.allocations {
		if rowIDs[a.BookingIntervalID] {
			result = append(result, a)
		}
	}
	return result, nil
}

func (l *bookingLedger) Cancel(_ context.Context, id int64, reason string) error {
	b, ok := l.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = domain.StatusCancelled
	if reason != "" {
		b.CancellationReason = &reason
	}
	return nil
}

func (l *bookingLedger) remaining(contribID int64) int64 {
	for _, c := range l.contribs {
		if c.ID == contribID {
			return c.RemainingSeconds
		}
	}
	return -1
}

// Аллокация с последующей отменой возвращает леджер ровно
// в исходное состояние: остатки вкладов и кэш занятых секунд
func TestAllocateThenReverseRestoresLedger(t *testing.T) {
	ledger := newBookingLedger(
		[]*domain.CapacityInterval{mkInterval(1, "2026-09-01T10:00:00Z", 30)},
		[]*domain.ContributionInterval{
			{ID: 11, ContributionID: 1, LaneID: 1, IntervalID: 1, OriginalSeconds: 1800, RemainingSeconds: 1800},
			{ID: 12, ContributionID: 2, LaneID: 1, IntervalID: 1, OriginalSeconds: 900, RemainingSeconds: 900},
		},
	)
	lanes := &fakeLaneClient{lane: &laneservice.Lane{ID: 1, Name: "Lane A"}}

	allocate := NewUseCase(ledger, ledger, ledger, ledger, lanes, &fakeTxManager{}, nopLogger{})
	reverse := reverse_booking.NewUseCase(ledger, ledger, ledger, lanes, &fakeTxManager{}, nopLogger{})

	resp, err := allocate.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// После аллокации: 600/300 списано, кэш занятых секунд вырос на 900
	assert.Equal(t, int64(1200), ledger.remaining(11))
	assert.Equal(t, int64(600), ledger.remaining(12))
	assert.Equal(t, int64(900), ledger.totals[1])

	err = reverse.Execute(context.Background(), &reverse_booking.Request{
		BookingID: resp.ID,
		UserID:    7,
		Reason:    "передумал",
	})
	require.NoError(t, err)

	// После отмены леджер вернулся к исходному состоянию
	assert.Equal(t, int64(1800), ledger.remaining(11))
	assert.Equal(t, int64(900), ledger.remaining(12))
	assert.Equal(t, int64(0), ledger.totals[1])

	cancelled, err := ledger.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
}
