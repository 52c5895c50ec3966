package allocate_booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
)

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

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDistributeServiceTime(t *testing.T) {
	intervals := []*domain.CapacityInterval{
		mkInterval(1, "2026-09-01T10:00:00Z", 30),
		mkInterval(2, "2026-09-01T10:30:00Z", 30),
		mkInterval(3, "2026-09-01T11:00:00Z", 30),
	}

	tests := []struct {
		name            string
		windowStart     string
		windowEnd       string
		requiredSeconds int64
		want            []int64 // booked seconds per interval, по порядку
		wantIDs         []int64
	}{
		{
			name:            "fits into first interval",
			windowStart:     "2026-09-01T10:00:00Z",
			windowEnd:       "2026-09-01T11:30:00Z",
			requiredSeconds: 900,
			want:            []int64{900},
			wantIDs:         []int64{1},
		},
		{
			name:            "spans intervals greedily left to right",
			windowStart:     "2026-09-01T10:00:00Z",
			windowEnd:       "2026-09-01T11:30:00Z",
			requiredSeconds: 2700,
			want:            []int64{1800, 900},
			wantIDs:         []int64{1, 2},
		},
		{
			name:            "partial window overlap clamps first interval",
			windowStart:     "2026-09-01T10:15:00Z",
			windowEnd:       "2026-09-01T11:30:00Z",
			requiredSeconds: 2700,
			want:            []int64{900, 1800},
			wantIDs:         []int64{1, 2},
		},
		{
			name:            "leftover stays unallocated when intervals run out",
			windowStart:     "2026-09-01T10:00:00Z",
			windowEnd:       "2026-09-01T11:30:00Z",
			requiredSeconds: 10000,
			want:            []int64{1800, 1800, 1800},
			wantIDs:         []int64{1, 2, 3},
		},
		{
			name:            "no overlap yields no allocations",
			windowStart:     "2026-09-01T08:00:00Z",
			windowEnd:       "2026-09-01T09:00:00Z",
			requiredSeconds: 900,
			want:            []int64{},
			wantIDs:         []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocations := distributeServiceTime(intervals, ts(tt.windowStart), ts(tt.windowEnd), tt.requiredSeconds)

			require.Len(t, allocations, len(tt.want))
			for i, alloc := range allocations {
				assert.Equal(t, tt.wantIDs[i], alloc.Interval.ID)
				assert.Equal(t, tt.want[i], alloc.BookedSeconds)
			}
		})
	}
}

func TestDistributeServiceTimeDeterministic(t *testing.T) {
	intervals := []*domain.CapacityInterval{
		mkInterval(1, "2026-09-01T10:00:00Z", 30),
		mkInterval(2, "2026-09-01T10:30:00Z", 30),
	}

	first := distributeServiceTime(intervals, ts("2026-09-01T10:00:00Z"), ts("2026-09-01T11:00:00Z"), 2000)
	second := distributeServiceTime(intervals, ts("2026-09-01T10:00:00Z"), ts("2026-09-01T11:00:00Z"), 2000)

	require.Equal(t, first, second)
}

func TestProportionalDeductions(t *testing.T) {
	tests := []struct {
		name          string
		remaining     []int64
		bookedSeconds int64
		want          []int64
	}{
		{
			name:          "proportional to current shares",
			remaining:     []int64{1800, 900},
			bookedSeconds: 900,
			want:          []int64{600, 300},
		},
		{
			name:          "floor loses remainder",
			remaining:     []int64{1, 1, 1},
			bookedSeconds: 100,
			want:          []int64{33, 33, 33},
		},
		{
			name:          "zero total remaining",
			remaining:     []int64{0, 0},
			bookedSeconds: 900,
			want:          []int64{0, 0},
		},
		{
			name:          "single contribution takes everything",
			remaining:     []int64{1800},
			bookedSeconds: 1200,
			want:          []int64{1200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]*domain.ContributionInterval, len(tt.remaining))
			for i, r := range tt.remaining {
				rows[i] = &domain.ContributionInterval{ID: int64(i + 1), RemainingSeconds: r}
			}

			got := proportionalDeductions(rows, tt.bookedSeconds)
			assert.Equal(t, tt.want, got)
		})
	}
}
