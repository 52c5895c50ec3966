package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CapacityService/internal/domain"
	"github.com/m04kA/SMC-CapacityService/pkg/types"
)

func mustTimeString(s string) types.TimeString {
	v, err := types.NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mkInterval(id int64, start string, minutes int) *domain.CapacityInterval {
	startsAt := mustTime(start)
	return &domain.CapacityInterval{
		ID:       id,
		Date:     startsAt.Truncate(24 * time.Hour),
		StartsAt: startsAt,
		EndsAt:   startsAt.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestSliceDay(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	intervals := sliceDay(day, 8*60, 10*60, 30)

	require.Len(t, intervals, 4)
	assert.Equal(t, mustTime("2026-09-01T08:00:00Z"), intervals[0].StartsAt)
	assert.Equal(t, mustTime("2026-09-01T08:30:00Z"), intervals[0].EndsAt)
	assert.Equal(t, mustTime("2026-09-01T09:30:00Z"), intervals[3].StartsAt)
	assert.Equal(t, mustTime("2026-09-01T10:00:00Z"), intervals[3].EndsAt)

	for _, iv := range intervals {
		assert.Equal(t, day, iv.Date)
	}
}

func TestSliceDayDropsPartialTail(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// Окно 08:00-09:45: последние 15 минут не вмещают целый срез
	intervals := sliceDay(day, 8*60, 9*60+45, 30)

	require.Len(t, intervals, 3)
	assert.Equal(t, mustTime("2026-09-01T09:30:00Z"), intervals[2].EndsAt)
}

func TestDeriveContributionRows(t *testing.T) {
	intervals := []*domain.CapacityInterval{
		mkInterval(1, "2026-09-01T10:00:00Z", 30),
		mkInterval(2, "2026-09-01T10:30:00Z", 30),
		mkInterval(3, "2026-09-01T11:00:00Z", 30),
	}

	tests := []struct {
		name             string
		startsAt         string
		endsAt           string
		availableSeconds int64
		wantIDs          []int64
		wantShares       []int64
	}{
		{
			name:             "even split at full availability",
			startsAt:         "2026-09-01T10:00:00Z",
			endsAt:           "2026-09-01T11:30:00Z",
			availableSeconds: 5400,
			wantIDs:          []int64{1, 2, 3},
			wantShares:       []int64{1800, 1800, 1800},
		},
		{
			name:             "proportional shares below full availability",
			startsAt:         "2026-09-01T10:00:00Z",
			endsAt:           "2026-09-01T11:30:00Z",
			availableSeconds: 2700,
			wantIDs:          []int64{1, 2, 3},
			wantShares:       []int64{900, 900, 900},
		},
		{
			name:             "floor remainder goes to last interval",
			startsAt:         "2026-09-01T10:00:00Z",
			endsAt:           "2026-09-01T11:30:00Z",
			availableSeconds: 1000,
			wantIDs:          []int64{1, 2, 3},
			wantShares:       []int64{333, 333, 334},
		},
		{
			name:             "partial shift overlap clamps first interval",
			startsAt:         "2026-09-01T10:15:00Z",
			endsAt:           "2026-09-01T11:30:00Z",
			availableSeconds: 4500,
			wantIDs:          []int64{1, 2, 3},
			wantShares:       []int64{900, 1800, 1800},
		},
		{
			name:             "tiny availability lands in last interval only",
			startsAt:         "2026-09-01T10:00:00Z",
			endsAt:           "2026-09-01T11:30:00Z",
			availableSeconds: 2,
			wantIDs:          []int64{3},
			wantShares:       []int64{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &domain.WorkerContribution{
				ID:               5,
				WorkerID:         9,
				LaneID:           1,
				StartsAt:         mustTime(tt.startsAt),
				EndsAt:           mustTime(tt.endsAt),
				AvailableSeconds: tt.availableSeconds,
			}

			rows := deriveContributionRows(c, intervals)

			require.Len(t, rows, len(tt.wantIDs))
			var total int64
			for i, row := range rows {
				assert.Equal(t, tt.wantIDs[i], row.IntervalID)
				assert.Equal(t, tt.wantShares[i], row.OriginalSeconds)
				assert.Equal(t, row.OriginalSeconds, row.RemainingSeconds)
				assert.Equal(t, c.ID, row.ContributionID)
				assert.Equal(t, c.LaneID, row.LaneID)
				total += row.OriginalSeconds
			}
			assert.Equal(t, tt.availableSeconds, total)
		})
	}
}

func TestDeriveContributionRowsNoOverlap(t *testing.T) {
	intervals := []*domain.CapacityInterval{
		mkInterval(1, "2026-09-01T10:00:00Z", 30),
	}
	c := &domain.WorkerContribution{
		ID:               5,
		LaneID:           1,
		StartsAt:         mustTime("2026-09-01T14:00:00Z"),
		EndsAt:           mustTime("2026-09-01T15:00:00Z"),
		AvailableSeconds: 3600,
	}

	assert.Empty(t, deriveContributionRows(c, intervals))
}
