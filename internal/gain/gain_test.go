package gain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbpkg "viewtrack/internal/db"
)

func sample(t *testing.T, date, clock string, views, likes int64) dbpkg.Sample {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", date+" "+clock)
	require.NoError(t, err)
	return dbpkg.Sample{VideoID: "A", Date: date, Timestamp: ts, Views: views, Likes: likes}
}

func TestComputeIntraDayGains(t *testing.T) {
	rows := []dbpkg.Sample{
		sample(t, "2026-08-26", "10:00:00", 100, 10),
		sample(t, "2026-08-26", "10:05:00", 110, 12),
		sample(t, "2026-08-26", "10:10:00", 90, 12),
	}

	points := Compute(rows, nil)
	require.Len(t, points, 3)

	assert.EqualValues(t, 0, points[0].ViewGain, "first sample of a day starts at zero")
	assert.EqualValues(t, 10, points[1].ViewGain)
	assert.EqualValues(t, 2, points[1].LikeGain)
	// Providers can report lower counts after recounts; the delta just
	// goes negative.
	assert.EqualValues(t, -20, points[2].ViewGain)
}

func TestComputeDayBoundaryReset(t *testing.T) {
	rows := []dbpkg.Sample{
		sample(t, "2026-08-25", "23:59:59", 100, 5),
		sample(t, "2026-08-26", "00:00:01", 101, 5),
	}

	points := Compute(rows, nil)
	require.Len(t, points, 2)

	assert.EqualValues(t, 0, points[1].ViewGain, "gain must not bridge midnight")
	assert.EqualValues(t, 0, points[1].HourlyViewGain, "hourly window must not bridge midnight")
}

func TestComputeTrailingHourGain(t *testing.T) {
	rows := []dbpkg.Sample{
		sample(t, "2026-08-26", "10:00:00", 100, 0),
		sample(t, "2026-08-26", "10:05:00", 110, 0),
		sample(t, "2026-08-26", "11:00:00", 200, 0),
	}

	points := Compute(rows, nil)
	require.Len(t, points, 3)

	assert.EqualValues(t, 0, points[0].HourlyViewGain, "no baseline an hour before the first sample")
	assert.EqualValues(t, 0, points[1].HourlyViewGain, "later samples must not leak backwards")
	// Baseline is the sample at or before 10:00, not the nearest one.
	assert.EqualValues(t, 100, points[2].HourlyViewGain)
}

func TestComputeComparisonRatio(t *testing.T) {
	rows := []dbpkg.Sample{
		sample(t, "2026-08-26", "12:00:00", 500, 0),
		sample(t, "2026-08-26", "13:00:00", 560, 0),
	}
	compRows := []dbpkg.Sample{
		sample(t, "2026-08-26", "12:00:00", 300, 0),
		sample(t, "2026-08-26", "13:00:00", 330, 0),
	}

	points := Compute(rows, compRows)
	require.Len(t, points, 2)

	assert.Nil(t, points[0].ComparisonRatio, "no baseline an hour back yet")
	assert.EqualValues(t, 60, points[1].HourlyViewGain)
	require.NotNil(t, points[1].ComparisonRatio)
	assert.Equal(t, 2.0, *points[1].ComparisonRatio)
}

func TestComputeComparisonRequiresExactMatch(t *testing.T) {
	rows := []dbpkg.Sample{
		sample(t, "2026-08-26", "12:00:00", 500, 0),
		sample(t, "2026-08-26", "13:00:00", 560, 0),
	}
	// The pair was sampled on a drifted schedule: nothing at exactly 13:00.
	compRows := []dbpkg.Sample{
		sample(t, "2026-08-26", "12:00:00", 300, 0),
		sample(t, "2026-08-26", "13:00:05", 330, 0),
	}

	points := Compute(rows, compRows)
	require.Len(t, points, 2)

	assert.EqualValues(t, 60, points[1].HourlyViewGain, "primary gain is defined regardless")
	assert.Nil(t, points[1].ComparisonRatio, "ratio is absent without a same-instant pair sample")
}

func TestComputeComparisonZeroDenominator(t *testing.T) {
	rows := []dbpkg.Sample{
		sample(t, "2026-08-26", "12:00:00", 500, 0),
		sample(t, "2026-08-26", "13:00:00", 560, 0),
	}
	compRows := []dbpkg.Sample{
		sample(t, "2026-08-26", "12:00:00", 300, 0),
		sample(t, "2026-08-26", "13:00:00", 300, 0),
	}

	points := Compute(rows, compRows)
	require.Len(t, points, 2)
	assert.Nil(t, points[1].ComparisonRatio, "a flat pair yields no ratio, not infinity")
}

func TestComputeComparisonScopedToDate(t *testing.T) {
	rows := []dbpkg.Sample{
		sample(t, "2026-08-26", "00:30:00", 510, 0),
	}
	// The pair's previous-day sample sits inside the trailing window but
	// on the wrong date; it must not serve as the baseline.
	compRows := []dbpkg.Sample{
		sample(t, "2026-08-25", "23:00:00", 300, 0),
		sample(t, "2026-08-26", "00:30:00", 330, 0),
	}

	points := Compute(rows, compRows)
	require.Len(t, points, 1)
	assert.Nil(t, points[0].ComparisonRatio, "the baseline search never crosses midnight")
}

func TestComputeViewLikeRatio(t *testing.T) {
	points := Compute([]dbpkg.Sample{
		sample(t, "2026-08-26", "10:00:00", 100, 3),
		sample(t, "2026-08-26", "10:05:00", 100, 0),
	}, nil)
	require.Len(t, points, 2)

	assert.Equal(t, 33.33, points[0].ViewLikeRatio)
	assert.Equal(t, 0.0, points[1].ViewLikeRatio, "no likes means no ratio, not a division error")
}

func TestTotalViewGain(t *testing.T) {
	points := Compute([]dbpkg.Sample{
		sample(t, "2026-08-26", "10:00:00", 100, 0),
		sample(t, "2026-08-26", "10:05:00", 130, 0),
		sample(t, "2026-08-26", "10:10:00", 150, 0),
	}, nil)

	assert.EqualValues(t, 50, TotalViewGain(points))
	assert.EqualValues(t, 0, TotalViewGain(nil))
}

func TestComputeEmpty(t *testing.T) {
	assert.Empty(t, Compute(nil, nil))
}
