package db

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleColumns() []string {
	return []string{"video_id", "timestamp", "date", "views", "likes"}
}

func TestInsertSampleIsIdempotent(t *testing.T) {
	gdb, mock := newMockDB(t)

	s := &Sample{
		VideoID:   "jNQXAC9IVRw",
		Timestamp: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Date:      "2026-08-26",
		Views:     500,
		Likes:     20,
	}

	mock.ExpectExec(`INSERT INTO "samples" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, InsertSample(gdb, s))

	// A duplicate key write touches zero rows and still succeeds.
	mock.ExpectExec(`INSERT INTO "samples" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, InsertSample(gdb, s))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestSampleAtOrBefore(t *testing.T) {
	gdb, mock := newMockDB(t)

	ts := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "samples" WHERE video_id = \$1 AND date = \$2 AND timestamp <= \$3`).
		WithArgs("jNQXAC9IVRw", "2026-08-26", ts).
		WillReturnRows(sqlmock.NewRows(sampleColumns()).
			AddRow("jNQXAC9IVRw", ts.Add(-5*time.Minute), "2026-08-26", 480, 19))

	s, err := LatestSampleAtOrBefore(gdb, "jNQXAC9IVRw", "2026-08-26", ts)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.EqualValues(t, 480, s.Views)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestSampleAtOrBeforeNone(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "samples"`).
		WillReturnRows(sqlmock.NewRows(sampleColumns()))

	s, err := LatestSampleAtOrBefore(gdb, "jNQXAC9IVRw", "2026-08-26", time.Now())
	require.NoError(t, err)
	assert.Nil(t, s, "an empty date is not an error")
}

func TestExactSampleNone(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "samples" WHERE video_id = \$1 AND date = \$2 AND timestamp = \$3`).
		WillReturnRows(sqlmock.NewRows(sampleColumns()))

	s, err := ExactSample(gdb, "jNQXAC9IVRw", "2026-08-26", time.Now())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSamplesForDateAscending(t *testing.T) {
	gdb, mock := newMockDB(t)

	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "samples" WHERE video_id = \$1 AND date = \$2 ORDER BY timestamp ASC`).
		WithArgs("jNQXAC9IVRw", "2026-08-26").
		WillReturnRows(sqlmock.NewRows(sampleColumns()).
			AddRow("jNQXAC9IVRw", base, "2026-08-26", 100, 1).
			AddRow("jNQXAC9IVRw", base.Add(5*time.Minute), "2026-08-26", 110, 1))

	samples, err := SamplesForDate(gdb, "jNQXAC9IVRw", "2026-08-26")
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.True(t, samples[0].Timestamp.Before(samples[1].Timestamp))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleDatesDescending(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT DISTINCT`).
		WithArgs("jNQXAC9IVRw").
		WillReturnRows(sqlmock.NewRows([]string{"date"}).
			AddRow("2026-08-26").
			AddRow("2026-08-25"))

	dates, err := SampleDates(gdb, "jNQXAC9IVRw")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-26", "2026-08-25"}, dates)
}
