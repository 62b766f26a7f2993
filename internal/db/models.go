package db

import (
	"time"

	"gorm.io/datatypes"
)

// Video is a tracked YouTube video in the registry. Paused videos keep
// their samples and stay visible on the read side; they are only
// excluded from poll batches.
type Video struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// VideoID is the opaque external identifier used against the
	// statistics provider.
	VideoID string `gorm:"uniqueIndex;size:64;not null"`

	Name string `gorm:"size:255;not null"`

	Tracking bool `gorm:"default:true"`

	// ComparisonVideoID optionally names another video whose hourly
	// view gain is used as the denominator of the comparison ratio.
	// Never equal to VideoID.
	ComparisonVideoID *string `gorm:"size:64"`
}

// Sample is one timestamped observation of a video's counters. Rows are
// immutable once written and keyed on (video_id, timestamp), which makes
// the insert path idempotent: a second write with the same key is a
// no-op, not an error. Date and Timestamp are both derived in the
// configured zone; Date partitions the series for range scans and gain
// computation.
type Sample struct {
	VideoID   string    `gorm:"primaryKey;size:64;index:idx_samples_video_date,priority:1"`
	Timestamp time.Time `gorm:"primaryKey"`

	// Date is the calendar day of Timestamp, formatted YYYY-MM-DD.
	Date string `gorm:"index:idx_samples_video_date,priority:2;size:10;not null"`

	// Views is the required counter. The provider can report a lower
	// value than before (recounts, takedowns), so nothing here assumes
	// monotonicity.
	Views int64 `gorm:"not null"`

	// Likes follows the same append-only, date-scoped rules as Views.
	Likes int64 `gorm:"not null"`

	// Extra holds any further provider counters (e.g. commentCount)
	// without schema changes.
	Extra datatypes.JSONMap `gorm:"type:json"`
}
