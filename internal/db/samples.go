package db

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsertSample appends one observation to a video's series. The insert
// is idempotent over the (video_id, timestamp) key: a concurrent or
// repeated write of the same key is silently ignored and never creates
// a second row. Values are identical in practice for duplicate keys, so
// discarding the late write loses nothing.
func InsertSample(db *gorm.DB, s *Sample) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(s).Error
}

// LatestSampleAtOrBefore returns the sample with the greatest timestamp
// <= ts for that video and date, or nil if the date holds no such row.
// The search is date-scoped and never reaches back across midnight.
func LatestSampleAtOrBefore(db *gorm.DB, videoID, date string, ts time.Time) (*Sample, error) {
	var s Sample
	res := db.Where("video_id = ? AND date = ? AND timestamp <= ?", videoID, date, ts).
		Order("timestamp DESC").Limit(1).Find(&s)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &s, nil
}

// ExactSample returns the sample at exactly ts, or nil. All writers
// truncate cycle timestamps to the second, so equality matching is
// meaningful here.
func ExactSample(db *gorm.DB, videoID, date string, ts time.Time) (*Sample, error) {
	var s Sample
	res := db.Where("video_id = ? AND date = ? AND timestamp = ?", videoID, date, ts).
		Limit(1).Find(&s)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &s, nil
}

// SamplesForDate returns a video's samples for one date, ascending by
// timestamp. This single range read drives the gain computation.
func SamplesForDate(db *gorm.DB, videoID, date string) ([]Sample, error) {
	var samples []Sample
	if err := db.Where("video_id = ? AND date = ?", videoID, date).
		Order("timestamp ASC").Find(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

// SampleDates returns the dates with at least one sample for the video,
// most recent first.
func SampleDates(db *gorm.DB, videoID string) ([]string, error) {
	var dates []string
	if err := db.Model(&Sample{}).Distinct("date").
		Where("video_id = ?", videoID).
		Order("date DESC").
		Pluck("date", &dates).Error; err != nil {
		return nil, err
	}
	return dates, nil
}

// DeleteSamples drops a video's entire series. Only used by registry
// removal.
func DeleteSamples(db *gorm.DB, videoID string) error {
	return db.Where("video_id = ?", videoID).Delete(&Sample{}).Error
}
