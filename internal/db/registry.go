package db

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrVideoNotFound is returned by lifecycle operations on unknown IDs.
	ErrVideoNotFound = errors.New("video not found")

	// ErrSelfComparison is returned when a video is paired with itself.
	ErrSelfComparison = errors.New("video cannot be compared against itself")
)

// AddVideo registers a video for tracking. Adding an ID that already
// exists upserts the name and comparison pairing and re-activates
// tracking; it never duplicates the registry row.
func AddVideo(db *gorm.DB, videoID, name string, comparisonVideoID *string) (*Video, error) {
	if comparisonVideoID != nil && *comparisonVideoID == videoID {
		return nil, ErrSelfComparison
	}

	var v Video
	if err := db.Where("video_id = ?", videoID).Limit(1).Find(&v).Error; err != nil {
		return nil, err
	}

	if v.ID != 0 {
		v.Tracking = true
		v.ComparisonVideoID = comparisonVideoID
		if name != "" {
			v.Name = name
		}
		if err := db.Save(&v).Error; err != nil {
			return nil, err
		}
		return &v, nil
	}

	if name == "" {
		name = videoID
	}
	v = Video{
		VideoID:           videoID,
		Name:              name,
		Tracking:          true,
		ComparisonVideoID: comparisonVideoID,
	}
	if err := db.Create(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// PauseVideo stops a video from appearing in poll batches. Its samples
// are kept and remain readable.
func PauseVideo(db *gorm.DB, videoID string) error {
	return setTracking(db, videoID, false)
}

// ResumeVideo re-activates polling for a paused video.
func ResumeVideo(db *gorm.DB, videoID string) error {
	return setTracking(db, videoID, true)
}

func setTracking(db *gorm.DB, videoID string, tracking bool) error {
	res := db.Model(&Video{}).Where("video_id = ?", videoID).Update("tracking", tracking)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// RemoveVideo deletes a video and all of its samples. Irreversible. A
// video referenced as someone else's comparison partner is left alone;
// only the named video and its own series go.
func RemoveVideo(db *gorm.DB, videoID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("video_id = ?", videoID).Delete(&Video{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVideoNotFound
		}
		return DeleteSamples(tx, videoID)
	})
}

// ListVideos returns every registered video, paused ones included,
// ordered by name.
func ListVideos(db *gorm.DB) ([]Video, error) {
	var videos []Video
	if err := db.Order("name").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// TrackedVideos returns the videos the next poll cycle should sample.
func TrackedVideos(db *gorm.DB) ([]Video, error) {
	var videos []Video
	if err := db.Where("tracking = ?", true).Order("name").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// FindVideo looks a video up by its external ID.
func FindVideo(db *gorm.DB, videoID string) (*Video, error) {
	var v Video
	if err := db.Where("video_id = ?", videoID).Limit(1).Find(&v).Error; err != nil {
		return nil, err
	}
	if v.ID == 0 {
		return nil, ErrVideoNotFound
	}
	return &v, nil
}
