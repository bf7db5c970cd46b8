package progress

import (
	"time"

	"gorm.io/gorm"
)

// ActivityRecord accumulates time a user has spent on a lesson. The accumulator
// only ever grows; updates use atomic add expressions, never read-modify-write.
type ActivityRecord struct {
	gorm.Model
	UserID           uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_activity_user_lesson"`
	LessonID         uint      `json:"lesson_id" gorm:"not null;uniqueIndex:idx_activity_user_lesson"`
	TimeSpentSeconds int64     `json:"time_spent_seconds" gorm:"default:0"`
	LastAccessed     time.Time `json:"last_accessed"`
}

// VideoProgress tracks a user's watch state for a lesson video. Completed is
// set from the client-reported event and is monotonic: once true it stays true
// until the lesson's video is replaced, which deletes all rows for the lesson.
type VideoProgress struct {
	gorm.Model
	UserID             uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_video_user_lesson"`
	LessonID           uint      `json:"lesson_id" gorm:"not null;uniqueIndex:idx_video_user_lesson"`
	WatchedTimeSeconds int64     `json:"watched_time_seconds" gorm:"default:0"`
	LastPosition       float64   `json:"last_position" gorm:"default:0"` // seconds
	Completed          bool      `json:"completed" gorm:"default:false"`
	LastWatched        time.Time `json:"last_watched"`
}

// AssetProgress tracks downloads of a lesson asset by a user. Existence of a
// row satisfies a required-download check; the count is informational.
type AssetProgress struct {
	gorm.Model
	UserID          uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_asset_user_lesson_asset"`
	LessonID        uint      `json:"lesson_id" gorm:"not null;uniqueIndex:idx_asset_user_lesson_asset"`
	AssetID         uint      `json:"asset_id" gorm:"not null;uniqueIndex:idx_asset_user_lesson_asset"`
	DownloadCount   int64     `json:"download_count" gorm:"default:0"`
	FirstDownloaded time.Time `json:"first_downloaded"`
	LastDownloaded  time.Time `json:"last_downloaded"`
}
