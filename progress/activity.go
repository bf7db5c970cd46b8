package progress

import (
	"errors"
	"log"
	"time"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The activity store persists atomic records of a learner's interaction with a
// lesson. All increments are expressed as SQL add expressions so concurrent
// ticks from the same learner lose at most one increment, never the base value.
// Every function takes the db handle explicitly so callers can pass a
// transaction when they need the reads and writes on one snapshot.

// RecordTime adds deltaSeconds to the learner's time-on-lesson accumulator.
// The accumulator never resets; abuse prevention is not this layer's job.
func RecordTime(db *gorm.DB, userID, lessonID uint, deltaSeconds int64) error {
	if _, err := lessonByID(db, lessonID); err != nil {
		return err
	}
	if deltaSeconds < 0 {
		deltaSeconds = 0
	}

	now := time.Now()
	record := progressModels.ActivityRecord{
		UserID:           userID,
		LessonID:         lessonID,
		TimeSpentSeconds: deltaSeconds,
		LastAccessed:     now,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"time_spent_seconds": gorm.Expr("time_spent_seconds + ?", deltaSeconds),
			"last_accessed":      now,
			"updated_at":         now,
		}),
	}).Create(&record).Error
	if err != nil {
		return storeErr("record lesson time", err)
	}
	return nil
}

// RecordVideoTick upserts the learner's watch state for the lesson video.
// Completed is a monotonic OR: a later tick with completed=false never clears
// a completion the client already reported.
func RecordVideoTick(db *gorm.DB, userID, lessonID uint, position float64, deltaWatched int64, completed bool) error {
	if _, err := lessonByID(db, lessonID); err != nil {
		return err
	}
	if deltaWatched < 0 {
		deltaWatched = 0
	}

	now := time.Now()
	record := progressModels.VideoProgress{
		UserID:             userID,
		LessonID:           lessonID,
		WatchedTimeSeconds: deltaWatched,
		LastPosition:       position,
		Completed:          completed,
		LastWatched:        now,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"watched_time_seconds": gorm.Expr("watched_time_seconds + ?", deltaWatched),
			"last_position":        position,
			"completed":            gorm.Expr("completed OR ?", completed),
			"last_watched":         now,
			"updated_at":           now,
		}),
	}).Create(&record).Error
	if err != nil {
		return storeErr("record video tick", err)
	}
	return nil
}

// RecordAssetDownload upserts the learner's download record for a declared
// lesson asset and bumps the asset's denormalized download counter. The
// counter bump is best-effort observability: its failure never fails the
// download.
func RecordAssetDownload(db *gorm.DB, userID, lessonID, assetID uint) error {
	if _, err := lessonByID(db, lessonID); err != nil {
		return err
	}

	var asset courseModels.LessonAsset
	err := db.Where("id = ? AND lesson_id = ? AND is_deleted = ?", assetID, lessonID, false).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &InvalidAssetError{LessonID: lessonID, AssetID: assetID}
		}
		return storeErr("load lesson asset", err)
	}

	now := time.Now()
	record := progressModels.AssetProgress{
		UserID:          userID,
		LessonID:        lessonID,
		AssetID:         assetID,
		DownloadCount:   1,
		FirstDownloaded: now,
		LastDownloaded:  now,
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}, {Name: "asset_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"download_count":  gorm.Expr("download_count + 1"),
			"last_downloaded": now,
			"updated_at":      now,
		}),
	}).Create(&record).Error
	if err != nil {
		return storeErr("record asset download", err)
	}

	if err := db.Model(&courseModels.LessonAsset{}).Where("id = ?", assetID).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error; err != nil {
		log.Printf("Failed to bump download counter for asset %d: %v", assetID, err)
	}
	return nil
}

// ResetVideoProgress deletes all watch state for a lesson. Called when the
// lesson's video is replaced, so completion earned against the old video can
// never satisfy requirements against the new one. The rows are removed for
// real, otherwise the unique index would resurrect stale accumulators on the
// next upsert.
func ResetVideoProgress(db *gorm.DB, lessonID uint) error {
	if _, err := lessonByID(db, lessonID); err != nil {
		return err
	}
	if err := db.Unscoped().Where("lesson_id = ?", lessonID).
		Delete(&progressModels.VideoProgress{}).Error; err != nil {
		return storeErr("reset video progress", err)
	}
	return nil
}

// lessonByID loads a non-deleted lesson or reports NotFoundError.
func lessonByID(db *gorm.DB, lessonID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "lesson", ID: lessonID}
		}
		return nil, storeErr("load lesson", err)
	}
	return &lesson, nil
}
