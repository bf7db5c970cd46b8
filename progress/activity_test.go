package progress

import (
	"testing"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTimeAccumulates(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)

	require.NoError(t, RecordTime(db, 1, lesson.ID, 300))
	require.NoError(t, RecordTime(db, 1, lesson.ID, 301))

	var record progressModels.ActivityRecord
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", 1, lesson.ID).First(&record).Error)
	assert.Equal(t, int64(601), record.TimeSpentSeconds)
}

func TestRecordTimeClampsNegativeDelta(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)

	require.NoError(t, RecordTime(db, 1, lesson.ID, 120))
	require.NoError(t, RecordTime(db, 1, lesson.ID, -500))

	var record progressModels.ActivityRecord
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", 1, lesson.ID).First(&record).Error)
	assert.Equal(t, int64(120), record.TimeSpentSeconds)
}

func TestRecordTimeUnknownLesson(t *testing.T) {
	db := setupTestDB(t)

	err := RecordTime(db, 1, 999, 60)
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "lesson", nfe.Resource)
}

func TestRecordTimeIsolatedPerUser(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)

	require.NoError(t, RecordTime(db, 1, lesson.ID, 100))
	require.NoError(t, RecordTime(db, 2, lesson.ID, 40))

	var record progressModels.ActivityRecord
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", 2, lesson.ID).First(&record).Error)
	assert.Equal(t, int64(40), record.TimeSpentSeconds)
}

func TestRecordVideoTickCompletedIsMonotonic(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) { l.VideoStreamUID = "abc123" })

	require.NoError(t, RecordVideoTick(db, 1, lesson.ID, 600, 30, true))
	// A later tick without the completed flag must not clear completion
	require.NoError(t, RecordVideoTick(db, 1, lesson.ID, 45, 15, false))

	var vp progressModels.VideoProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", 1, lesson.ID).First(&vp).Error)
	assert.True(t, vp.Completed)
	assert.Equal(t, int64(45), vp.WatchedTimeSeconds)
	assert.Equal(t, float64(45), vp.LastPosition)
}

func TestRecordAssetDownloadRejectsForeignAsset(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	other := seedLesson(t, db, module, 1, nil)

	asset := seedAsset(t, db, other.ID, true)

	err := RecordAssetDownload(db, 1, lesson.ID, asset.ID)
	var iae *InvalidAssetError
	require.ErrorAs(t, err, &iae)
	assert.Equal(t, lesson.ID, iae.LessonID)
}

func TestRecordAssetDownloadCountsRepeats(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, nil)
	asset := seedAsset(t, db, lesson.ID, true)

	require.NoError(t, RecordAssetDownload(db, 1, lesson.ID, asset.ID))
	require.NoError(t, RecordAssetDownload(db, 1, lesson.ID, asset.ID))

	var record progressModels.AssetProgress
	require.NoError(t, db.Where("user_id = ? AND asset_id = ?", 1, asset.ID).First(&record).Error)
	assert.Equal(t, int64(2), record.DownloadCount)
}

func TestResetVideoProgressClearsAllUsers(t *testing.T) {
	db := setupTestDB(t)
	_, module := seedModule(t, db)
	lesson := seedLesson(t, db, module, 0, func(l *courseModels.Lesson) { l.VideoStreamUID = "abc123" })

	require.NoError(t, RecordVideoTick(db, 1, lesson.ID, 600, 600, true))
	require.NoError(t, RecordVideoTick(db, 2, lesson.ID, 300, 300, false))

	require.NoError(t, ResetVideoProgress(db, lesson.ID))

	var count int64
	require.NoError(t, db.Model(&progressModels.VideoProgress{}).
		Where("lesson_id = ?", lesson.ID).Count(&count).Error)
	assert.Zero(t, count)

	// Fresh ticks start from scratch instead of resurrecting old accumulators
	require.NoError(t, RecordVideoTick(db, 1, lesson.ID, 10, 10, false))
	var vp progressModels.VideoProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", 1, lesson.ID).First(&vp).Error)
	assert.False(t, vp.Completed)
	assert.Equal(t, int64(10), vp.WatchedTimeSeconds)
}
