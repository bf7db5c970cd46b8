package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestLedgerIDSetRoundTrip(t *testing.T) {
	entry := &ModuleProgress{}

	assert.Empty(t, entry.LessonIDs())
	assert.Empty(t, entry.QuizIDs())

	require.NoError(t, entry.SetLessonIDs([]uint{3, 1, 2}))
	assert.Equal(t, []uint{3, 1, 2}, entry.LessonIDs())

	require.NoError(t, entry.SetQuizIDs([]uint{9}))
	assert.Equal(t, []uint{9}, entry.QuizIDs())
}

func TestLedgerIDSetToleratesBadColumn(t *testing.T) {
	entry := &ModuleProgress{CompletedLessons: datatypes.JSON(`{"not":"an array"}`)}
	assert.Empty(t, entry.LessonIDs())
}

func TestContainsID(t *testing.T) {
	ids := []uint{1, 5, 9}
	assert.True(t, ContainsID(ids, 5))
	assert.False(t, ContainsID(ids, 4))
	assert.False(t, ContainsID(nil, 1))
}
