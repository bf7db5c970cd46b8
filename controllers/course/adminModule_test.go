package controllers

import (
	"testing"

	courseModels "lms/models/course"
	validation "lms/validators/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func cycleTestDB(t *testing.T) (*gorm.DB, *courseModels.Course) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&courseModels.Course{}, &courseModels.Module{}, &courseModels.ModulePrerequisite{}))

	course := &courseModels.Course{Title: "Test Course"}
	require.NoError(t, db.Create(course).Error)
	return db, course
}

func cycleTestModule(t *testing.T, db *gorm.DB, courseID uint, title string) *courseModels.Module {
	t.Helper()

	module := &courseModels.Module{CourseID: courseID, Title: title}
	require.NoError(t, db.Create(module).Error)
	return module
}

func TestWouldCreateCycleDirect(t *testing.T) {
	db, course := cycleTestDB(t)
	a := cycleTestModule(t, db, course.ID, "A")
	b := cycleTestModule(t, db, course.ID, "B")

	// B already requires A; making A require B closes a 2-cycle
	require.NoError(t, db.Create(&courseModels.ModulePrerequisite{
		ModuleID: b.ID, PrerequisiteID: a.ID, RequiredCompletion: 100,
	}).Error)

	cyclic, err := wouldCreateCycle(db, course.ID, a.ID, []validation.PrerequisiteEntry{{ModuleID: b.ID}})
	require.NoError(t, err)
	assert.True(t, cyclic)
}

func TestWouldCreateCycleTransitive(t *testing.T) {
	db, course := cycleTestDB(t)
	a := cycleTestModule(t, db, course.ID, "A")
	b := cycleTestModule(t, db, course.ID, "B")
	c := cycleTestModule(t, db, course.ID, "C")

	// C -> B -> A; proposing A -> C closes the loop
	require.NoError(t, db.Create(&courseModels.ModulePrerequisite{
		ModuleID: b.ID, PrerequisiteID: a.ID, RequiredCompletion: 100,
	}).Error)
	require.NoError(t, db.Create(&courseModels.ModulePrerequisite{
		ModuleID: c.ID, PrerequisiteID: b.ID, RequiredCompletion: 100,
	}).Error)

	cyclic, err := wouldCreateCycle(db, course.ID, a.ID, []validation.PrerequisiteEntry{{ModuleID: c.ID}})
	require.NoError(t, err)
	assert.True(t, cyclic)
}

func TestWouldCreateCycleAcceptsChain(t *testing.T) {
	db, course := cycleTestDB(t)
	a := cycleTestModule(t, db, course.ID, "A")
	b := cycleTestModule(t, db, course.ID, "B")
	c := cycleTestModule(t, db, course.ID, "C")

	require.NoError(t, db.Create(&courseModels.ModulePrerequisite{
		ModuleID: b.ID, PrerequisiteID: a.ID, RequiredCompletion: 100,
	}).Error)

	cyclic, err := wouldCreateCycle(db, course.ID, c.ID, []validation.PrerequisiteEntry{{ModuleID: a.ID}, {ModuleID: b.ID}})
	require.NoError(t, err)
	assert.False(t, cyclic)
}

func TestWouldCreateCycleSelfLoop(t *testing.T) {
	db, course := cycleTestDB(t)
	a := cycleTestModule(t, db, course.ID, "A")

	cyclic, err := wouldCreateCycle(db, course.ID, a.ID, []validation.PrerequisiteEntry{{ModuleID: a.ID}})
	require.NoError(t, err)
	assert.True(t, cyclic)
}

func TestWouldCreateCycleIgnoresDeletedEdges(t *testing.T) {
	db, course := cycleTestDB(t)
	a := cycleTestModule(t, db, course.ID, "A")
	b := cycleTestModule(t, db, course.ID, "B")

	// The reverse edge exists but was soft-deleted, so it cannot close a loop
	require.NoError(t, db.Create(&courseModels.ModulePrerequisite{
		ModuleID: b.ID, PrerequisiteID: a.ID, RequiredCompletion: 100, IsDeleted: true,
	}).Error)

	cyclic, err := wouldCreateCycle(db, course.ID, a.ID, []validation.PrerequisiteEntry{{ModuleID: b.ID}})
	require.NoError(t, err)
	assert.False(t, cyclic)
}
