package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	validation "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateCourseModule adds a module to a course. OrderIndex defaults to the end
// of the module list.
func CreateCourseModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	body := c.Locals("validatedModule").(*validation.ModuleBody)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	orderIndex := 0
	if body.OrderIndex != nil {
		orderIndex = *body.OrderIndex
	} else {
		var count int64
		database.Database.Db.Model(&courseModels.Module{}).
			Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&count)
		orderIndex = int(count)
	}

	module := courseModels.Module{
		CourseID:    uint(courseID),
		Title:       body.Title,
		Description: body.Description,
		OrderIndex:  orderIndex,
	}
	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// UpdateCourseModule updates a module's title, description and order
func UpdateCourseModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)
	body := c.Locals("validatedModule").(*validation.ModuleBody)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	module.Title = body.Title
	module.Description = body.Description
	if body.OrderIndex != nil {
		module.OrderIndex = *body.OrderIndex
	}

	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// DeleteCourseModule soft-deletes a module and its prerequisite edges
func DeleteCourseModule(c *fiber.Ctx) error {
	courseID, err1 := c.ParamsInt("course_id")
	moduleID, err2 := c.ParamsInt("module_id")
	if err1 != nil || err2 != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		module.IsDeleted = true
		if err := tx.Save(&module).Error; err != nil {
			return err
		}
		return tx.Model(&courseModels.ModulePrerequisite{}).
			Where("module_id = ? OR prerequisite_id = ?", moduleID, moduleID).
			Update("is_deleted", true).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// SetModulePrerequisites replaces a module's prerequisite list. Prerequisites
// must be modules of the same course, cannot include the module itself, and
// the resulting graph must stay acyclic.
func SetModulePrerequisites(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)
	body := c.Locals("validatedPrerequisites").(*validation.PrerequisitesBody)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	for _, entry := range body.Prerequisites {
		if entry.ModuleID == uint(moduleID) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "A module cannot be its own prerequisite!", nil)
		}
		var prereq courseModels.Module
		if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", entry.ModuleID, courseID, false).First(&prereq).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Prerequisite module does not belong to this course!", nil)
		}
	}

	cyclic, err := wouldCreateCycle(database.Database.Db, uint(courseID), uint(moduleID), body.Prerequisites)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to validate prerequisites!", nil)
	}
	if cyclic {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "These prerequisites would create a cycle!", nil)
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&courseModels.ModulePrerequisite{}).
			Where("module_id = ?", moduleID).Update("is_deleted", true).Error; err != nil {
			return err
		}
		for _, entry := range body.Prerequisites {
			required := 100.0
			if entry.RequiredCompletion != nil {
				required = *entry.RequiredCompletion
			}
			edge := courseModels.ModulePrerequisite{
				ModuleID:           uint(moduleID),
				PrerequisiteID:     entry.ModuleID,
				RequiredCompletion: required,
			}
			// Reuse a soft-deleted edge when one exists to keep the unique
			// index happy.
			var existing courseModels.ModulePrerequisite
			if err := tx.Where("module_id = ? AND prerequisite_id = ?", moduleID, entry.ModuleID).First(&existing).Error; err == nil {
				existing.RequiredCompletion = required
				existing.IsDeleted = false
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Create(&edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save prerequisites!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Prerequisites updated successfully!", nil)
}

// wouldCreateCycle walks the course's prerequisite graph with the proposed
// edges for moduleID in place of its current ones and reports whether any
// module can reach itself
func wouldCreateCycle(db *gorm.DB, courseID, moduleID uint, proposed []validation.PrerequisiteEntry) (bool, error) {
	var edges []courseModels.ModulePrerequisite
	err := db.
		Joins("JOIN modules ON modules.id = module_prerequisites.module_id").
		Where("modules.course_id = ? AND module_prerequisites.is_deleted = ?", courseID, false).
		Find(&edges).Error
	if err != nil {
		return false, err
	}

	graph := map[uint][]uint{}
	for _, edge := range edges {
		if edge.ModuleID == moduleID {
			continue
		}
		graph[edge.ModuleID] = append(graph[edge.ModuleID], edge.PrerequisiteID)
	}
	for _, entry := range proposed {
		graph[moduleID] = append(graph[moduleID], entry.ModuleID)
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := map[uint]int{}

	var visit func(id uint) bool
	visit = func(id uint) bool {
		switch state[id] {
		case visiting:
			return true
		case done:
			return false
		}
		state[id] = visiting
		for _, next := range graph[id] {
			if visit(next) {
				return true
			}
		}
		state[id] = done
		return false
	}

	for id := range graph {
		if visit(id) {
			return true, nil
		}
	}
	return false, nil
}
