package main

import (
	"log"

	"lms/config"
	"lms/database"
	courseModels "lms/models/course"
)

// Seeds a demo course with two modules, gated lessons and a quiz. Intended for
// local development only.
func main() {
	config.LoadConfig()
	database.ConnectDb()

	db := database.Database.Db

	course := courseModels.Course{
		Title:       "Go for Backend Engineers",
		Description: "Build production HTTP services in Go.",
		Author:      "LearnHub Team",
		Duration:    12,
		Price:       49.99,
		Status:      "ACTIVE",
		IsPublished: true,
	}
	if err := db.Create(&course).Error; err != nil {
		log.Fatalf("Failed to create course: %v", err)
	}

	basics := courseModels.Module{CourseID: course.ID, Title: "Language Basics", OrderIndex: 0}
	advanced := courseModels.Module{CourseID: course.ID, Title: "Concurrency", OrderIndex: 1}
	if err := db.Create(&basics).Error; err != nil {
		log.Fatalf("Failed to create module: %v", err)
	}
	if err := db.Create(&advanced).Error; err != nil {
		log.Fatalf("Failed to create module: %v", err)
	}

	// Concurrency requires finishing Language Basics first
	prereq := courseModels.ModulePrerequisite{
		ModuleID:           advanced.ID,
		PrerequisiteID:     basics.ID,
		RequiredCompletion: 100,
	}
	if err := db.Create(&prereq).Error; err != nil {
		log.Fatalf("Failed to create prerequisite: %v", err)
	}

	passing := 70
	lessons := []courseModels.Lesson{
		{
			CourseID:                course.ID,
			ModuleID:                basics.ID,
			Title:                   "Hello, Go",
			OrderIndex:              0,
			MinimumTimeSpentSeconds: 120,
			IsPublished:             true,
		},
		{
			CourseID:            course.ID,
			ModuleID:            basics.ID,
			Title:               "Types and Interfaces",
			OrderIndex:          1,
			RequireVideoWatch:   true,
			QuizRequired:        true,
			QuizBlocksProgress:  true,
			MinimumPassingScore: &passing,
			ShowQuizAt:          "AFTER",
			IsPublished:         true,
		},
		{
			CourseID:    course.ID,
			ModuleID:    advanced.ID,
			Title:       "Goroutines and Channels",
			OrderIndex:  0,
			IsPublished: true,
		},
	}
	for i := range lessons {
		if err := db.Create(&lessons[i]).Error; err != nil {
			log.Fatalf("Failed to create lesson: %v", err)
		}
	}

	quiz := courseModels.Quiz{
		LessonID:     lessons[1].ID,
		Title:        "Types and Interfaces Check",
		PassingScore: 60,
		MaxAttempts:  3,
	}
	if err := db.Create(&quiz).Error; err != nil {
		log.Fatalf("Failed to create quiz: %v", err)
	}

	question := courseModels.QuizQuestion{
		QuizID:       quiz.ID,
		QuestionText: "Which keyword declares an interface type?",
		QuestionType: "MCQ",
		Points:       2,
	}
	if err := db.Create(&question).Error; err != nil {
		log.Fatalf("Failed to create question: %v", err)
	}

	options := []courseModels.QuizOption{
		{QuestionID: question.ID, OptionText: "interface", IsCorrect: true, OrderIndex: 0},
		{QuestionID: question.ID, OptionText: "struct", OrderIndex: 1},
		{QuestionID: question.ID, OptionText: "contract", OrderIndex: 2},
	}
	for i := range options {
		if err := db.Create(&options[i]).Error; err != nil {
			log.Fatalf("Failed to create option: %v", err)
		}
	}

	coupon := courseModels.Coupon{
		Code:            "LAUNCH20",
		DiscountPercent: 20,
		MaxUses:         100,
		IsActive:        true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		log.Fatalf("Failed to create coupon: %v", err)
	}

	log.Printf("Seeded course %d with %d lessons", course.ID, len(lessons))
}
