package utils

import (
	"log"
	"time"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	progressModels "lms/models/progress"
	"lms/progress"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
)

// InitializeProgressScheduler sets up the nightly maintenance jobs
func InitializeProgressScheduler() {
	log.Println("[PROGRESS-SCHEDULER] Initializing progress scheduler...")

	c := cron.New()

	// Run daily at 3 AM: refresh ledger percentages and send pending
	// certificate mails
	c.AddFunc("0 3 * * *", func() {
		log.Println("[PROGRESS-SCHEDULER] Running nightly maintenance...")
		RefreshLedgerProgress()
		NotifyIssuedCertificates()
	})

	c.Start()
	log.Println("[PROGRESS-SCHEDULER] Progress scheduler started - runs daily at 3 AM")
}

// RefreshLedgerProgress recomputes ledger percentages for modules whose lesson
// set changed since the entry was last written. Adding or removing lessons
// moves the denominator without any learner activity, so stored percentages go
// stale until the learner completes something else; this keeps prerequisite
// checks honest in the meantime.
func RefreshLedgerProgress() {
	db := database.Database.Db

	// Modules touched since yesterday's run
	var moduleIDs []uint
	since := now.BeginningOfDay().AddDate(0, 0, -1)
	if err := db.Model(&courseModels.Lesson{}).
		Where("updated_at >= ?", since).
		Distinct("module_id").Pluck("module_id", &moduleIDs).Error; err != nil {
		log.Printf("[PROGRESS-SCHEDULER] Failed to list changed modules: %v", err)
		return
	}
	if len(moduleIDs) == 0 {
		log.Println("[PROGRESS-SCHEDULER] No module changes since last run.")
		return
	}

	var entries []progressModels.ModuleProgress
	if err := db.Where("module_id IN ?", moduleIDs).Find(&entries).Error; err != nil {
		log.Printf("[PROGRESS-SCHEDULER] Failed to load ledger entries: %v", err)
		return
	}

	refreshed := 0
	for i := range entries {
		changed, err := progress.RecomputeProgress(db, &entries[i])
		if err != nil {
			log.Printf("[PROGRESS-SCHEDULER] Failed to recompute entry %d: %v", entries[i].ID, err)
			continue
		}
		if changed {
			refreshed++
		}
	}
	log.Printf("[PROGRESS-SCHEDULER] Refreshed %d of %d ledger entries across %d modules",
		refreshed, len(entries), len(moduleIDs))
}

// NotifyIssuedCertificates mails learners whose certificates were issued but
// not yet announced
func NotifyIssuedCertificates() {
	db := database.Database.Db

	var certs []courseModels.Certificate
	if err := db.Where("notified_at IS NULL AND is_deleted = ?", false).
		Limit(200).Find(&certs).Error; err != nil {
		log.Printf("[PROGRESS-SCHEDULER] Failed to load unnotified certificates: %v", err)
		return
	}

	for _, cert := range certs {
		var user models.User
		if err := db.Where("id = ? AND is_deleted = ?", cert.UserID, false).First(&user).Error; err != nil {
			continue
		}
		var course courseModels.Course
		if err := db.Where("id = ?", cert.CourseID).First(&course).Error; err != nil {
			continue
		}

		SendCertificateEmail(user.Email, user.Name, course.Title, cert.CertificateNumber)

		nowT := time.Now()
		if err := db.Model(&courseModels.Certificate{}).Where("id = ?", cert.ID).
			Update("notified_at", &nowT).Error; err != nil {
			log.Printf("[PROGRESS-SCHEDULER] Failed to mark certificate %d notified: %v", cert.ID, err)
		}
	}
	if len(certs) > 0 {
		log.Printf("[PROGRESS-SCHEDULER] Sent %d certificate notifications", len(certs))
	}
}
