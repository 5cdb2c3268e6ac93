package cron

import (
	"log"

	"github.com/concours-mef/api/services"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager runs the scheduled maintenance jobs: pending-application
// reminders and notification-log cleanup
type CronManager struct {
	cron  *cron.Cron
	db    *gorm.DB
	email *services.EmailService
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, email *services.EmailService) *CronManager {
	return &CronManager{
		cron:  cron.New(),
		db:    db,
		email: email,
	}
}

// Start registers and starts all jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}
	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Daily at 08:00: remind candidates whose application is still pending
	// while the contest closing date approaches
	_, err := m.cron.AddFunc("0 8 * * *", func() {
		log.Println("Running job: pending_application_reminders")
		m.SendPendingReminders()
	})
	if err != nil {
		return err
	}

	// Daily at 03:00: drop notification-log entries past retention
	_, err = m.cron.AddFunc("0 3 * * *", func() {
		log.Println("Running job: notification_log_cleanup")
		m.CleanupNotificationLog()
	})
	return err
}
