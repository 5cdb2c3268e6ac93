package cron

import (
	"context"
	"log"
	"time"

	"github.com/concours-mef/api/model"
	"github.com/concours-mef/api/services"
)

const (
	// Remind while this many days or fewer remain before the contest closes
	reminderWindowDays = 3

	// Notification-log retention
	notificationRetention = 90 * 24 * time.Hour
)

// pendingReminder is the join row the reminder job works from
type pendingReminder struct {
	Number    string
	Email     string
	CloseDate time.Time
}

// SendPendingReminders emails candidates whose application is still PENDING
// while the contest closing date is near
func (m *CronManager) SendPendingReminders() {
	if m.email == nil || !m.email.IsConfigured() {
		log.Println("SMTP not configured; skipping pending reminders")
		return
	}

	today := time.Now().Truncate(24 * time.Hour)
	horizon := today.AddDate(0, 0, reminderWindowDays)

	var rows []pendingReminder
	err := m.db.Model(&model.Application{}).
		Select("applications.number, candidates.email, contests.close_date").
		Joins("JOIN candidates ON candidates.id = applications.candidate_id").
		Joins("JOIN contests ON contests.id = applications.contest_id").
		Where("applications.status = ?", model.StatusPending).
		Where("contests.close_date BETWEEN ? AND ?", today, horizon).
		Scan(&rows).Error
	if err != nil {
		log.Printf("Failed to query pending applications for reminders: %v", err)
		return
	}

	notifications := services.NewNotificationService(m.db)
	sent := 0
	for _, row := range rows {
		if row.Email == "" {
			continue
		}
		daysLeft := int(row.CloseDate.Sub(today).Hours() / 24)
		err := m.email.SendPendingReminder(row.Email, row.Number, daysLeft)
		notifications.Record(context.Background(), services.RecordNotificationRequest{
			Kind:              model.NotificationReminder,
			Recipient:         row.Email,
			ApplicationNumber: row.Number,
			Success:           err == nil,
		})
		if err != nil {
			log.Printf("Failed to send reminder for %s: %v", row.Number, err)
			continue
		}
		sent++
	}

	log.Printf("Pending reminders: %d sent out of %d due", sent, len(rows))
}

// CleanupNotificationLog removes notification-log entries past retention
func (m *CronManager) CleanupNotificationLog() {
	notifications := services.NewNotificationService(m.db)
	removed, err := notifications.CleanupOlderThan(context.Background(), notificationRetention)
	if err != nil {
		log.Printf("Notification-log cleanup failed: %v", err)
		return
	}
	log.Printf("Notification-log cleanup removed %d entries", removed)
}
