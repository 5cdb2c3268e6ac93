package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/concours-mef/api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService persists the outcome of every notification attempt
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// RecordNotificationRequest describes one send attempt to log
type RecordNotificationRequest struct {
	Kind              model.NotificationKind
	Recipient         string
	ApplicationNumber string
	Success           bool
	Reason            string
}

var notificationSubjects = map[model.NotificationKind]string{
	model.NotificationConfirmation: "Application confirmation",
	model.NotificationValidation:   "Application validated",
	model.NotificationRejection:    "Application rejected",
	model.NotificationReminder:     "Application pending reminder",
}

// Record writes one notification-log row. Logging failures are reported but
// never propagated; the log must not be able to fail a business operation.
func (s *NotificationService) Record(ctx context.Context, req RecordNotificationRequest) {
	entry := model.NotificationLog{
		Kind:              req.Kind,
		Recipient:         req.Recipient,
		Subject:           notificationSubjects[req.Kind],
		SentAt:            time.Now(),
		Success:           req.Success,
		ApplicationNumber: req.ApplicationNumber,
	}

	if req.Reason != "" {
		metadata, err := json.Marshal(map[string]string{"reason": req.Reason})
		if err == nil {
			entry.Metadata = datatypes.JSON(metadata)
		}
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("Failed to record %s notification for %s: %v", req.Kind, req.ApplicationNumber, err)
	}
}

// ListByApplication returns the notification history of one application,
// newest first
func (s *NotificationService) ListByApplication(ctx context.Context, number string) ([]model.NotificationLog, error) {
	var entries []model.NotificationLog
	err := s.db.WithContext(ctx).
		Where("application_number = ?", number).
		Order("sent_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return entries, nil
}

// CleanupOlderThan removes log entries past the retention window
func (s *NotificationService) CleanupOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := s.db.WithContext(ctx).
		Where("sent_at < ?", cutoff).
		Delete(&model.NotificationLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clean up notification log: %w", result.Error)
	}
	return result.RowsAffected, nil
}
