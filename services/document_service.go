package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/concours-mef/api/model"
	"github.com/concours-mef/api/services/storage"
	"github.com/concours-mef/api/utils/pdfvalidation"
	"gorm.io/gorm"
)

// DocumentService attaches uploaded documents to applications. Bytes go to the
// blob store; the database keeps only the metadata and storage key.
type DocumentService struct {
	db    *gorm.DB
	blobs *storage.BlobStore
}

// NewDocumentService creates a new document service. A nil blob store keeps
// uploads metadata-only, which is what local development runs with.
func NewDocumentService(db *gorm.DB, blobs *storage.BlobStore) *DocumentService {
	return &DocumentService{db: db, blobs: blobs}
}

// UploadDocument validates a PDF upload and replaces the placeholder document
// of the same kind on the application
func (s *DocumentService) UploadDocument(ctx context.Context, number string, kind model.DocumentKind, filename string, content []byte) (*model.Document, error) {
	var application model.Application
	err := s.db.WithContext(ctx).First(&application, "number = ?", number).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	result, err := pdfvalidation.ValidatePDFBytes(content, pdfvalidation.LimitsForKind(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to validate %s upload: %w", kind, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid %s upload: %s", kind, result.Error)
	}

	storageKey := fmt.Sprintf("applications/%s/%s.pdf", number, kind)
	if s.blobs != nil {
		if err := s.blobs.Put(ctx, storageKey, content, "application/pdf"); err != nil {
			return nil, err
		}
	}

	document := model.Document{
		Kind:              kind,
		Name:              filename,
		ContentType:       "application/pdf",
		Size:              int64(len(content)),
		StorageKey:        storageKey,
		UploadedAt:        time.Now(),
		ApplicationNumber: number,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One document per kind per application; the upload supersedes
		// the placeholder created at submission.
		err := tx.Where("application_number = ? AND kind = ?", number, kind).
			Delete(&model.Document{}).Error
		if err != nil {
			return fmt.Errorf("failed to replace existing %s document: %w", kind, err)
		}
		if err := tx.Create(&document).Error; err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Document %s attached to application %s (%d bytes, %d pages)",
		kind, number, len(content), result.PageCount)
	return &document, nil
}

// GetDocumentContent fetches a document's bytes from the blob store
func (s *DocumentService) GetDocumentContent(ctx context.Context, documentID uint) (*model.Document, []byte, error) {
	var document model.Document
	err := s.db.WithContext(ctx).First(&document, documentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("failed to load document: %w", err)
	}

	if s.blobs == nil || document.StorageKey == "" {
		return &document, nil, nil
	}

	content, err := s.blobs.Get(ctx, document.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return &document, content, nil
}

// ListByApplication returns the documents attached to one application
func (s *DocumentService) ListByApplication(ctx context.Context, number string) ([]model.Document, error) {
	var documents []model.Document
	err := s.db.WithContext(ctx).
		Where("application_number = ?", number).
		Order("kind ASC").
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, nil
}
