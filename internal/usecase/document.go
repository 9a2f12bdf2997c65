package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/infra/config"
	"github.com/campusio/intl-office/internal/infra/logger"
)

// DocumentService manages uploaded attachments and their metadata.
type DocumentService struct {
	documents    port.DocumentRepository
	files        port.FileStore
	visas        port.VisaExtensionRepository
	mous         port.MOURepository
	translations port.TranslationRepository
	visitors     port.VisitorRepository
	uploads      config.UploadSettings
	now          func() time.Time
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(
	documents port.DocumentRepository,
	files port.FileStore,
	visas port.VisaExtensionRepository,
	mous port.MOURepository,
	translations port.TranslationRepository,
	visitors port.VisitorRepository,
	uploads config.UploadSettings,
) *DocumentService {
	return &DocumentService{
		documents:    documents,
		files:        files,
		visas:        visas,
		mous:         mous,
		translations: translations,
		visitors:     visitors,
		uploads:      uploads,
		now:          time.Now,
	}
}

// WithClock overrides the time source (testing).
func (s *DocumentService) WithClock(now func() time.Time) *DocumentService {
	if now != nil {
		s.now = now
	}
	return s
}

// UploadInput describes an incoming attachment.
type UploadInput struct {
	Parent       domain.DocumentParent
	ParentID     string
	FileName     string
	MimeType     string
	SizeBytes    int64
	DocumentType string
	IsRequired   bool
	Content      io.Reader
}

// Upload stores the file and records its metadata. Only the owner of the
// parent request (or an admin) may attach files to it.
func (s *DocumentService) Upload(ctx context.Context, actor domain.Actor, input UploadInput) (*domain.Document, error) {
	if !actor.Can(domain.PermDocumentUpload) {
		return nil, ErrPermissionDenied
	}

	if strings.TrimSpace(input.FileName) == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}
	if s.uploads.MaxSizeBytes > 0 && input.SizeBytes > s.uploads.MaxSizeBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, s.uploads.MaxSizeBytes)
	}
	if !s.mimeAllowed(input.MimeType) {
		return nil, fmt.Errorf("%w: file type %q is not accepted", ErrValidation, input.MimeType)
	}

	ownerID, err := s.parentOwner(ctx, input.Parent, input.ParentID)
	if err != nil {
		return nil, err
	}
	if ownerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}

	ext := filepath.Ext(input.FileName)
	storedPath, written, err := s.files.Save(ctx, string(input.Parent), ext, input.Content)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	doc := domain.Document{
		ID:           uuid.NewString(),
		Parent:       input.Parent,
		ParentID:     input.ParentID,
		FileName:     filepath.Base(input.FileName),
		StoredPath:   storedPath,
		MimeType:     input.MimeType,
		SizeBytes:    written,
		DocumentType: strings.TrimSpace(input.DocumentType),
		IsRequired:   input.IsRequired,
		UploadedBy:   actor.ID,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		if rmErr := s.files.Remove(ctx, storedPath); rmErr != nil {
			logger.WithContext(ctx).Warn("remove orphaned upload",
				zap.String("path", storedPath),
				zap.Error(rmErr))
		}
		return nil, fmt.Errorf("record document: %w", err)
	}

	return &doc, nil
}

// List returns the attachments of a request the actor may see.
func (s *DocumentService) List(ctx context.Context, actor domain.Actor, parent domain.DocumentParent, parentID string) ([]domain.Document, error) {
	ownerID, err := s.parentOwner(ctx, parent, parentID)
	if err != nil {
		return nil, err
	}
	if ownerID != actor.ID && !s.canReviewParent(actor, parent) {
		return nil, ErrNotOwner
	}

	docs, err := s.documents.ListByParent(ctx, parent, parentID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

// Open streams a stored attachment for download.
func (s *DocumentService) Open(ctx context.Context, actor domain.Actor, id string) (*domain.Document, io.ReadCloser, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get document: %w", err)
	}

	ownerID, err := s.parentOwner(ctx, doc.Parent, doc.ParentID)
	if err != nil {
		return nil, nil, err
	}
	if ownerID != actor.ID && !s.canReviewParent(actor, doc.Parent) {
		return nil, nil, ErrNotOwner
	}

	reader, err := s.files.Open(ctx, doc.StoredPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}

	return doc, reader, nil
}

// Verify flags an attachment as checked by office staff.
func (s *DocumentService) Verify(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.Can(domain.PermDocumentVerify) {
		return ErrPermissionDenied
	}

	if err := s.documents.SetVerified(ctx, id, true); err != nil {
		return fmt.Errorf("verify document: %w", err)
	}

	return nil
}

// Remove deletes an attachment and its stored bytes. Uploaders remove their
// own files; staff with delete permission remove any.
func (s *DocumentService) Remove(ctx context.Context, actor domain.Actor, id string) error {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if doc.UploadedBy != actor.ID && !actor.Can(domain.PermDocumentDelete) {
		return ErrPermissionDenied
	}

	if err := s.documents.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if err := s.files.Remove(ctx, doc.StoredPath); err != nil {
		logger.WithContext(ctx).Warn("remove stored file",
			zap.String("path", doc.StoredPath),
			zap.Error(err))
	}

	return nil
}

func (s *DocumentService) mimeAllowed(mimeType string) bool {
	if len(s.uploads.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range s.uploads.AllowedTypes {
		if strings.EqualFold(allowed, mimeType) {
			return true
		}
	}
	return false
}

func (s *DocumentService) parentOwner(ctx context.Context, parent domain.DocumentParent, parentID string) (string, error) {
	switch parent {
	case domain.DocumentParentVisa:
		visa, err := s.visas.GetByID(ctx, parentID)
		if err != nil {
			return "", fmt.Errorf("get parent visa: %w", err)
		}
		return visa.OwnerID, nil
	case domain.DocumentParentMOU:
		mou, err := s.mous.GetByID(ctx, parentID)
		if err != nil {
			return "", fmt.Errorf("get parent mou: %w", err)
		}
		return mou.OwnerID, nil
	case domain.DocumentParentTranslation:
		req, err := s.translations.GetByID(ctx, parentID)
		if err != nil {
			return "", fmt.Errorf("get parent translation: %w", err)
		}
		return req.OwnerID, nil
	case domain.DocumentParentVisitor:
		reg, err := s.visitors.GetByID(ctx, parentID)
		if err != nil {
			return "", fmt.Errorf("get parent visitor registration: %w", err)
		}
		return reg.OwnerID, nil
	}
	return "", fmt.Errorf("%w: unknown parent %q", ErrValidation, parent)
}

func (s *DocumentService) canReviewParent(actor domain.Actor, parent domain.DocumentParent) bool {
	switch parent {
	case domain.DocumentParentVisa:
		return actor.Can(domain.PermVisaReview)
	case domain.DocumentParentMOU:
		return actor.Can(domain.PermMOUReview)
	case domain.DocumentParentTranslation:
		return actor.Can(domain.PermTranslationProcess)
	case domain.DocumentParentVisitor:
		return actor.Can(domain.PermVisitorReview)
	}
	return false
}
