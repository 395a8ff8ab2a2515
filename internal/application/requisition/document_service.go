package requisition

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/buildflow/backend/internal/domain/requisition"
	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AllowedContentTypes defines the whitelist of allowed content types for
// document uploads. SVG is excluded because it can carry scripts.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain": true,
	"text/csv":   true,
}

// ObjectStorageService defines the interface for object storage operations.
// Implemented by the infrastructure layer against any S3-compatible endpoint.
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading an object
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading an object
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)

	// Bucket returns the bucket objects are stored in
	Bucket() string

	// PublicURL derives the publicly reachable URL for a storage key, empty
	// when the bucket is private
	PublicURL(storageKey string) string
}

// DocumentServiceConfig holds configuration for the document service
type DocumentServiceConfig struct {
	UploadURLExpiry            time.Duration
	DownloadURLExpiry          time.Duration
	MaxSizeBytes               int64
	MaxDocumentsPerRequisition int
}

// DefaultDocumentServiceConfig returns the default configuration
func DefaultDocumentServiceConfig() DocumentServiceConfig {
	return DocumentServiceConfig{
		UploadURLExpiry:            15 * time.Minute,
		DownloadURLExpiry:          1 * time.Hour,
		MaxSizeBytes:               25 << 20,
		MaxDocumentsPerRequisition: 50,
	}
}

// DocumentService handles requisition document uploads and deletion
type DocumentService struct {
	repo    requisition.Repository
	storage ObjectStorageService
	config  DocumentServiceConfig
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(repo requisition.Repository, storage ObjectStorageService) *DocumentService {
	return &DocumentService{
		repo:    repo,
		storage: storage,
		config:  DefaultDocumentServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *DocumentService) SetConfig(config DocumentServiceConfig) {
	s.config = config
}

// InitiateUpload validates the upload and returns a presigned upload URL.
// Nothing is attached to the requisition until the client confirms.
func (s *DocumentService) InitiateUpload(ctx context.Context, actor requisition.Role, id uuid.UUID, req InitiateUploadRequest) (*InitiateUploadResponse, error) {
	stage, _, err := s.validateUpload(actor, req.ContentType, req.SizeBytes, req.Stage, req.DocumentType)
	if err != nil {
		return nil, err
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(r.Documents) >= s.config.MaxDocumentsPerRequisition {
		return nil, shared.NewDomainError("DOCUMENT_LIMIT_EXCEEDED",
			fmt.Sprintf("Requisition already has %d documents", len(r.Documents)))
	}

	storageKey := buildStorageKey(id, stage, req.FileName)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate upload url: %w", err)
	}

	return &InitiateUploadResponse{
		UploadURL:  uploadURL,
		StorageKey: storageKey,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmUpload verifies the object landed in storage and attaches its
// metadata to the requisition
func (s *DocumentService) ConfirmUpload(ctx context.Context, actor requisition.Role, id uuid.UUID, req ConfirmUploadRequest) (*DocumentResponse, error) {
	stage, docType, err := s.validateUpload(actor, req.ContentType, req.SizeBytes, req.Stage, req.DocumentType)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, req.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("check object: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError("OBJECT_NOT_FOUND", "Uploaded object not found in storage")
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err := requisition.NewDocument(
		r.ID,
		req.FileName,
		req.ContentType,
		req.SizeBytes,
		actor,
		docType,
		stage,
		requisition.StorageLocator{Bucket: s.storage.Bucket(), Key: req.StorageKey},
		s.storage.PublicURL(req.StorageKey),
	)
	if err != nil {
		return nil, err
	}

	r.AttachDocument(*doc)
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// Delete removes a document's metadata and its storage object
func (s *DocumentService) Delete(ctx context.Context, actor requisition.Role, id, docID uuid.UUID) error {
	if !actor.IsValid() {
		return shared.ErrPermissionDenied
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	doc, err := r.DetachDocument(docID)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return err
	}

	// metadata is gone; a failed object delete only leaks the blob
	if err := s.storage.DeleteObject(ctx, doc.Locator.Key); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// GetDownloadURL returns a presigned download URL for a document
func (s *DocumentService) GetDownloadURL(ctx context.Context, id, docID uuid.UUID) (*DownloadURLResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for idx := range r.Documents {
		if r.Documents[idx].ID != docID {
			continue
		}
		url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, r.Documents[idx].Locator.Key, s.config.DownloadURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("generate download url: %w", err)
		}
		return &DownloadURLResponse{
			DocumentID:  docID,
			DownloadURL: url,
			ExpiresAt:   expiresAt,
		}, nil
	}
	return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Document not found")
}

func (s *DocumentService) validateUpload(actor requisition.Role, contentType string, sizeBytes int64, stageStr, docTypeStr string) (requisition.Stage, requisition.DocumentType, error) {
	if !actor.IsValid() {
		return "", "", shared.ErrPermissionDenied
	}
	if !AllowedContentTypes[strings.ToLower(contentType)] {
		return "", "", shared.NewDomainError("INVALID_CONTENT_TYPE",
			fmt.Sprintf("Content type %q is not allowed", contentType))
	}
	if sizeBytes <= 0 || sizeBytes > s.config.MaxSizeBytes {
		return "", "", shared.NewDomainError("INVALID_FILE_SIZE",
			fmt.Sprintf("File size must be between 1 and %d bytes", s.config.MaxSizeBytes))
	}
	stage, err := requisition.ParseStage(stageStr)
	if err != nil {
		return "", "", shared.NewDomainError("INVALID_STAGE", err.Error())
	}
	docType := requisition.DocumentType(docTypeStr)
	if !docType.IsValid() {
		return "", "", shared.NewDomainError("INVALID_DOCUMENT_TYPE",
			fmt.Sprintf("Invalid document type %q", docTypeStr))
	}
	return stage, docType, nil
}

// buildStorageKey lays documents out as requisitions/<id>/<stage>/<uuid><ext>
func buildStorageKey(id uuid.UUID, stage requisition.Stage, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("requisitions/%s/%s/%s%s", id, stage, uuid.New(), ext)
}
