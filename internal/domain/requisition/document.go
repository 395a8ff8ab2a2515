package requisition

import (
	"time"

	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentType classifies an uploaded document
type DocumentType string

const (
	DocumentTypeSupplierQuote      DocumentType = "supplier_quote"
	DocumentTypePurchaseOrder      DocumentType = "purchase_order"
	DocumentTypePaymentReceipt     DocumentType = "payment_receipt"
	DocumentTypeBankStatement      DocumentType = "bank_statement"
	DocumentTypeDeliveryNote       DocumentType = "delivery_note"
	DocumentTypeQualityCertificate DocumentType = "quality_certificate"
	DocumentTypeInvoice            DocumentType = "invoice"
	DocumentTypeOther              DocumentType = "other"
)

// IsValid checks if the value is a valid DocumentType
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeSupplierQuote, DocumentTypePurchaseOrder, DocumentTypePaymentReceipt,
		DocumentTypeBankStatement, DocumentTypeDeliveryNote, DocumentTypeQualityCertificate,
		DocumentTypeInvoice, DocumentTypeOther:
		return true
	}
	return false
}

// StorageLocator identifies where a document's bytes live in object storage
type StorageLocator struct {
	Bucket string `gorm:"type:varchar(100);not null"`
	Key    string `gorm:"type:varchar(500);not null"`
}

// Document represents an uploaded file attached to a requisition under a
// specific workflow stage. The requisition exclusively owns its documents;
// deleting one removes both the storage object and the metadata record.
type Document struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key"`
	RequisitionID uuid.UUID      `gorm:"type:uuid;not null;index"`
	FileName      string         `gorm:"type:varchar(255);not null"`
	ContentType   string         `gorm:"type:varchar(100);not null"`
	SizeBytes     int64          `gorm:"not null"`
	UploadedAt    time.Time      `gorm:"not null"`
	UploadedBy    Role           `gorm:"type:varchar(20);not null"`
	DocumentType  DocumentType   `gorm:"type:varchar(30);not null"`
	Stage         Stage          `gorm:"type:varchar(20);not null;index"`
	Locator       StorageLocator `gorm:"embedded;embeddedPrefix:storage_"`
	PublicURL     string         `gorm:"type:varchar(600)"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "requisition_documents"
}

// NewDocument creates a new document metadata record
func NewDocument(requisitionID uuid.UUID, fileName, contentType string, sizeBytes int64, uploadedBy Role, docType DocumentType, stage Stage, locator StorageLocator, publicURL string) (*Document, error) {
	if requisitionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUISITION", "Requisition ID cannot be empty")
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if !uploadedBy.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Uploading role is required")
	}
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Document type is required")
	}
	if !stage.IsValid() {
		return nil, shared.NewDomainError("INVALID_STAGE", "Stage is required")
	}
	if locator.Bucket == "" || locator.Key == "" {
		return nil, shared.NewDomainError("INVALID_LOCATOR", "Storage locator is required")
	}

	return &Document{
		ID:            uuid.New(),
		RequisitionID: requisitionID,
		FileName:      fileName,
		ContentType:   contentType,
		SizeBytes:     sizeBytes,
		UploadedAt:    time.Now(),
		UploadedBy:    uploadedBy,
		DocumentType:  docType,
		Stage:         stage,
		Locator:       locator,
		PublicURL:     publicURL,
	}, nil
}
