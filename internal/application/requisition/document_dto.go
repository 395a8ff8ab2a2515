package requisition

import (
	"time"

	"github.com/google/uuid"
)

// InitiateUploadRequest asks for a presigned URL to upload a document
type InitiateUploadRequest struct {
	FileName     string `json:"fileName" binding:"required,max=255"`
	ContentType  string `json:"contentType" binding:"required,max=100"`
	SizeBytes    int64  `json:"sizeBytes" binding:"required,gt=0"`
	DocumentType string `json:"documentType" binding:"required"`
	Stage        string `json:"stage" binding:"required,stagename"`
}

// InitiateUploadResponse carries the presigned upload URL and the storage
// key the client must confirm after uploading
type InitiateUploadResponse struct {
	UploadURL  string    `json:"uploadUrl"`
	StorageKey string    `json:"storageKey"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ConfirmUploadRequest attaches an uploaded object to the requisition
type ConfirmUploadRequest struct {
	StorageKey   string `json:"storageKey" binding:"required,max=500"`
	FileName     string `json:"fileName" binding:"required,max=255"`
	ContentType  string `json:"contentType" binding:"required,max=100"`
	SizeBytes    int64  `json:"sizeBytes" binding:"required,gt=0"`
	DocumentType string `json:"documentType" binding:"required"`
	Stage        string `json:"stage" binding:"required,stagename"`
}

// DownloadURLResponse carries a presigned download URL for a document
type DownloadURLResponse struct {
	DocumentID  uuid.UUID `json:"documentId"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
