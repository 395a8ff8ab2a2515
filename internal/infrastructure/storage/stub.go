package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	apprequisition "github.com/buildflow/backend/internal/application/requisition"
)

// Ensure StubObjectStorage implements ObjectStorageService
var _ apprequisition.ObjectStorageService = (*StubObjectStorage)(nil)

// StubObjectStorage is an in-process implementation of ObjectStorageService
// for development and tests. Objects "exist" once a key is marked uploaded;
// by default every key exists so the confirmation flow works out of the box.
type StubObjectStorage struct {
	// BaseURL is the base URL for generated upload/download URLs
	BaseURL string

	mu       sync.Mutex
	tracked  bool
	uploaded map[string]bool
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL:  "https://storage.example.com",
		uploaded: make(map[string]bool),
	}
}

// TrackUploads switches ObjectExists from always-true to tracking mode,
// where only keys passed to MarkUploaded exist
func (s *StubObjectStorage) TrackUploads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracked = true
}

// MarkUploaded records a key as present in storage
func (s *StubObjectStorage) MarkUploaded(storageKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded[storageKey] = true
}

// GenerateUploadURL generates a stub presigned URL for uploading an object
func (s *StubObjectStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey, expiresAt, nil
}

// GenerateDownloadURL generates a stub presigned URL for downloading an object
func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + storageKey, expiresAt, nil
}

// DeleteObject removes the key from the uploaded set
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploaded, storageKey)
	return nil
}

// ObjectExists reports whether the key exists
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tracked {
		return true, nil
	}
	return s.uploaded[storageKey], nil
}

// Bucket returns a fixed stub bucket name
func (s *StubObjectStorage) Bucket() string {
	return "stub-bucket"
}

// PublicURL derives a stub public URL for the key
func (s *StubObjectStorage) PublicURL(storageKey string) string {
	if storageKey == "" {
		return ""
	}
	return s.BaseURL + "/public/" + storageKey
}
