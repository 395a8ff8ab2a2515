package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage_URLs(t *testing.T) {
	stub := NewStubObjectStorage()
	ctx := context.Background()

	uploadURL, expiresAt, err := stub.GenerateUploadURL(ctx, "requisitions/a/resident/x.pdf", "application/pdf", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, uploadURL, "/upload/requisitions/a/resident/x.pdf")
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	downloadURL, _, err := stub.GenerateDownloadURL(ctx, "requisitions/a/resident/x.pdf", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, downloadURL, "/download/requisitions/a/resident/x.pdf")

	_, _, err = stub.GenerateUploadURL(ctx, "", "application/pdf", time.Minute)
	assert.Error(t, err)
}

func TestStubObjectStorage_ExistsByDefault(t *testing.T) {
	stub := NewStubObjectStorage()

	exists, err := stub.ObjectExists(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, exists, "untracked mode treats every key as uploaded")
}

func TestStubObjectStorage_TrackedUploads(t *testing.T) {
	stub := NewStubObjectStorage()
	stub.TrackUploads()
	ctx := context.Background()

	exists, err := stub.ObjectExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	stub.MarkUploaded("present")
	exists, err = stub.ObjectExists(ctx, "present")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, stub.DeleteObject(ctx, "present"))
	exists, err = stub.ObjectExists(ctx, "present")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStubObjectStorage_PublicURL(t *testing.T) {
	stub := NewStubObjectStorage()
	assert.Equal(t, "https://storage.example.com/public/key.pdf", stub.PublicURL("key.pdf"))
	assert.Empty(t, stub.PublicURL(""))
}
