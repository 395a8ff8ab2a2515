package requisition

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/buildflow/backend/internal/domain/requisition"
	"github.com/google/uuid"
)

// ConfirmationToken captures a pending stage completion that was blocked by
// a soft warning. Confirming the token replays the completion for the same
// requisition, stage and actor.
type ConfirmationToken struct {
	Token         string            `json:"token"`
	RequisitionID uuid.UUID         `json:"requisitionId"`
	Stage         requisition.Stage `json:"stage"`
	Role          requisition.Role  `json:"role"`
	Comments      string            `json:"comments"`
	IssuedAt      time.Time         `json:"issuedAt"`
}

// ConfirmationTokenStore stores warning-confirmation tokens with a TTL.
// Implemented by the redis cache in production and by the in-memory store
// in tests.
type ConfirmationTokenStore interface {
	// Put stores the token under its Token key for the given TTL
	Put(ctx context.Context, token ConfirmationToken, ttl time.Duration) error

	// Take retrieves and consumes the token, returning false when the token
	// is unknown or expired. A token can be taken at most once.
	Take(ctx context.Context, key string) (ConfirmationToken, bool, error)
}

// NewConfirmationToken issues a token for a blocked stage completion
func NewConfirmationToken(requisitionID uuid.UUID, stage requisition.Stage, role requisition.Role, comments string) ConfirmationToken {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return ConfirmationToken{
		Token:         hex.EncodeToString(buf),
		RequisitionID: requisitionID,
		Stage:         stage,
		Role:          role,
		Comments:      comments,
		IssuedAt:      time.Now(),
	}
}

type storedToken struct {
	token     ConfirmationToken
	expiresAt time.Time
}

// InMemoryTokenStore is a process-local ConfirmationTokenStore
type InMemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]storedToken
}

// NewInMemoryTokenStore creates a new InMemoryTokenStore
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{tokens: make(map[string]storedToken)}
}

// Put stores the token for the given TTL
func (s *InMemoryTokenStore) Put(_ context.Context, token ConfirmationToken, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = storedToken{token: token, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Take retrieves and consumes the token
func (s *InMemoryTokenStore) Take(_ context.Context, key string) (ConfirmationToken, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tokens[key]
	if !ok {
		return ConfirmationToken{}, false, nil
	}
	delete(s.tokens, key)
	if time.Now().After(stored.expiresAt) {
		return ConfirmationToken{}, false, nil
	}
	return stored.token, true, nil
}
