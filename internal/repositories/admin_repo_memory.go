package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"heroes/internal/models"

	"github.com/google/uuid"
)

// MemoryAdminRepository is an in-memory implementation of AdminRepository.
type MemoryAdminRepository struct {
	admins map[string]models.Admin // keyed by username
	mu     sync.RWMutex
}

// NewMemoryAdminRepository creates a new instance of MemoryAdminRepository.
func NewMemoryAdminRepository() *MemoryAdminRepository {
	return &MemoryAdminRepository{
		admins: make(map[string]models.Admin),
	}
}

// Create adds a new admin.
func (r *MemoryAdminRepository) Create(_ context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.admins[admin.Username]; exists {
		return fmt.Errorf("failed to create admin: username %s already taken", admin.Username)
	}
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	r.admins[admin.Username] = *admin
	return nil
}

// GetByUsername returns an admin by username.
func (r *MemoryAdminRepository) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, ok := r.admins[username]
	if !ok {
		return nil, fmt.Errorf("admin %s: %w", username, ErrAdminNotFound)
	}
	return &admin, nil
}

// Count returns the number of admin accounts.
func (r *MemoryAdminRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.admins)), nil
}
