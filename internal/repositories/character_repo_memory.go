package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"heroes/internal/models"

	"github.com/google/uuid"
)

// MemoryCharacterRepository is an in-memory implementation of CharacterRepository.
type MemoryCharacterRepository struct {
	characters map[string]models.Character
	order      []string
	mu         sync.RWMutex
}

// NewMemoryCharacterRepository creates a new instance of MemoryCharacterRepository.
func NewMemoryCharacterRepository() *MemoryCharacterRepository {
	return &MemoryCharacterRepository{
		characters: make(map[string]models.Character),
	}
}

func (r *MemoryCharacterRepository) filter(match func(models.Character) bool) []models.Character {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Character, 0, len(r.order))
	for _, id := range r.order {
		c := r.characters[id]
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// GetAll returns all characters.
func (r *MemoryCharacterRepository) GetAll(_ context.Context) ([]models.Character, error) {
	return r.filter(func(models.Character) bool { return true }), nil
}

// GetByID returns a character by its ID.
func (r *MemoryCharacterRepository) GetByID(_ context.Context, id string) (*models.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	character, ok := r.characters[id]
	if !ok {
		return nil, fmt.Errorf("character with ID %s: %w", id, ErrCharacterNotFound)
	}
	return &character, nil
}

// Create adds a new character.
func (r *MemoryCharacterRepository) Create(_ context.Context, character *models.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if character.ID == "" {
		character.ID = uuid.New().String()
	}
	if _, exists := r.characters[character.ID]; exists {
		return fmt.Errorf("failed to create character: duplicate ID %s", character.ID)
	}
	now := time.Now()
	character.CreatedAt = now
	character.UpdatedAt = now
	r.characters[character.ID] = *character
	r.order = append(r.order, character.ID)
	return nil
}

// Update modifies an existing character.
func (r *MemoryCharacterRepository) Update(_ context.Context, character *models.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.characters[character.ID]
	if !ok {
		return fmt.Errorf("character with ID %s: %w", character.ID, ErrCharacterNotFound)
	}
	character.CreatedAt = existing.CreatedAt
	character.UpdatedAt = time.Now()
	r.characters[character.ID] = *character
	return nil
}

// Delete removes a character by its ID.
func (r *MemoryCharacterRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.characters[id]; !ok {
		return fmt.Errorf("character with ID %s: %w", id, ErrCharacterNotFound)
	}
	delete(r.characters, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of stored characters.
func (r *MemoryCharacterRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.characters)), nil
}

// FindByName returns characters whose name contains name, ignoring case.
func (r *MemoryCharacterRepository) FindByName(_ context.Context, name string) ([]models.Character, error) {
	return r.filter(func(c models.Character) bool { return containsFold(c.Name, name) }), nil
}

// FindByRealName returns characters whose real name contains realName, ignoring case.
func (r *MemoryCharacterRepository) FindByRealName(_ context.Context, realName string) ([]models.Character, error) {
	return r.filter(func(c models.Character) bool { return containsFold(c.RealName, realName) }), nil
}

// FindByOrigin returns characters whose origin contains origin, ignoring case.
func (r *MemoryCharacterRepository) FindByOrigin(_ context.Context, origin string) ([]models.Character, error) {
	return r.filter(func(c models.Character) bool { return containsFold(c.Origin, origin) }), nil
}

// FindByAffiliation returns characters with exactly the given affiliation.
func (r *MemoryCharacterRepository) FindByAffiliation(_ context.Context, affiliation string) ([]models.Character, error) {
	return r.filter(func(c models.Character) bool { return c.Affiliation == affiliation }), nil
}

// FindByStatus returns characters with the given status.
func (r *MemoryCharacterRepository) FindByStatus(_ context.Context, status models.Status) ([]models.Character, error) {
	return r.filter(func(c models.Character) bool { return c.Status == status }), nil
}

// Search applies every non-empty criterion.
func (r *MemoryCharacterRepository) Search(_ context.Context, s SearchCriteria) ([]models.Character, error) {
	return r.filter(func(c models.Character) bool {
		switch {
		case s.Name != "" && !containsFold(c.Name, s.Name):
			return false
		case s.Affiliation != "" && c.Affiliation != s.Affiliation:
			return false
		case s.Status != "" && c.Status != s.Status:
			return false
		case s.Universe != "" && c.Universe != s.Universe:
			return false
		case s.Origin != "" && !containsFold(c.Origin, s.Origin):
			return false
		}
		return true
	}), nil
}

// ExistsByName reports whether a character with this name exists, ignoring case.
func (r *MemoryCharacterRepository) ExistsByName(_ context.Context, name string) (bool, error) {
	found := r.filter(func(c models.Character) bool { return strings.EqualFold(c.Name, name) })
	return len(found) > 0, nil
}
