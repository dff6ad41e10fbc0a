package repositories

import (
	"context"
	"errors"

	"heroes/internal/models"
)

// ErrCharacterNotFound is returned when no character has the requested ID.
var ErrCharacterNotFound = errors.New("character not found")

// SearchCriteria narrows a server-side search. Empty fields are ignored.
type SearchCriteria struct {
	Name        string        `query:"name"`        // contains, ignore case
	Affiliation string        `query:"affiliation"` // exact
	Status      models.Status `query:"status"`      // exact
	Universe    string        `query:"universe"`    // exact
	Origin      string        `query:"origin"`      // contains, ignore case
}

// CharacterRepository defines the interface for character data access.
// List methods return records in creation order.
type CharacterRepository interface {
	GetAll(ctx context.Context) ([]models.Character, error)
	GetByID(ctx context.Context, id string) (*models.Character, error)
	Create(ctx context.Context, character *models.Character) error
	Update(ctx context.Context, character *models.Character) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)

	FindByName(ctx context.Context, name string) ([]models.Character, error)
	FindByRealName(ctx context.Context, realName string) ([]models.Character, error)
	FindByOrigin(ctx context.Context, origin string) ([]models.Character, error)
	FindByAffiliation(ctx context.Context, affiliation string) ([]models.Character, error)
	FindByStatus(ctx context.Context, status models.Status) ([]models.Character, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]models.Character, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}
