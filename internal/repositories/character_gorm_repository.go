package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"heroes/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCharacterRepository is a GORM implementation of CharacterRepository.
type GORMCharacterRepository struct {
	db *gorm.DB
	// SQLite's LOWER folds ASCII only, so case-insensitive matching runs in Go.
	foldInGo bool
}

// NewGORMCharacterRepository creates a new instance of GORMCharacterRepository.
func NewGORMCharacterRepository(db *gorm.DB) *GORMCharacterRepository {
	return &GORMCharacterRepository{
		db:       db,
		foldInGo: db.Dialector.Name() == "sqlite",
	}
}

func (r *GORMCharacterRepository) ordered(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Character{}).Order("created_at ASC").Order("id ASC")
}

func (r *GORMCharacterRepository) find(q *gorm.DB, what string) ([]models.Character, error) {
	characters := []models.Character{}
	if err := q.Find(&characters).Error; err != nil {
		return nil, fmt.Errorf("failed to find characters by %s: %w", what, err)
	}
	return characters, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere in a value.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// foldMatch is a case-insensitive substring predicate on one column.
type foldMatch struct {
	column string
	field  func(models.Character) string
	value  string
}

func nameMatch(v string) foldMatch {
	return foldMatch{"name", func(c models.Character) string { return c.Name }, v}
}

func realNameMatch(v string) foldMatch {
	return foldMatch{"real_name", func(c models.Character) string { return c.RealName }, v}
}

func originMatch(v string) foldMatch {
	return foldMatch{"origin", func(c models.Character) string { return c.Origin }, v}
}

// findFold runs q narrowed by every match, keeping the order of q.
func (r *GORMCharacterRepository) findFold(q *gorm.DB, what string, matches ...foldMatch) ([]models.Character, error) {
	if !r.foldInGo {
		for _, m := range matches {
			q = q.Where("LOWER("+m.column+") LIKE ? ESCAPE '\\'", containsPattern(m.value))
		}
		return r.find(q, what)
	}

	characters, err := r.find(q, what)
	if err != nil || len(matches) == 0 {
		return characters, err
	}
	out := characters[:0]
	for _, c := range characters {
		ok := true
		for _, m := range matches {
			if !containsFold(m.field(c), m.value) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetAll retrieves all characters from the database.
func (r *GORMCharacterRepository) GetAll(ctx context.Context) ([]models.Character, error) {
	return r.find(r.ordered(ctx), "all")
}

// GetByID retrieves a single character by its ID from the database.
func (r *GORMCharacterRepository) GetByID(ctx context.Context, id string) (*models.Character, error) {
	var character models.Character
	if err := r.db.WithContext(ctx).First(&character, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("character with ID %s: %w", id, ErrCharacterNotFound)
		}
		return nil, fmt.Errorf("failed to get character by ID %s: %w", id, err)
	}
	return &character, nil
}

// Create creates a new character in the database.
func (r *GORMCharacterRepository) Create(ctx context.Context, character *models.Character) error {
	if character.ID == "" {
		character.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(character).Error; err != nil {
		return fmt.Errorf("failed to create character: %w", err)
	}
	return nil
}

// Update overwrites every editable column of an existing character.
func (r *GORMCharacterRepository) Update(ctx context.Context, character *models.Character) error {
	// Save would insert a missing row, so update explicitly and check the count.
	res := r.db.WithContext(ctx).Model(character).Select("*").Omit("id", "created_at").Updates(character)
	if res.Error != nil {
		return fmt.Errorf("failed to update character: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("character with ID %s: %w", character.ID, ErrCharacterNotFound)
	}
	return nil
}

// Delete deletes a character by its ID from the database.
func (r *GORMCharacterRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Character{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete character: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("character with ID %s: %w", id, ErrCharacterNotFound)
	}
	return nil
}

// Count returns the number of stored characters.
func (r *GORMCharacterRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Character{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count characters: %w", err)
	}
	return n, nil
}

// FindByName returns characters whose name contains name, ignoring case.
func (r *GORMCharacterRepository) FindByName(ctx context.Context, name string) ([]models.Character, error) {
	return r.findFold(r.ordered(ctx), "name", nameMatch(name))
}

// FindByRealName returns characters whose real name contains realName, ignoring case.
func (r *GORMCharacterRepository) FindByRealName(ctx context.Context, realName string) ([]models.Character, error) {
	return r.findFold(r.ordered(ctx), "real name", realNameMatch(realName))
}

// FindByOrigin returns characters whose origin contains origin, ignoring case.
func (r *GORMCharacterRepository) FindByOrigin(ctx context.Context, origin string) ([]models.Character, error) {
	return r.findFold(r.ordered(ctx), "origin", originMatch(origin))
}

// FindByAffiliation returns characters with exactly the given affiliation.
func (r *GORMCharacterRepository) FindByAffiliation(ctx context.Context, affiliation string) ([]models.Character, error) {
	return r.find(r.ordered(ctx).Where("affiliation = ?", affiliation), "affiliation")
}

// FindByStatus returns characters with the given status.
func (r *GORMCharacterRepository) FindByStatus(ctx context.Context, status models.Status) ([]models.Character, error) {
	return r.find(r.ordered(ctx).Where("status = ?", status), "status")
}

// Search applies every non-empty criterion.
func (r *GORMCharacterRepository) Search(ctx context.Context, c SearchCriteria) ([]models.Character, error) {
	q := r.ordered(ctx)
	var matches []foldMatch
	if c.Name != "" {
		matches = append(matches, nameMatch(c.Name))
	}
	if c.Affiliation != "" {
		q = q.Where("affiliation = ?", c.Affiliation)
	}
	if c.Status != "" {
		q = q.Where("status = ?", c.Status)
	}
	if c.Universe != "" {
		q = q.Where("universe = ?", c.Universe)
	}
	if c.Origin != "" {
		matches = append(matches, originMatch(c.Origin))
	}
	return r.findFold(q, "criteria", matches...)
}

// ExistsByName reports whether a character with this name exists, ignoring case.
func (r *GORMCharacterRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Character{})
	if r.foldInGo {
		var names []string
		if err := q.Pluck("name", &names).Error; err != nil {
			return false, fmt.Errorf("failed to check character name %s: %w", name, err)
		}
		for _, n := range names {
			if strings.EqualFold(n, name) {
				return true, nil
			}
		}
		return false, nil
	}

	var n int64
	if err := q.Where("LOWER(name) = ?", strings.ToLower(name)).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check character name %s: %w", name, err)
	}
	return n > 0, nil
}
