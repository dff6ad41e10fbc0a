package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"heroes/internal/cache"
	"heroes/internal/catalog"
	"heroes/internal/models"
	"heroes/internal/repositories"
	"heroes/internal/validation"

	"github.com/rs/zerolog/log"
)

var (
	// ErrCharacterNotFound is returned when the requested character does not exist.
	ErrCharacterNotFound = repositories.ErrCharacterNotFound
	// ErrInvalidStatus is returned when a lookup names an undefined status.
	ErrInvalidStatus = errors.New("invalid character status")
	// ErrInvalidAlignment is returned when a lookup names an undefined alignment.
	ErrInvalidAlignment = errors.New("invalid character alignment")
)

// EventPublisher delivers catalog change events to interested consumers.
type EventPublisher interface {
	PublishCharacterEvent(ctx context.Context, event models.CharacterEvent) error
}

// CharacterService handles business logic related to characters.
type CharacterService struct {
	repo      repositories.CharacterRepository
	publisher EventPublisher   // optional
	stats     cache.StatsCache // optional

	// statsGen is bumped on every invalidation; Stats only caches a result
	// computed within a single generation.
	statsGen atomic.Uint64
}

// NewCharacterService creates a new CharacterService. publisher and stats may be nil.
func NewCharacterService(repo repositories.CharacterRepository, publisher EventPublisher, stats cache.StatsCache) *CharacterService {
	if stats == nil {
		stats = cache.Nop{}
	}
	return &CharacterService{
		repo:      repo,
		publisher: publisher,
		stats:     stats,
	}
}

// List returns every character matching criteria, in creation order.
func (s *CharacterService) List(ctx context.Context, criteria catalog.Criteria) ([]models.Character, error) {
	if criteria.Status != "" && !criteria.Status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, criteria.Status)
	}
	if criteria.Alignment != "" && !criteria.Alignment.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAlignment, criteria.Alignment)
	}
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if criteria.IsZero() {
		return all, nil
	}
	return catalog.Filter(all, criteria), nil
}

// GetCharacter retrieves a single character by its ID.
func (s *CharacterService) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateCharacter validates draft and stores it as a new character.
// An invalid draft yields a *validation.Error and nothing is written.
func (s *CharacterService) CreateCharacter(ctx context.Context, draft models.Character) (*models.Character, error) {
	if err := validation.Validate(draft).Err(); err != nil {
		return nil, err
	}

	character := models.NewCharacter()
	character.ApplyChanges(draft)
	if err := s.repo.Create(ctx, &character); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, models.NewCharacterEvent(models.CharacterCreated, character))
	return &character, nil
}

// UpdateCharacter validates draft and overwrites every editable field of the
// character with the given ID.
func (s *CharacterService) UpdateCharacter(ctx context.Context, id string, draft models.Character) (*models.Character, error) {
	if err := validation.Validate(draft).Err(); err != nil {
		return nil, err
	}

	character, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	character.ApplyChanges(draft)
	if err := s.repo.Update(ctx, character); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, models.NewCharacterEvent(models.CharacterUpdated, *character))
	return character, nil
}

// DeleteCharacter deletes a character by its ID.
func (s *CharacterService) DeleteCharacter(ctx context.Context, id string) error {
	character, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.afterWrite(ctx, models.NewCharacterEvent(models.CharacterDeleted, *character))
	return nil
}

// Stats returns the aggregate counts of the whole catalog.
func (s *CharacterService) Stats(ctx context.Context) (catalog.Stats, error) {
	if cached, ok, err := s.stats.Get(ctx); err != nil {
		log.Warn().Err(err).Msg("stats cache read failed")
	} else if ok {
		return *cached, nil
	}

	gen := s.statsGen.Load()
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return catalog.Stats{}, err
	}
	stats := catalog.Aggregate(all)
	if s.statsGen.Load() != gen {
		return stats, nil
	}
	if err := s.stats.Set(ctx, stats); err != nil {
		log.Warn().Err(err).Msg("stats cache write failed")
	}
	return stats, nil
}

// Export writes the characters matching criteria as an XLSX workbook.
func (s *CharacterService) Export(ctx context.Context, criteria catalog.Criteria, w io.Writer) error {
	records, err := s.List(ctx, criteria)
	if err != nil {
		return err
	}
	return catalog.WriteXLSX(w, records)
}

// FindByName returns characters whose name contains name, ignoring case.
func (s *CharacterService) FindByName(ctx context.Context, name string) ([]models.Character, error) {
	return s.repo.FindByName(ctx, name)
}

// FindByRealName returns characters whose real name contains realName, ignoring case.
func (s *CharacterService) FindByRealName(ctx context.Context, realName string) ([]models.Character, error) {
	return s.repo.FindByRealName(ctx, realName)
}

// FindByOrigin returns characters whose origin contains origin, ignoring case.
func (s *CharacterService) FindByOrigin(ctx context.Context, origin string) ([]models.Character, error) {
	return s.repo.FindByOrigin(ctx, origin)
}

// FindByAffiliation returns characters with exactly this affiliation.
func (s *CharacterService) FindByAffiliation(ctx context.Context, affiliation string) ([]models.Character, error) {
	return s.repo.FindByAffiliation(ctx, affiliation)
}

// FindByStatus returns characters with the given status.
func (s *CharacterService) FindByStatus(ctx context.Context, status models.Status) ([]models.Character, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.repo.FindByStatus(ctx, status)
}

// Search combines the non-empty criteria with AND.
func (s *CharacterService) Search(ctx context.Context, criteria repositories.SearchCriteria) ([]models.Character, error) {
	if criteria.Status != "" && !criteria.Status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, criteria.Status)
	}
	return s.repo.Search(ctx, criteria)
}

// ExistsByName reports whether a character with this name exists, ignoring case.
func (s *CharacterService) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.repo.ExistsByName(ctx, name)
}

// Seed stores records when the catalog is empty and returns how many were written.
// Invalid records are skipped.
func (s *CharacterService) Seed(ctx context.Context, records []models.Character) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	seeded := 0
	for i := range records {
		if err := validation.Validate(records[i]).Err(); err != nil {
			log.Warn().Str("name", records[i].Name).Err(err).Msg("skipping invalid seed record")
			continue
		}
		if err := s.repo.Create(ctx, &records[i]); err != nil {
			return seeded, fmt.Errorf("seed %s: %w", records[i].Name, err)
		}
		seeded++
	}
	if seeded > 0 {
		s.invalidateStats(ctx)
	}
	return seeded, nil
}

func (s *CharacterService) afterWrite(ctx context.Context, event models.CharacterEvent) {
	s.invalidateStats(ctx)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCharacterEvent(ctx, event); err != nil {
		log.Warn().Err(err).
			Str("event", string(event.Type)).
			Str("character_id", event.CharacterID).
			Msg("failed to publish character event")
	}
}

func (s *CharacterService) invalidateStats(ctx context.Context) {
	s.statsGen.Add(1)
	if err := s.stats.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("stats cache invalidation failed")
	}
}
