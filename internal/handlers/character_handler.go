package handlers

import (
	"bytes"
	"strings"

	"heroes/internal/catalog"
	"heroes/internal/models"
	"heroes/internal/repositories"
	"heroes/internal/services"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CharacterHandler handles HTTP requests for characters.
type CharacterHandler struct {
	service *services.CharacterService
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(service *services.CharacterService) *CharacterHandler {
	return &CharacterHandler{
		service: service,
	}
}

// RegisterRoutes registers the character routes. The writes handlers, such as
// auth and input sanitising, run in order before each write route.
func (h *CharacterHandler) RegisterRoutes(router fiber.Router, writes ...fiber.Handler) {
	guarded := func(handler fiber.Handler) []fiber.Handler {
		return append(append(make([]fiber.Handler, 0, len(writes)+1), writes...), handler)
	}

	characters := router.Group("/characters")
	characters.Get("/", h.HandleList)
	characters.Get("/stats", h.HandleStats)
	characters.Get("/export", h.HandleExport)
	characters.Get("/search", h.HandleSearchByName)
	characters.Get("/real-name", h.HandleSearchByRealName)
	characters.Get("/origin", h.HandleSearchByOrigin)
	characters.Get("/affiliation/:affiliation", h.HandleByAffiliation)
	characters.Get("/status/:status", h.HandleByStatus)
	characters.Get("/filter", h.HandleFilter)
	characters.Get("/exists/:name", h.HandleExists)
	characters.Get("/:id", h.HandleGet)
	characters.Post("/", guarded(h.HandleCreate)...)
	characters.Put("/:id", guarded(h.HandleUpdate)...)
	characters.Delete("/:id", guarded(h.HandleDelete)...)
}

func listCriteria(c *fiber.Ctx) (catalog.Criteria, error) {
	var criteria catalog.Criteria
	if err := c.QueryParser(&criteria); err != nil {
		return criteria, fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	criteria.Status = models.Status(strings.ToUpper(string(criteria.Status)))
	criteria.Alignment = models.Alignment(strings.ToUpper(string(criteria.Alignment)))
	return criteria, nil
}

// HandleList returns the characters matching the q, status and alignment filters.
func (h *CharacterHandler) HandleList(c *fiber.Ctx) error {
	criteria, err := listCriteria(c)
	if err != nil {
		return err
	}
	characters, err := h.service.List(c.UserContext(), criteria)
	if err != nil {
		return err
	}
	return c.JSON(characters)
}

// HandleStats returns catalog totals by status, affiliation and universe.
func (h *CharacterHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// HandleExport streams the filtered list as an XLSX attachment.
func (h *CharacterHandler) HandleExport(c *fiber.Ctx) error {
	criteria, err := listCriteria(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.service.Export(c.UserContext(), criteria, &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment("characters.xlsx")
	return c.Send(buf.Bytes())
}

// HandleGet retrieves a single character by its ID.
func (h *CharacterHandler) HandleGet(c *fiber.Ctx) error {
	character, err := h.service.GetCharacter(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(character)
}

func parseDraft(c *fiber.Ctx) (models.Character, error) {
	var draft models.Character
	if err := c.BodyParser(&draft); err != nil {
		return draft, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return draft, nil
}

// HandleCreate validates and stores a new character.
func (h *CharacterHandler) HandleCreate(c *fiber.Ctx) error {
	draft, err := parseDraft(c)
	if err != nil {
		return err
	}
	created, err := h.service.CreateCharacter(c.UserContext(), draft)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdate replaces every editable field of an existing character.
func (h *CharacterHandler) HandleUpdate(c *fiber.Ctx) error {
	draft, err := parseDraft(c)
	if err != nil {
		return err
	}
	updated, err := h.service.UpdateCharacter(c.UserContext(), c.Params("id"), draft)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

// HandleDelete removes a character.
func (h *CharacterHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.DeleteCharacter(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSearchByName returns characters whose name contains ?name=.
func (h *CharacterHandler) HandleSearchByName(c *fiber.Ctx) error {
	characters, err := h.service.FindByName(c.UserContext(), c.Query("name"))
	if err != nil {
		return err
	}
	return c.JSON(characters)
}

// HandleSearchByRealName returns characters whose real name contains ?real_name=.
func (h *CharacterHandler) HandleSearchByRealName(c *fiber.Ctx) error {
	characters, err := h.service.FindByRealName(c.UserContext(), c.Query("real_name"))
	if err != nil {
		return err
	}
	return c.JSON(characters)
}

// HandleSearchByOrigin returns characters whose origin contains ?origin=.
func (h *CharacterHandler) HandleSearchByOrigin(c *fiber.Ctx) error {
	characters, err := h.service.FindByOrigin(c.UserContext(), c.Query("origin"))
	if err != nil {
		return err
	}
	return c.JSON(characters)
}

// HandleByAffiliation returns characters whose affiliation equals :affiliation.
func (h *CharacterHandler) HandleByAffiliation(c *fiber.Ctx) error {
	characters, err := h.service.FindByAffiliation(c.UserContext(), c.Params("affiliation"))
	if err != nil {
		return err
	}
	return c.JSON(characters)
}

// HandleByStatus returns characters with :status, 400 when it is undefined.
func (h *CharacterHandler) HandleByStatus(c *fiber.Ctx) error {
	status := models.Status(strings.ToUpper(c.Params("status")))
	characters, err := h.service.FindByStatus(c.UserContext(), status)
	if err != nil {
		return err
	}
	return c.JSON(characters)
}

// HandleFilter combines name, affiliation, status, universe and origin with AND.
func (h *CharacterHandler) HandleFilter(c *fiber.Ctx) error {
	var criteria repositories.SearchCriteria
	if err := c.QueryParser(&criteria); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	criteria.Status = models.Status(strings.ToUpper(string(criteria.Status)))
	characters, err := h.service.Search(c.UserContext(), criteria)
	if err != nil {
		return err
	}
	return c.JSON(characters)
}

// HandleExists reports whether a character named :name exists, ignoring case.
func (h *CharacterHandler) HandleExists(c *fiber.Ctx) error {
	exists, err := h.service.ExistsByName(c.UserContext(), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(exists)
}
