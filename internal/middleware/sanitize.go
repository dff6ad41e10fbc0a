package middleware

import (
	"encoding/json"
	"html"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeJSON strips markup from the top-level string values of JSON write
// bodies. Values without markup are left byte for byte.
func SanitizeJSON() fiber.Handler {
	policy := bluemonday.StrictPolicy()

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		default:
			return c.Next()
		}
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			return c.Next()
		}
		raw := c.Body()
		if len(raw) == 0 {
			return c.Next()
		}

		var body map[string]interface{}
		if err := json.Unmarshal(raw, &body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Malformed JSON")
		}
		changed := false
		for k, v := range body {
			str, ok := v.(string)
			if !ok || !strings.Contains(str, "<") {
				continue
			}
			// StrictPolicy escapes entities; the API stores plain text.
			body[k] = html.UnescapeString(policy.Sanitize(str))
			changed = true
		}
		if !changed {
			return c.Next()
		}

		cleaned, err := json.Marshal(body)
		if err != nil {
			return err
		}
		c.Request().SetBody(cleaned)
		return c.Next()
	}
}
