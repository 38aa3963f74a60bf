package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"go-liquor-inventory/internal/apperr"
)

// writeError renders err as {kind, message} with the status its kind maps to.
func writeError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	return c.Status(apperr.HTTPStatus(kind)).JSON(fiber.Map{
		"kind":    kind,
		"message": apperr.MessageOf(err),
	})
}

func invalidJSON(c *fiber.Ctx) error {
	return writeError(c, apperr.Validation("Invalid JSON"))
}

// getUserID reads the user set by the auth middleware.
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "system"
	}
	return userID
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func queryID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validation("invalid %s %q", name, raw)
}
