package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(401, "Unauthorized")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(401, "Unauthorized")
	}
	return id, nil
}

// parseDateRange reads optional start_date / end_date query params
// (YYYY-MM-DD). The end bound is exclusive: the day after end_date.
// Defaults to today when both are missing.
func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	if s := c.Query("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(400, "start_date must be YYYY-MM-DD")
		}
		start = parsed
		end = start.AddDate(0, 0, 1)
	}
	if s := c.Query("end_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(400, "end_date must be YYYY-MM-DD")
		}
		end = parsed.AddDate(0, 0, 1)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fiber.NewError(400, "end_date is before start_date")
	}
	return start, end, nil
}
