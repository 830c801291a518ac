package handlers

import (
	"strconv"
	"strings"
	"time"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/repositories"
	"storeadmin/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

var errInvalidID = apperrors.New(apperrors.KindInvalidInput, "INVALID_ID", "invalid id")

// paramID reads a positive numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID.WithMessage("invalid %s", name)
	}
	return uint(id), nil
}

// queryUint parses an optional numeric query parameter; absent or malformed
// values are ignored.
func queryUint(c *fiber.Ctx, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	v := uint(id)
	return &v
}

func queryBool(c *fiber.Ctx, name string) *bool {
	switch strings.ToLower(c.Query(name)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

// queryDateRange reads startDate/endDate as YYYY-MM-DD or RFC 3339. The end
// date is inclusive of the whole day.
func queryDateRange(c *fiber.Ctx) repositories.DateRange {
	var r repositories.DateRange
	if t, ok := parseDate(c.Query("startDate")); ok {
		r.From = t
	}
	if t, ok := parseDate(c.Query("endDate")); ok {
		if len(c.Query("endDate")) == len(time.DateOnly) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = t
	}
	return r
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// page reads page/limit from the query string.
func page(c *fiber.Ctx) (utils.Pagination, repositories.Page) {
	p := utils.GetPagination(c, defaultPage, defaultLimit)
	return p, repositories.Page{Limit: p.Limit, Offset: p.Offset}
}

var errInvalidBody = apperrors.New(apperrors.KindInvalidInput, "INVALID_BODY", "invalid request body")

func bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	return nil
}
