package utils

import (
	"encoding/base64"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// PageParams carries the roster paging inputs parsed from a request.
type PageParams struct {
	PageSize int
	Cursor   time.Time
}

// GetPageParams extracts page size and cursor from query parameters.
// The cursor is opaque to clients; an unparsable one is treated as absent.
func GetPageParams(c echo.Context, defaultSize int) PageParams {
	pageSize, _ := strconv.Atoi(c.QueryParam("limit"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = defaultSize
	}

	return PageParams{
		PageSize: pageSize,
		Cursor:   DecodeCursor(c.QueryParam("cursor")),
	}
}

// EncodeCursor turns the updatedAt of the last thread on a page into an
// opaque continuation token.
func EncodeCursor(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(t.UTC().Format(time.RFC3339Nano)))
}

// DecodeCursor reverses EncodeCursor. Returns the zero time for an empty
// or malformed token.
func DecodeCursor(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}
	}
	return t
}
