package handler

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// ErrMalformedID is returned when a path identifier cannot be turned into a record id
var ErrMalformedID = errors.New("malformed identifier")

// ParseID accepts only a positive decimal integer that fits a signed int
func ParseID(raw string) (uint, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, strconv.IntSize)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedID, raw)
	}
	return uint(n), nil
}

var embeddedID = regexp.MustCompile(`^\D*(\d+)$`)

// ParseEmbeddedID accepts a bare id ("12") or an id at the end of a descriptive
// token ("service_12", "svc-12").
func ParseEmbeddedID(raw string) (uint, error) {
	m := embeddedID.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedID, raw)
	}
	return ParseID(m[1])
}

// errBadPage is a validation error for pagination parameters
type errBadPage struct {
	param string
}

func (e errBadPage) Error() string {
	return "invalid " + e.param
}

// pageParams reads a 1-based page number and a page size from the query string
func pageParams(c echo.Context, pageKey, sizeKey string, defaultSize, maxSize int) (int, int, error) {
	page, size := 1, defaultSize
	if raw := c.QueryParam(pageKey); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, 0, errBadPage{param: pageKey}
		}
		page = n
	}
	if raw := c.QueryParam(sizeKey); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSize {
			return 0, 0, errBadPage{param: sizeKey}
		}
		size = n
	}
	// the row offset (page-1)*size must fit an int
	if page-1 > math.MaxInt/size {
		return 0, 0, errBadPage{param: pageKey}
	}
	return page, size, nil
}

// paginate slices an already filtered and ordered result set
func paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 || page-1 >= len(items)/size+min(len(items)%size, 1) {
		return []T{}
	}
	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
