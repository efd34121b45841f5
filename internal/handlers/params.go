package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ledger/internal/repository"
)

const (
	dateLayout  = "2006-01-02"
	maxPerPage  = 100
	endOfDayAdd = 24*time.Hour - time.Nanosecond
)

// parseTime accepts RFC3339 or a bare date. A bare date means the start of
// that day (UTC), or its last instant when endOfDay is set, so that
// as_of=2026-03-31 includes entries posted during the 31st.
func parseTime(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("fecha inválida %q: use YYYY-MM-DD o RFC3339", value)
	}
	if endOfDay {
		t = t.Add(endOfDayAdd)
	}
	return &t, nil
}

// queryTime parses an optional date query parameter
func queryTime(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	return parseTime(c.Query(name), endOfDay)
}

// listQuery reads page/per_page and the allowed filters from the request
func listQuery(c *gin.Context, filters ...string) *repository.ListQuery {
	q := repository.NewListQuery()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		q.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 {
		q.PerPage = min(perPage, maxPerPage)
	}
	for _, f := range filters {
		if v := c.Query(f); v != "" {
			q.Filters[f] = v
		}
	}
	return q
}

func pagination(q *repository.ListQuery, total int64) gin.H {
	return gin.H{"total": total, "page": q.Page, "per_page": q.PerPage}
}
