package response

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ListParams parses the common list query parameters: page (1-based),
// perPage (capped), and a trimmed free-text search.
func ListParams(c *gin.Context) (page, perPage int, search string) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("perPage", strconv.Itoa(defaultPerPage)))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	search = strings.TrimSpace(c.Query("search"))
	return page, perPage, search
}
