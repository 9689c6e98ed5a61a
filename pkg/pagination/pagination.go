package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
	MinPerPage     = 1
)

// Params holds validated pagination parameters
type Params struct {
	CurrentPage int
	PerPage     int
	Offset      int
}

// Parse extracts and validates currentPage/perPage from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("currentPage", strconv.Itoa(DefaultPage)))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", strconv.Itoa(DefaultPerPage)))

	if page < 1 {
		page = DefaultPage
	}
	if perPage < MinPerPage {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return Params{
		CurrentPage: page,
		PerPage:     perPage,
		Offset:      (page - 1) * perPage,
	}
}
