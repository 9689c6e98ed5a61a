package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func parseQuery(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/users"+query, nil)
	return Parse(c)
}

func TestParseDefaults(t *testing.T) {
	params := parseQuery(t, "")
	if params.CurrentPage != DefaultPage || params.PerPage != DefaultPerPage {
		t.Fatalf("expected defaults %d/%d, got %d/%d", DefaultPage, DefaultPerPage, params.CurrentPage, params.PerPage)
	}
	if params.Offset != 0 {
		t.Fatalf("expected offset 0, got %d", params.Offset)
	}
}

func TestParseEchoesParameters(t *testing.T) {
	params := parseQuery(t, "?currentPage=2&perPage=5")
	if params.CurrentPage != 2 || params.PerPage != 5 {
		t.Fatalf("expected 2/5, got %d/%d", params.CurrentPage, params.PerPage)
	}
	if params.Offset != 5 {
		t.Fatalf("expected offset 5, got %d", params.Offset)
	}
}

func TestParseClampsBadValues(t *testing.T) {
	params := parseQuery(t, "?currentPage=-3&perPage=0")
	if params.CurrentPage != DefaultPage || params.PerPage != DefaultPerPage {
		t.Fatalf("expected defaults on bad values, got %d/%d", params.CurrentPage, params.PerPage)
	}

	params = parseQuery(t, "?perPage=10000")
	if params.PerPage != MaxPerPage {
		t.Fatalf("expected perPage capped at %d, got %d", MaxPerPage, params.PerPage)
	}
}
