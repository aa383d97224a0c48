package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelsearch/internal/models"
	"hotelsearch/internal/searchapi"
)

func hotelList(n int) []models.HotelRecord {
	out := make([]models.HotelRecord, n)
	for i := range out {
		out[i] = models.HotelRecord{ID: int64(i + 1)}
	}
	return out
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		wantPage  int
		wantFirst int64
		wantLen   int
		wantPrev  bool
		wantNext  bool
	}{
		{"first page", 25, 0, 0, 1, 10, false, true},
		{"middle page", 25, 1, 1, 11, 10, true, true},
		{"last partial page", 25, 2, 2, 21, 5, true, false},
		{"past the end clamps", 25, 9, 2, 21, 5, true, false},
		{"negative clamps", 25, -3, 0, 1, 10, false, true},
		{"exact fit", 20, 1, 1, 11, 10, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paginate(hotelList(tt.total), tt.page)
			assert.Equal(t, tt.wantPage, p.Page)
			require.Len(t, p.Items, tt.wantLen)
			assert.Equal(t, tt.wantFirst, p.Items[0].ID)
			assert.Equal(t, tt.wantPrev, p.HasPrev)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	p := paginate(nil, 3)
	assert.Equal(t, 0, p.Page)
	assert.Equal(t, 0, p.TotalPages)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNext)
}

func TestSearch_Paged(t *testing.T) {
	exec := &fakeExecutor{hotels: hotelList(12)}
	h := newTestServer(exec)

	var resp SearchResponse
	code := do(t, h, http.MethodGet, "/api/v1/search?bookingTypeCode=NIGHT&page=1", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.View.Results, 12)
	assert.Equal(t, 1, resp.Page.Page)
	assert.Equal(t, 2, resp.Page.TotalPages)
	require.Len(t, resp.Page.Items, 2)
	assert.Equal(t, int64(11), resp.Page.Items[0].ID)
	assert.NotContains(t, resp.Query, "page")
}

func TestSearch_FailedSearchPagesFromStart(t *testing.T) {
	exec := &fakeExecutor{err: &searchapi.FetchError{Message: "search service unavailable"}}
	h := newTestServer(exec)

	var resp SearchResponse
	code := do(t, h, http.MethodGet, "/api/v1/search?bookingTypeCode=DAY&page=3", &resp)
	require.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, 0, resp.Page.Page)
	assert.False(t, resp.Page.HasPrev)
	assert.Empty(t, resp.Page.Items)

	exec.err = &searchapi.FetchError{Status: http.StatusTooManyRequests, Message: "too many searches, try again"}
	code = do(t, h, http.MethodGet, "/api/v1/search?bookingTypeCode=DAY", &resp)
	assert.Equal(t, http.StatusTooManyRequests, code)
}
