package api

import (
	"strconv"

	"hotelsearch/internal/models"
)

const resultsPerPage = 10

// ResultPage is one page of the displayed result list. Page is zero-based.
type ResultPage struct {
	Items      []models.HotelRecord `json:"items"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
	Total      int                  `json:"total"`
	HasPrev    bool                 `json:"hasPrev"`
	HasNext    bool                 `json:"hasNext"`
}

func paginate(items []models.HotelRecord, page int) ResultPage {
	totalPages := (len(items) + resultsPerPage - 1) / resultsPerPage
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = max(totalPages-1, 0)
	}

	startIdx := page * resultsPerPage
	endIdx := startIdx + resultsPerPage
	if endIdx > len(items) {
		endIdx = len(items)
	}

	current := []models.HotelRecord{}
	if startIdx < endIdx {
		current = items[startIdx:endIdx]
	}
	return ResultPage{
		Items:      current,
		Page:       page,
		TotalPages: totalPages,
		Total:      len(items),
		HasPrev:    page > 0,
		HasNext:    endIdx < len(items),
	}
}

func pageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
