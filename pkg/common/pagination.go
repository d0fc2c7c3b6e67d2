package common

// PaginationMeta describes a page's position without a total count. The
// backing ranked window is bounded, so a total would be meaningless anyway;
// has_next_page reflects whether the window holds at least one more id
// beyond the current slice.
type PaginationMeta struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	Offset      int  `json:"offset"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

// NewPaginationMeta builds page metadata for a slice taken out of a ranked
// window of windowLen ids.
func NewPaginationMeta(page, perPage, windowLen int) *PaginationMeta {
	offset := (page - 1) * perPage

	return &PaginationMeta{
		CurrentPage: page,
		PerPage:     perPage,
		Offset:      offset,
		HasNextPage: windowLen > offset+perPage,
		HasPrevPage: page > 1,
	}
}

// SlicePage returns the [offset, offset+limit) window of ids for a 1-based
// page. An offset past the end yields an empty slice, not an error.
func SlicePage(ids []string, page, limit int) []string {
	offset := (page - 1) * limit
	if offset >= len(ids) {
		return nil
	}

	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}
