package pagination

// OffsetRequest represents an offset-based pagination request
type OffsetRequest struct {
	Page int `json:"page" query:"page"`
	Size int `json:"size" query:"size"`
}

// Normalize clamps the parameters into their allowed ranges.
func (r *OffsetRequest) Normalize() {
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.Size <= 0 {
		r.Size = PageDefaultSize
	}
	if r.Size > PageMaxSize {
		r.Size = PageMaxSize
	}
}

// Offset converts the page number to a row offset.
func (r *OffsetRequest) Offset() int {
	return (r.Page - 1) * r.Size
}
