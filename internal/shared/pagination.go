package shared

// Paging defaults for list endpoints.
const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// ClampPage normalizes raw limit/offset query values to sane bounds.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
