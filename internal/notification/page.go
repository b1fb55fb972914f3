package notification

// Defaults for the paged list operation.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Page describes one resolved page of a list query.
type Page struct {
	Number     int // clamped page number actually served
	TotalPages int // ceil(count / size)
	Start      int // slice bounds into the full ordered result set
	End        int
}

// ResolvePage computes pagination over count rows. A non-positive size
// falls back to DefaultPageSize. The requested page is clamped into
// [1, TotalPages], so page 0 and page 99 against 3 pages serve pages 1 and
// 3 respectively. TotalPages is never below 1: an empty result set is one
// empty page, not an error.
func ResolvePage(count, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}

	totalPages := max((count+size-1)/size, 1)

	page = min(page, totalPages)
	page = max(page, 1)

	start := (page - 1) * size
	start = min(start, count)
	end := min(start+size, count)

	return Page{
		Number:     page,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
	}
}
