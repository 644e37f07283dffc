package paging

// DefaultSize is the page size used when a caller does not ask for a
// specific one.
const DefaultSize = 12

// Page describes one page of a larger result set. All fields are
// already normalized: Size is at least 1, TotalPages at least 1 and
// Number inside [1, TotalPages].
type Page struct {
	Number     int `json:"page"`
	Size       int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// New builds a normalized Page for the requested page number. Both
// number and size are clamped rather than rejected, so every input
// yields a usable page.
func New(number, size, totalItems int) Page {
	if size < 1 {
		size = 1
	}
	total := TotalPages(totalItems, size)
	return Page{
		Number:     Clamp(number, total),
		Size:       size,
		TotalItems: totalItems,
		TotalPages: total,
	}
}

// TotalPages returns ceil(totalItems/size) with a floor of 1, so an
// empty result set still renders as a single page.
func TotalPages(totalItems, size int) int {
	if size < 1 {
		size = 1
	}
	if totalItems < 1 {
		return 1
	}
	return (totalItems + size - 1) / size
}

// Clamp forces number into [1, totalPages].
func Clamp(number, totalPages int) int {
	if number < 1 {
		return 1
	}
	if number > totalPages {
		return totalPages
	}
	return number
}

// Offset returns the row offset of the page, suitable for OFFSET in a
// paged query.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Previous returns the preceding page number, staying at 1 on the
// first page.
func (p Page) Previous() int {
	if p.Number <= 1 {
		return 1
	}
	return p.Number - 1
}

// Next returns the following page number, staying at the last page.
func (p Page) Next() int {
	if p.Number >= p.TotalPages {
		return p.TotalPages
	}
	return p.Number + 1
}

func (p Page) HasPrevious() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Slice returns the elements of items belonging to the page. The page
// number is clamped first, so out-of-range requests return the first
// or last page instead of failing.
func Slice[T any](items []T, number, size int) []T {
	p := New(number, size, len(items))
	lo := p.Offset()
	if lo >= len(items) {
		return nil
	}
	hi := lo + p.Size
	if hi > len(items) {
		hi = len(items)
	}
	return items[lo:hi]
}
