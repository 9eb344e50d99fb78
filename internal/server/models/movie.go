package models

// Movie is a catalog entry. Poster holds the stored file name.
type Movie struct {
	ID          int64
	Title       string
	Director    string
	Studio      string
	Cast        []string
	ReleaseYear int
	Poster      string
}

// MoviePage is one page of a paginated movie listing.
type MoviePage struct {
	Movies        []Movie
	PageNumber    int
	PageSize      int
	TotalElements int64
	TotalPages    int
	IsLast        bool
}

// NewMoviePage computes paging metadata for a slice of results.
func NewMoviePage(movies []Movie, page, size int, total int64) MoviePage {
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return MoviePage{
		Movies:        movies,
		PageNumber:    page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    pages,
		IsLast:        page+1 >= pages,
	}
}
