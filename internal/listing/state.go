package listing

// State is the interactive state of one list screen. Changing the search or
// a filter moves back to page 1 before the next View.
type State[T any] struct {
	def     Definition[T]
	rows    []T
	query   string
	filters map[string]string
	page    int
	size    int
}

// View is what the screen renders.
type View[T any] struct {
	Rows []T `json:"data"`
	Page `json:"pagination"`
}

// NewState starts on page 1 with no search or filters.
func NewState[T any](rows []T, def Definition[T], pageSize int) *State[T] {
	return &State[T]{
		def:     def,
		rows:    rows,
		filters: map[string]string{},
		page:    1,
		size:    pageSize,
	}
}

func (s *State[T]) SetQuery(q string) {
	if q == s.query {
		return
	}
	s.query = q
	s.page = 1
}

func (s *State[T]) SetFilter(key, value string) {
	if s.filters[key] == value {
		return
	}
	if value == "" {
		delete(s.filters, key)
	} else {
		s.filters[key] = value
	}
	s.page = 1
}

// SetPage jumps to page, clamped to at least 1.
func (s *State[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.page = page
}

// Next advances when a further page has rows.
func (s *State[T]) Next() bool {
	if !s.View().HasNext {
		return false
	}
	s.page++
	return true
}

// Prev goes back unless already on page 1.
func (s *State[T]) Prev() bool {
	if s.page <= 1 {
		return false
	}
	s.page--
	return true
}

func (s *State[T]) View() View[T] {
	rows, page := s.def.Apply(s.rows, Query{
		Search:   s.query,
		Filters:  s.filters,
		Page:     s.page,
		PageSize: s.size,
	})
	return View[T]{Rows: rows, Page: page}
}
