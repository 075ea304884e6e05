package catalog

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the window rapid search keystrokes are collapsed into.
const DefaultDebounce = 500 * time.Millisecond

// FetchFunc loads one page of a collection, typically one of the Manager's
// list methods.
type FetchFunc[T any] func(ctx context.Context, page, limit int, term string) ([]T, Pagination, error)

// List owns the paginated, searchable state of one collection: the current
// items, the pagination envelope, an in-flight flag, the last error and the
// search term. The same controller serves all four entities; only the fetch
// function and the default page size differ.
//
// Responses are applied in issue order: each fetch takes a sequence number
// and a response whose sequence has been superseded is dropped, so a slow
// page-2 response cannot overwrite a newer page-3 one.
type List[T any] struct {
	fetch    FetchFunc[T]
	limit    int
	debounce time.Duration
	onChange func()

	mu         sync.Mutex
	items      []T
	pagination Pagination
	loading    bool
	err        error
	searchTerm string
	seq        uint64
	timer      *time.Timer
	closed     bool
}

type ListOption[T any] func(*List[T])

func WithLimit[T any](limit int) ListOption[T] {
	return func(l *List[T]) {
		l.limit = limit
	}
}

func WithDebounce[T any](d time.Duration) ListOption[T] {
	return func(l *List[T]) {
		l.debounce = d
	}
}

// WithOnChange registers a callback fired after every state change, with no
// locks held. Long-lived consumers (the bot) use it to re-render.
func WithOnChange[T any](fn func()) ListOption[T] {
	return func(l *List[T]) {
		l.onChange = fn
	}
}

func NewList[T any](fetch FetchFunc[T], opts ...ListOption[T]) *List[T] {
	l := &List[T]{
		fetch:    fetch,
		limit:    10,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load performs the initial page-1 fetch with the default limit and an empty
// term.
func (l *List[T]) Load(ctx context.Context) error {
	return l.Fetch(ctx, 1, l.limit, "")
}

// Fetch replaces items and pagination from the backend. The loading flag is
// cleared no matter how the request ends.
func (l *List[T]) Fetch(ctx context.Context, page, limit int, term string) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.seq++
	seq := l.seq
	l.loading = true
	l.err = nil
	l.searchTerm = term
	l.mu.Unlock()
	l.notify()

	items, pagination, err := l.fetch(ctx, page, limit, term)

	l.mu.Lock()
	if seq == l.seq {
		l.loading = false
		if err != nil {
			l.err = err
		} else {
			l.items = items
			l.pagination = pagination
		}
	}
	l.mu.Unlock()
	l.notify()

	return err
}

// GoToPage re-fetches page n with the current limit and search term. Out of
// range pages, including anything when total_pages is 0, are a no-op.
func (l *List[T]) GoToPage(ctx context.Context, n int) error {
	l.mu.Lock()
	totalPages := l.pagination.TotalPages
	limit := l.currentLimit()
	term := l.searchTerm
	l.mu.Unlock()

	if n < 1 || n > totalPages {
		return nil
	}
	return l.Fetch(ctx, n, limit, term)
}

// Refresh re-fetches the current page, used as the saved callback after a
// form submission.
func (l *List[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	page := l.pagination.CurrentPage
	limit := l.currentLimit()
	term := l.searchTerm
	l.mu.Unlock()

	if page < 1 {
		page = 1
	}
	return l.Fetch(ctx, page, limit, term)
}

// SetSearchTerm updates the term and schedules a page-1 fetch after the
// debounce window. A newer call cancels the pending one, so a burst of
// keystrokes issues a single request for the final term.
func (l *List[T]) SetSearchTerm(ctx context.Context, term string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.searchTerm = term
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if l.closed {
		return
	}

	l.timer = time.AfterFunc(l.debounce, func() {
		l.mu.Lock()
		stale := l.closed || l.searchTerm != term
		limit := l.currentLimit()
		l.mu.Unlock()
		if stale {
			return
		}
		_ = l.Fetch(ctx, 1, limit, term)
	})
}

// Close stops any pending debounce timer. The controller must be closed on
// teardown so a timer cannot fire against a discarded view.
func (l *List[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items
}

func (l *List[T]) Pagination() Pagination {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pagination
}

func (l *List[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *List[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *List[T]) SearchTerm() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.searchTerm
}

// caller must hold l.mu
func (l *List[T]) currentLimit() int {
	if l.pagination.Limit > 0 {
		return l.pagination.Limit
	}
	return l.limit
}

func (l *List[T]) notify() {
	if l.onChange != nil {
		l.onChange()
	}
}
