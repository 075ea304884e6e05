package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetch serves pages out of a fixed fighter set the way the backend
// would, recording every call it receives.
type fakeFetch struct {
	mu     sync.Mutex
	items  []Fighter
	calls  []fetchCall
	errOut error
}

type fetchCall struct {
	page, limit int
	term        string
}

func newFakeFetch(count int) *fakeFetch {
	f := &fakeFetch{}
	for i := 1; i <= count; i++ {
		f.items = append(f.items, Fighter{
			ID:        i,
			FirstName: fmt.Sprintf("Peleador%d", i),
			LastName:  "Apellido",
		})
	}
	return f
}

func (f *fakeFetch) fetch(ctx context.Context, page, limit int, term string) ([]Fighter, Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fetchCall{page: page, limit: limit, term: term})
	if f.errOut != nil {
		return nil, Pagination{}, f.errOut
	}

	var matched []Fighter
	for _, item := range f.items {
		if term == "" || item.FirstName == term {
			matched = append(matched, item)
		}
	}

	totalPages := (len(matched) + limit - 1) / limit
	start := (page - 1) * limit
	end := start + limit
	if start > len(matched) {
		start, end = 0, 0
	} else if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], Pagination{
		TotalItems:  len(matched),
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
	}, nil
}

func (f *fakeFetch) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetch) lastCall() fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func TestList_Pagination(t *testing.T) {
	ctx := context.Background()

	t.Run("InitialLoad", func(t *testing.T) {
		backend := newFakeFetch(25)
		list := NewList(backend.fetch, WithLimit[Fighter](10))
		defer list.Close()

		require.NoError(t, list.Load(ctx))

		assert.Len(t, list.Items(), 10)
		assert.Equal(t, Pagination{TotalItems: 25, TotalPages: 3, CurrentPage: 1, Limit: 10}, list.Pagination())
		assert.False(t, list.Loading())
		assert.NoError(t, list.Err())
	})

	t.Run("WalkToLastPage", func(t *testing.T) {
		backend := newFakeFetch(25)
		list := NewList(backend.fetch, WithLimit[Fighter](10))
		defer list.Close()

		require.NoError(t, list.Load(ctx))
		require.NoError(t, list.GoToPage(ctx, 2))
		assert.Len(t, list.Items(), 10)
		assert.Equal(t, 2, list.Pagination().CurrentPage)

		require.NoError(t, list.GoToPage(ctx, 3))
		assert.Len(t, list.Items(), 5)
		assert.Equal(t, 3, list.Pagination().CurrentPage)
	})

	t.Run("OutOfRangePagesIgnored", func(t *testing.T) {
		backend := newFakeFetch(25)
		list := NewList(backend.fetch, WithLimit[Fighter](10))
		defer list.Close()

		require.NoError(t, list.Load(ctx))
		callsAfterLoad := backend.callCount()

		require.NoError(t, list.GoToPage(ctx, 0))
		require.NoError(t, list.GoToPage(ctx, 4))
		assert.Equal(t, callsAfterLoad, backend.callCount())
		assert.Equal(t, 1, list.Pagination().CurrentPage)
	})

	t.Run("EmptyResultSet", func(t *testing.T) {
		backend := newFakeFetch(0)
		list := NewList(backend.fetch, WithLimit[Fighter](10))
		defer list.Close()

		require.NoError(t, list.Load(ctx))
		assert.Empty(t, list.Items())
		assert.Equal(t, 0, list.Pagination().TotalPages)

		callsAfterLoad := backend.callCount()
		require.NoError(t, list.GoToPage(ctx, 1))
		assert.Equal(t, callsAfterLoad, backend.callCount())
	})

	t.Run("FetchErrorKeepsOldItems", func(t *testing.T) {
		backend := newFakeFetch(25)
		list := NewList(backend.fetch, WithLimit[Fighter](10))
		defer list.Close()

		require.NoError(t, list.Load(ctx))

		backend.mu.Lock()
		backend.errOut = errors.New("backend down")
		backend.mu.Unlock()

		err := list.GoToPage(ctx, 2)
		assert.Error(t, err)
		assert.Error(t, list.Err())
		assert.False(t, list.Loading())
		assert.Len(t, list.Items(), 10)
	})
}

func TestList_SearchDebounce(t *testing.T) {
	ctx := context.Background()

	t.Run("BurstCollapsesToFinalTerm", func(t *testing.T) {
		backend := newFakeFetch(25)
		list := NewList(backend.fetch,
			WithLimit[Fighter](10),
			WithDebounce[Fighter](20*time.Millisecond),
		)
		defer list.Close()

		list.SetSearchTerm(ctx, "P")
		list.SetSearchTerm(ctx, "Pe")
		list.SetSearchTerm(ctx, "Peleador3")

		time.Sleep(120 * time.Millisecond)

		assert.Equal(t, 1, backend.callCount())
		call := backend.lastCall()
		assert.Equal(t, "Peleador3", call.term)
		assert.Equal(t, 1, call.page)
		assert.Len(t, list.Items(), 1)
	})

	t.Run("SearchResetsToPageOne", func(t *testing.T) {
		backend := newFakeFetch(25)
		list := NewList(backend.fetch,
			WithLimit[Fighter](10),
			WithDebounce[Fighter](10*time.Millisecond),
		)
		defer list.Close()

		require.NoError(t, list.Load(ctx))
		require.NoError(t, list.GoToPage(ctx, 3))

		list.SetSearchTerm(ctx, "Peleador1")
		time.Sleep(80 * time.Millisecond)

		assert.Equal(t, 1, backend.lastCall().page)
		assert.Equal(t, "Peleador1", list.SearchTerm())
	})

	t.Run("CloseCancelsPendingFetch", func(t *testing.T) {
		backend := newFakeFetch(25)
		list := NewList(backend.fetch, WithDebounce[Fighter](20*time.Millisecond))

		list.SetSearchTerm(ctx, "Peleador1")
		list.Close()

		time.Sleep(80 * time.Millisecond)
		assert.Equal(t, 0, backend.callCount())
	})
}

func TestList_StaleResponseDropped(t *testing.T) {
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	fast := newFakeFetch(25)

	fetch := func(ctx context.Context, page, limit int, term string) ([]Fighter, Pagination, error) {
		if term == "lenta" {
			close(entered)
			<-release
			return []Fighter{{ID: 999, FirstName: "Tarde"}}, Pagination{TotalItems: 1, TotalPages: 1, CurrentPage: 1, Limit: limit}, nil
		}
		return fast.fetch(ctx, page, limit, term)
	}

	list := NewList(fetch, WithLimit[Fighter](10))
	defer list.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = list.Fetch(ctx, 1, 10, "lenta")
	}()
	<-entered

	require.NoError(t, list.Fetch(ctx, 2, 10, ""))
	close(release)
	<-done

	// the slow first response must not overwrite the newer one
	items := list.Items()
	require.Len(t, items, 10)
	assert.NotEqual(t, 999, items[0].ID)
	assert.Equal(t, 2, list.Pagination().CurrentPage)
	assert.False(t, list.Loading())
}
