package bookmarks

import (
	"context"
	"errors"
	"sync"

	"github.com/movienight/movienight/store"
)

var errUnavailable = errors.New("backend unavailable")

// fakeStore is an in-memory BookmarkStore with failure injection.
type fakeStore struct {
	mu        sync.Mutex
	order     []store.MovieID
	bookmarks map[store.MovieID]*store.Bookmark
	calls     map[string]int

	failAll   bool
	failAdds  map[store.MovieID]int // remaining failures per id, -1 fails forever
	afterList func()
	beforeAdd func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookmarks: make(map[store.MovieID]*store.Bookmark),
		calls:     make(map[string]int),
		failAdds:  make(map[store.MovieID]int),
	}
}

func (f *fakeStore) Init(context.Context) error {
	f.count("Init")
	return nil
}

func (f *fakeStore) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++
}

func (f *fakeStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[op]
}

func (f *fakeStore) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.calls {
		total += n
	}

	return total
}

func (f *fakeStore) AddBookmark(_ context.Context, b *store.Bookmark) error {
	f.count("AddBookmark")
	if f.beforeAdd != nil {
		f.beforeAdd()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return errUnavailable
	}

	if n, ok := f.failAdds[b.MovieID]; ok && n != 0 {
		if n > 0 {
			f.failAdds[b.MovieID] = n - 1
		}

		return errUnavailable
	}

	if err := b.Validate(); err != nil {
		return err
	}

	if _, ok := f.bookmarks[b.MovieID]; !ok {
		f.order = append(f.order, b.MovieID)
	}

	copied := *b
	f.bookmarks[b.MovieID] = &copied
	return nil
}

func (f *fakeStore) ListBookmarks(context.Context) ([]*store.Bookmark, error) {
	f.count("ListBookmarks")

	f.mu.Lock()
	if f.failAll {
		f.mu.Unlock()
		return nil, errUnavailable
	}

	list := make([]*store.Bookmark, 0, len(f.order))
	for _, id := range f.order {
		copied := *f.bookmarks[id]
		list = append(list, &copied)
	}
	f.mu.Unlock()

	if f.afterList != nil {
		f.afterList()
	}

	return list, nil
}

func (f *fakeStore) DeleteBookmark(_ context.Context, id store.MovieID) error {
	f.count("DeleteBookmark")

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return errUnavailable
	}

	delete(f.bookmarks, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}

	return nil
}

func (f *fakeStore) ClearBookmarks(context.Context) error {
	f.count("ClearBookmarks")

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return errUnavailable
	}

	f.bookmarks = make(map[store.MovieID]*store.Bookmark)
	f.order = nil
	return nil
}

func (f *fakeStore) BookmarkStatus(_ context.Context, id store.MovieID) (store.Status, error) {
	f.count("BookmarkStatus")

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return "", errUnavailable
	}

	b, ok := f.bookmarks[id]
	if !ok {
		return "", store.ErrBookmarkNotFound
	}

	return b.Status, nil
}

func (f *fakeStore) UpdateBookmarkStatus(_ context.Context, id store.MovieID, status store.Status) error {
	f.count("UpdateBookmarkStatus")

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return errUnavailable
	}

	if b, ok := f.bookmarks[id]; ok {
		b.Status = status
	}

	return nil
}

func (f *fakeStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.bookmarks)
}

func (f *fakeStore) Has(id store.MovieID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.bookmarks[id]
	return ok
}

// fakeIdentity returns owners in order and then keeps repeating the last one.
type fakeIdentity struct {
	mu     sync.Mutex
	owners []string
	err    error
	calls  int
}

func (f *fakeIdentity) UserID(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return "", f.err
	}

	if len(f.owners) == 0 {
		return "", nil
	}

	owner := f.owners[0]
	if len(f.owners) > 1 {
		f.owners = f.owners[1:]
	}

	return owner, nil
}
