package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/store"
)

// MockBookStore implements store.BookStore for testing
type MockBookStore struct {
	CreateFn  func(ctx context.Context, book *domain.Book) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	ListFn    func(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)
	UpdateFn  func(ctx context.Context, book *domain.Book) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	mu    sync.Mutex
	books map[uuid.UUID]*domain.Book
}

// NewMockBookStore creates a new mock store seeded with books.
func NewMockBookStore(books ...*domain.Book) *MockBookStore {
	m := &MockBookStore{books: make(map[uuid.UUID]*domain.Book)}
	for _, b := range books {
		m.books[b.ID] = copyBook(b)
	}
	return m
}

var _ store.BookStore = (*MockBookStore)(nil)

func copyBook(b *domain.Book) *domain.Book {
	c := *b
	return &c
}

// Create implements store.BookStore
func (m *MockBookStore) Create(ctx context.Context, book *domain.Book) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, book)
	}
	if err := book.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.books[book.ID] = copyBook(book)
	return nil
}

// GetByID implements store.BookStore
func (m *MockBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return nil, store.ErrBookNotFound
	}
	return copyBook(b), nil
}

func matchesFilter(b *domain.Book, f domain.BookFilter) bool {
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Author), search) {
			return false
		}
	}
	if genre := strings.TrimSpace(f.Genre); genre != "" && b.Genre != genre {
		return false
	}
	if f.ForSale != nil && b.IsForSale != *f.ForSale {
		return false
	}
	if f.ForTrade != nil && b.IsForTrade != *f.ForTrade {
		return false
	}
	if f.OwnerID != nil && b.OwnerID != *f.OwnerID {
		return false
	}
	return true
}

// List implements store.BookStore
func (m *MockBookStore) List(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	books := []*domain.Book{}
	for _, b := range m.books {
		if matchesFilter(b, filter) {
			books = append(books, copyBook(b))
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].CreatedAt.After(books[j].CreatedAt) })
	return books, nil
}

// Update implements store.BookStore
func (m *MockBookStore) Update(ctx context.Context, book *domain.Book) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, book)
	}
	if err := book.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[book.ID]; !ok {
		return store.ErrBookNotFound
	}
	m.books[book.ID] = copyBook(book)
	return nil
}

// Delete implements store.BookStore
func (m *MockBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return store.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

// WithTx implements store.BookStore
func (m *MockBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return m
}
