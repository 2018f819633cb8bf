package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/bookswap-api/internal/api/shared"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/platform/logger"
	"github.com/phrazzld/bookswap-api/internal/service"
)

// BookHandler handles catalog requests.
type BookHandler struct {
	bookService service.BookService
	logger      *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(bookService service.BookService, logger *slog.Logger) *BookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookHandler{
		bookService: bookService,
		logger:      logger.With(slog.String("component", "book_handler")),
	}
}

// parseBookFilter reads search, genre, forSale and forTrade from the query string.
func parseBookFilter(r *http.Request) (domain.BookFilter, error) {
	q := r.URL.Query()
	filter := domain.BookFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Genre:  strings.TrimSpace(q.Get("genre")),
	}

	var err error
	if filter.ForSale, err = parseBoolQuery(r, "forSale"); err != nil {
		return filter, err
	}
	if filter.ForTrade, err = parseBoolQuery(r, "forTrade"); err != nil {
		return filter, err
	}
	return filter, nil
}

// ListBooks handles GET /books.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseBookFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	books, err := h.bookService.ListBooks(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list books")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, booksToResponse(books))
}

// GetBook handles GET /books/{id}.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	book, err := h.bookService.GetBook(r.Context(), bookID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get book")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, bookToResponse(book))
}

// CreateBook handles POST /books. The caller becomes the owner.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateBookRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	book, err := h.bookService.CreateBook(r.Context(), userID, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create book")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, bookToResponse(book))
}

// UpdateBook handles PUT /books/{id}.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, bookID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateBookRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	book, err := h.bookService.UpdateBook(r.Context(), userID, bookID, req.toUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update book")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, bookToResponse(book))
}

// DeleteBook handles DELETE /books/{id}.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, bookID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.bookService.DeleteBook(r.Context(), userID, bookID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete book")
		return
	}
	shared.RespondWithNoContent(w)
}

// ListMyBooks handles GET /books/user/my-books.
func (h *BookHandler) ListMyBooks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	books, err := h.bookService.ListUserBooks(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list books")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, booksToResponse(books))
}
