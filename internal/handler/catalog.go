package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/response"
)

type CatalogHandler struct {
	service   CatalogService
	validator *validator.Validate
}

func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Home handles GET /api/v1/home
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	home, err := h.service.Home(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, home)
}

// SearchBooks handles GET /api/v1/books
func (h *CatalogHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	filter := domain.BookFilter{Query: r.URL.Query().Get("q")}

	var err error
	if filter.CategoryID, err = queryID(r, "category"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.AuthorID, err = queryID(r, "author"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.Page, err = queryInt(r, "page"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.PageSize, err = queryInt(r, "page_size"); err != nil {
		writeError(w, r, err)
		return
	}

	books, err := h.service.SearchBooks(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, books)
}

// GetBook handles GET /api/v1/books/{bookId}
func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "bookId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	detail, err := h.service.GetBook(r.Context(), bookID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, detail)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, categories)
}

func (h *CatalogHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.ListAuthors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, authors)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateCategoryRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), &request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, category)
}

func (h *CatalogHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateAuthorRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		writeError(w, r, err)
		return
	}

	author, err := h.service.CreateAuthor(r.Context(), &request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, author)
}

func (h *CatalogHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateBookRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.service.CreateBook(r.Context(), &request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, book)
}

// SetBookStatus handles PUT /api/v1/admin/books/{bookId}/status
func (h *CatalogHandler) SetBookStatus(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "bookId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var request domain.SetBookStatusRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.service.SetBookStatus(r.Context(), bookID, request.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, book)
}
