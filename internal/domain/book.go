package domain

import (
	"time"
)

const (
	BookStatusAvailable   = "available"
	BookStatusLoaned      = "loaned"
	BookStatusReserved    = "reserved"
	BookStatusMaintenance = "maintenance"
)

// Category groups books by subject
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// Author represents a book author
type Author struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Nationality string     `json:"nationality" db:"nationality"`
	BirthDate   *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Biography   string     `json:"biography" db:"biography"`
}

// Book represents a catalog title and its copy counters
type Book struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	AuthorID        int64     `json:"author_id" db:"author_id"`
	ISBN            string    `json:"isbn" db:"isbn"`
	Publisher       string    `json:"publisher" db:"publisher"`
	PublicationYear int       `json:"publication_year" db:"publication_year"`
	CategoryID      *int64    `json:"category_id,omitempty" db:"category_id"`
	Description     string    `json:"description" db:"description"`
	TotalCopies     int       `json:"total_copies" db:"total_copies"`
	AvailableCopies int       `json:"available_copies" db:"available_copies"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// IsAvailableForLoan reports whether a copy can be lent right now.
func (b *Book) IsAvailableForLoan() bool {
	return b.AvailableCopies > 0 && b.Status == BookStatusAvailable
}

// RefreshStatus derives the status from the available count. Only the
// available <-> loaned transitions are automatic; reserved and maintenance
// are set by staff and left alone unless no copy is left.
func (b *Book) RefreshStatus() {
	if b.AvailableCopies == 0 {
		b.Status = BookStatusLoaned
	} else if b.Status == BookStatusLoaned && b.AvailableCopies > 0 {
		b.Status = BookStatusAvailable
	}
}

// CheckOut takes one copy off the shelf. It returns false when the book
// cannot be lent, leaving the counters untouched.
func (b *Book) CheckOut() bool {
	if !b.IsAvailableForLoan() {
		return false
	}
	b.AvailableCopies--
	b.RefreshStatus()
	return true
}

// CheckIn puts one copy back. The available count never exceeds the total.
func (b *Book) CheckIn() bool {
	if b.AvailableCopies >= b.TotalCopies {
		return false
	}
	b.AvailableCopies++
	b.RefreshStatus()
	return true
}

// IsValidBookStatus reports whether status is one of the known book states
func IsValidBookStatus(status string) bool {
	switch status {
	case BookStatusAvailable, BookStatusLoaned, BookStatusReserved, BookStatusMaintenance:
		return true
	}
	return false
}

// BookFilter narrows a catalog search
type BookFilter struct {
	Query      string
	CategoryID *int64
	AuthorID   *int64
	Page       int
	PageSize   int
}

// Offset returns the row offset of the requested page (pages start at 1)
func (f BookFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// BookListing is a book row joined with its author and category names
type BookListing struct {
	Book
	AuthorName   string  `json:"author_name" db:"author_name"`
	CategoryName *string `json:"category_name,omitempty" db:"category_name"`
}

// DTOs for requests and responses

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type CreateAuthorRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Nationality string     `json:"nationality" validate:"max=100"`
	BirthDate   *time.Time `json:"birth_date"`
	Biography   string     `json:"biography"`
}

type CreateBookRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	AuthorID        int64  `json:"author_id" validate:"required,gt=0"`
	ISBN            string `json:"isbn" validate:"required,max=13"`
	Publisher       string `json:"publisher" validate:"required,max=100"`
	PublicationYear int    `json:"publication_year" validate:"required,gte=1000"`
	CategoryID      *int64 `json:"category_id" validate:"omitempty,gt=0"`
	Description     string `json:"description"`
	TotalCopies     int    `json:"total_copies" validate:"gte=0"`
}

type SetBookStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available reserved maintenance"`
}

// BookDetail is the book page: the book, its author and category, and the
// requesting user's open loan and active reservation for it, if any.
type BookDetail struct {
	Book              *Book        `json:"book"`
	Author            *Author      `json:"author,omitempty"`
	Category          *Category    `json:"category,omitempty"`
	OpenLoan          *Loan        `json:"open_loan,omitempty"`
	ActiveReservation *Reservation `json:"active_reservation,omitempty"`
}

type HomePage struct {
	RecentBooks  []*Book     `json:"recent_books"`
	PopularBooks []*Book     `json:"popular_books"`
	Categories   []*Category `json:"categories"`
}
