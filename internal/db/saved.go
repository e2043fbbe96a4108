package db

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SavedBook represents an Open Library work kept for later
type SavedBook struct {
	ID               int64
	WorkKey          string
	Title            string
	Authors          string
	FirstPublishYear int
	Languages        string
	Notes            string
	CreatedAt        time.Time
}

const savedBookColumns = `id, work_key, title, authors, first_publish_year, languages, notes, created_at`

// SaveBook stores a book; b.ID is set on success
func SaveBook(b *SavedBook) error {
	result, err := database.Exec(`
		INSERT INTO saved_books (
			work_key, title, authors, first_publish_year, languages, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.WorkKey, b.Title, b.Authors, b.FirstPublishYear, b.Languages, b.Notes, time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// GetSavedBook retrieves a saved book by ID
func GetSavedBook(id int64) (*SavedBook, error) {
	return scanSavedBook(database.QueryRow(`SELECT `+savedBookColumns+` FROM saved_books WHERE id = ?`, id))
}

// GetSavedBookByKey retrieves a saved book by work key
func GetSavedBookByKey(key string) (*SavedBook, error) {
	return scanSavedBook(database.QueryRow(`SELECT `+savedBookColumns+` FROM saved_books WHERE work_key = ?`, NormalizeWorkKey(key)))
}

// ListSavedBooks retrieves all saved books, newest first
func ListSavedBooks() ([]*SavedBook, error) {
	rows, err := database.Query(`SELECT ` + savedBookColumns + ` FROM saved_books ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*SavedBook
	for rows.Next() {
		b, err := scanSavedBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// DeleteSavedBook deletes a saved book by ID
func DeleteSavedBook(id int64) error {
	return expectOne(database.Exec(`DELETE FROM saved_books WHERE id = ?`, id))
}

// DeleteSavedBookByKey deletes a saved book by work key
func DeleteSavedBookByKey(key string) error {
	return expectOne(database.Exec(`DELETE FROM saved_books WHERE work_key = ?`, NormalizeWorkKey(key)))
}

// SavedBookExists checks if a book with the given work key is saved
func SavedBookExists(key string) bool {
	var count int
	err := database.QueryRow(`SELECT COUNT(*) FROM saved_books WHERE work_key = ?`, NormalizeWorkKey(key)).Scan(&count)
	if err != nil {
		return false
	}
	return count > 0
}

// UpdateSavedBookNotes updates the notes for a saved book
func UpdateSavedBookNotes(id int64, notes string) error {
	return expectOne(database.Exec(`UPDATE saved_books SET notes = ? WHERE id = ?`, notes, id))
}

// NormalizeWorkKey accepts "OL45804W", "works/OL45804W" or "/works/OL45804W"
// and returns the canonical "/works/OL45804W"
func NormalizeWorkKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	key = strings.TrimPrefix(key, "/")
	if !strings.Contains(key, "/") {
		key = "works/" + key
	}
	return "/" + key
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedBook(row rowScanner) (*SavedBook, error) {
	b := &SavedBook{}
	var authors, languages, notes sql.NullString
	var year sql.NullInt64
	err := row.Scan(&b.ID, &b.WorkKey, &b.Title, &authors, &year, &languages, &notes, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Authors = authors.String
	b.FirstPublishYear = int(year.Int64)
	b.Languages = languages.String
	b.Notes = notes.String
	return b, nil
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
