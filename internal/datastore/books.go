package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/bookshelf/internal/enrichment/book"
	"github.com/lepinkainen/bookshelf/internal/errors"
)

// Key identifies a stored book: by any of its ISBN columns, or by the exact
// (title, authors) pair when no ISBN is known.
type Key struct {
	ISBN    string
	ISBN10  string
	ISBN13  string
	Title   string
	Authors string
}

// KeyFor returns the identifying key of rec.
func KeyFor(rec *book.Record) Key {
	if rec.HasIdentifier() {
		return Key{ISBN: rec.ISBN, ISBN10: rec.ISBN10, ISBN13: rec.ISBN13}
	}
	return Key{Title: rec.Title, Authors: rec.Authors}
}

// IsIdentifier reports whether the key matches by ISBN.
func (k Key) IsIdentifier() bool {
	return k.ISBN != "" || k.ISBN10 != "" || k.ISBN13 != ""
}

// where builds the match clause: OR across the supplied ISBN columns, AND
// across title and authors.
func (k Key) where() (string, []any, error) {
	if k.IsIdentifier() {
		var conds []string
		var args []any
		for col, v := range map[string]string{"isbn": k.ISBN, "isbn_10": k.ISBN10, "isbn_13": k.ISBN13} {
			if v != "" {
				conds = append(conds, col+" = ?")
				args = append(args, v)
			}
		}
		return strings.Join(conds, " OR "), args, nil
	}
	if k.Title == "" || k.Authors == "" {
		return "", nil, fmt.Errorf("key needs an isbn or both title and authors")
	}
	return "title = ? AND authors = ?", []any{k.Title, k.Authors}, nil
}

// StoredBook is a book row with its database metadata.
type StoredBook struct {
	ID         int64
	Record     book.Record
	LocationID int64
	InLib      bool
}

// Exists reports whether a book matching key is stored.
func (s *SQLiteStore) Exists(ctx context.Context, key Key) (bool, error) {
	where, args, err := key.where()
	if err != nil {
		return false, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM book WHERE "+where, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("checking book existence: %w", err)
	}
	return n > 0, nil
}

// Find returns the first book matching key, or nil when none does. The
// record's Location is the shelf label, not the row id.
func (s *SQLiteStore) Find(ctx context.Context, key Key) (*StoredBook, error) {
	where, args, err := key.where()
	if err != nil {
		return nil, err
	}
	books, err := s.queryBooks(ctx, "WHERE "+where+" ORDER BY book.id LIMIT 1", args...)
	if err != nil || len(books) == 0 {
		return nil, err
	}
	return &books[0], nil
}

// FindByISBN returns every book whose isbn, isbn_10 or isbn_13 contains value.
// Substring matching finds books whose ISBN column holds several "; "-joined
// values.
func (s *SQLiteStore) FindByISBN(ctx context.Context, value string) ([]StoredBook, error) {
	if value == "" {
		return nil, nil
	}
	pattern := "%" + value + "%"
	return s.queryBooks(ctx, "WHERE isbn LIKE ? OR isbn_10 LIKE ? OR isbn_13 LIKE ? ORDER BY book.id",
		pattern, pattern, pattern)
}

// All returns every stored book ordered by id.
func (s *SQLiteStore) All(ctx context.Context) ([]StoredBook, error) {
	return s.queryBooks(ctx, "ORDER BY book.id")
}

// Count returns the number of stored books.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM book").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting books: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) queryBooks(ctx context.Context, clause string, args ...any) ([]StoredBook, error) {
	cols := make([]string, 0, len(textFields)+3)
	for _, f := range textFields {
		cols = append(cols, "book."+bookColumns[f])
	}
	cols = append(cols, "book.id", "COALESCE(book.location, 0)", "COALESCE(location.label_name, '')", "book.in_lib")

	query := fmt.Sprintf("SELECT %s FROM book LEFT JOIN location ON location.id = book.location %s",
		strings.Join(cols, ", "), clause)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []StoredBook
	for rows.Next() {
		var b StoredBook
		values := make([]string, len(textFields))
		dest := make([]any, 0, len(cols))
		for i := range values {
			dest = append(dest, &values[i])
		}
		var label string
		var inLib int
		dest = append(dest, &b.ID, &b.LocationID, &label, &inLib)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		for i, f := range textFields {
			b.Record.Set(f, values[i])
		}
		b.Record.Location = label
		b.InLib = inLib != 0
		books = append(books, b)
	}
	return books, rows.Err()
}

// Insert stores rec with the given location row id (0 for none). It returns
// inserted=false without error when a book with the same key already exists.
// A record without title or authors is a PersistenceError.
func (s *SQLiteStore) Insert(ctx context.Context, rec *book.Record, locationID int64) (id int64, inserted bool, err error) {
	if rec == nil {
		return 0, false, errors.NewPersistenceError(fmt.Errorf("nil record"))
	}
	if strings.TrimSpace(rec.Title) == "" {
		return 0, false, errors.NewMissingFieldError(string(book.FieldTitle))
	}
	if strings.TrimSpace(rec.Authors) == "" {
		return 0, false, errors.NewMissingFieldError(string(book.FieldAuthors))
	}

	exists, err := s.Exists(ctx, KeyFor(rec))
	if err != nil {
		return 0, false, errors.NewPersistenceError(err)
	}
	if exists {
		slog.Debug("Book already stored, skipping insert", "title", rec.Title, "isbn", rec.ISBN)
		return 0, false, nil
	}

	cols := make([]string, 0, len(textFields)+1)
	args := make([]any, 0, len(textFields)+1)
	for _, f := range textFields {
		cols = append(cols, bookColumns[f])
		args = append(args, rec.Get(f))
	}
	cols = append(cols, "location")
	args = append(args, nullableID(locationID))

	query := fmt.Sprintf("INSERT INTO book (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, false, errors.NewPersistenceError(err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, errors.NewPersistenceError(err)
	}
	return id, true, nil
}

// UpdateFields writes the given canonical fields of book id. A location label
// in fields is ignored; pass the resolved row id as locationID instead (0
// leaves the location untouched).
func (s *SQLiteStore) UpdateFields(ctx context.Context, id int64, fields map[book.Field]string, locationID int64) error {
	var sets []string
	var args []any
	for _, f := range textFields {
		if v, ok := fields[f]; ok {
			sets = append(sets, bookColumns[f]+" = ?")
			args = append(args, v)
		}
	}
	if locationID != 0 {
		sets = append(sets, "location = ?")
		args = append(args, locationID)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	if _, err := s.db.ExecContext(ctx, "UPDATE book SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return errors.NewPersistenceError(err)
	}
	return nil
}

// SetInLib marks book id as on the shelf or lent out.
func (s *SQLiteStore) SetInLib(ctx context.Context, id int64, inLib bool) error {
	v := 0
	if inLib {
		v = 1
	}
	return s.execOne(ctx, "UPDATE book SET in_lib = ? WHERE id = ?", v, id)
}

// SetLocation moves book id to another location row.
func (s *SQLiteStore) SetLocation(ctx context.Context, id, locationID int64) error {
	return s.execOne(ctx, "UPDATE book SET location = ? WHERE id = ?", nullableID(locationID), id)
}

func (s *SQLiteStore) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewPersistenceError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewPersistenceError(err)
	}
	if n == 0 {
		return errors.NewPersistenceError(sql.ErrNoRows)
	}
	return nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
