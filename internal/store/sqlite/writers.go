package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

// writerColumns is the ordered list of columns selected in writer queries.
// Must match the scan order in scanWriter.
const writerColumns = `id, username, email, first_name, last_name, bio_link, password_hash,
	is_active, is_staff, is_admin, date_joined`

func scanWriter(sc scanner) (*domain.Writer, error) {
	var (
		w          domain.Writer
		bioLink    sql.NullString
		dateJoined string
	)

	err := sc.Scan(
		&w.ID,
		&w.Username,
		&w.Email,
		&w.FirstName,
		&w.LastName,
		&bioLink,
		&w.PasswordHash,
		&w.IsActive,
		&w.IsStaff,
		&w.IsAdmin,
		&dateJoined,
	)
	if err != nil {
		return nil, err
	}

	w.BioLink = bioLink.String
	if w.DateJoined, err = parseTime(dateJoined); err != nil {
		return nil, fmt.Errorf("parse date_joined: %w", err)
	}
	return &w, nil
}

// CreateWriter inserts a new writer.
// Returns store.ErrAlreadyExists if the ID or username is taken.
func (s *Store) CreateWriter(ctx context.Context, w *domain.Writer) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO writers (`+writerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID,
		w.Username,
		w.Email,
		w.FirstName,
		w.LastName,
		nullString(w.BioLink),
		w.PasswordHash,
		w.IsActive,
		w.IsStaff,
		w.IsAdmin,
		formatTime(w.DateJoined),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetWriter returns a writer by ID.
func (s *Store) GetWriter(ctx context.Context, id string) (*domain.Writer, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+writerColumns+` FROM writers WHERE id = ?`, id)
	w, err := scanWriter(row)
	if err != nil {
		return nil, notFound(err)
	}
	return w, nil
}

// GetWriterByUsername returns a writer by username, case-insensitively.
func (s *Store) GetWriterByUsername(ctx context.Context, username string) (*domain.Writer, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+writerColumns+` FROM writers WHERE username = ?`, username)
	w, err := scanWriter(row)
	if err != nil {
		return nil, notFound(err)
	}
	return w, nil
}

// GetWritersByIDs returns the writers found among ids, keyed by ID. Missing IDs are skipped.
func (s *Store) GetWritersByIDs(ctx context.Context, ids []string) (map[string]*domain.Writer, error) {
	out := make(map[string]*domain.Writer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	writers, err := s.queryWriters(ctx,
		`SELECT `+writerColumns+` FROM writers WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, w := range writers {
		out[w.ID] = w
	}
	return out, nil
}

// ListWriters returns every writer ordered by last name, then first name.
func (s *Store) ListWriters(ctx context.Context) ([]*domain.Writer, error) {
	return s.queryWriters(ctx, `SELECT `+writerColumns+` FROM writers ORDER BY last_name, first_name, username`)
}

// ListAdmins returns the active admins, who receive editorial notifications.
func (s *Store) ListAdmins(ctx context.Context) ([]*domain.Writer, error) {
	return s.queryWriters(ctx,
		`SELECT `+writerColumns+` FROM writers WHERE is_admin = 1 AND is_active = 1 ORDER BY username`)
}

// UpdateWriter saves every mutable writer field.
func (s *Store) UpdateWriter(ctx context.Context, w *domain.Writer) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE writers SET
			username = ?, email = ?, first_name = ?, last_name = ?, bio_link = ?,
			password_hash = ?, is_active = ?, is_staff = ?, is_admin = ?
		WHERE id = ?`,
		w.Username,
		w.Email,
		w.FirstName,
		w.LastName,
		nullString(w.BioLink),
		w.PasswordHash,
		w.IsActive,
		w.IsStaff,
		w.IsAdmin,
		w.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) queryWriters(ctx context.Context, query string, args ...any) ([]*domain.Writer, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var writers []*domain.Writer
	for rows.Next() {
		w, err := scanWriter(rows)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	return writers, rows.Err()
}
