package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on unique constraint violations.
	ErrDuplicate = errors.New("record already exists")
	// ErrInUse is returned when a row is still referenced by another table.
	ErrInUse = errors.New("record is referenced by other records")
	// ErrBootstrapClosed is returned by CreateFirst once any librarian exists.
	ErrBootstrapClosed = errors.New("bootstrap window closed")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRep      = "22P02"
)

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Join(ErrDuplicate, err)
		case pgForeignKeyViolation:
			return errors.Join(ErrInUse, err)
		case pgInvalidTextRep:
			// malformed uuid in a lookup
			return ErrNotFound
		}
	}
	return err
}

// DuplicateConstraint returns the name of the violated unique constraint, if any.
func DuplicateConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}

func expectAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

