package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound indicates the requested row does not exist.
// Use errors.Is() to check for it in calling code.
var ErrNotFound = errors.New("not found")

// notFound translates pgx's no-rows error into the package sentinel.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
