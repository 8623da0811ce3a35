package repository

import (
	"errors"

	"questlog-backend/pkg/database"
)

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

func translate(err error) error {
	if database.IsDuplicate(err) {
		return ErrDuplicate
	}
	return err
}
