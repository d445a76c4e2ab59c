package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrForbidden           = errors.New("operation not permitted")
	ErrDuplicateUsername   = errors.New("username already registered")
	ErrInvalidCredentials  = errors.New("incorrect username or password")
	ErrNeedNotOpen         = errors.New("need is not open for responses")
	ErrNeedAlreadyAccepted = errors.New("need already has an accepted response")
)

// isUniqueViolation reports whether err came from a unique index. Drivers that
// do not translate their errors are matched on the message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
