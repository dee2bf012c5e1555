package repository

import (
	"errors"
	"fmt"
	"strings"

	"realones/internal/domain"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicateKey recognises a unique-index rejection from any dialect we run on.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps store errors onto the domain error set. Anything that is not a
// missing row or a uniqueness rejection is treated as the backend being unavailable.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUniquenessViolation),
		errors.Is(err, domain.ErrBackendUnavailable):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case isDuplicateKey(err):
		return fmt.Errorf("%w: %v", domain.ErrUniquenessViolation, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
}

// translatePassthrough keeps domain errors raised inside a transaction callback
// intact and translates everything else.
func translatePassthrough(err error) error {
	for _, target := range []error{
		domain.ErrInvalidTransition,
		domain.ErrInvalidStatus,
		domain.ErrEmptyBatch,
	} {
		if errors.Is(err, target) {
			return err
		}
	}
	return translate(err)
}
